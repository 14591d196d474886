package algorithms

import (
	"context"
	"errors"
	"fmt"

	"github.com/dd0wney/cluso-tradenet/pkg/network"
)

// Sentinel errors for analysis failures. Match with errors.Is.
var (
	ErrConvergence        = errors.New("power iteration did not converge")
	ErrDegradedPath       = errors.New("shortest-path computation degraded")
	ErrPartitionInvariant = errors.New("community partition invariant violated")
)

// ErrorKind is the stable, machine-readable name of an analysis failure.
type ErrorKind string

const (
	KindEmptyInput         ErrorKind = "empty_input"
	KindConvergence        ErrorKind = "convergence"
	KindDegradedPath       ErrorKind = "degraded_path"
	KindPartitionInvariant ErrorKind = "partition_invariant"
	KindCancelled          ErrorKind = "cancelled"
	KindInternal           ErrorKind = "internal"
)

// AnalysisError provides structured error information for a failed or
// partially failed algorithm run.
type AnalysisError struct {
	Algorithm  string    // "betweenness", "eigenvector", "communities"
	Kind       ErrorKind // Stable error kind
	Iterations int       // Iterations performed (eigenvector)
	Residual   float64   // Last L1 difference between iterates (eigenvector)
	Sources    []string  // Source nodes whose pass was skipped (betweenness)
	Node       string    // Offending node (partition)
	Cause      error     // Underlying error
}

// Error implements the error interface.
func (e *AnalysisError) Error() string {
	switch {
	case e.Iterations > 0:
		return fmt.Sprintf("%s: %v after %d iterations (residual %g)", e.Algorithm, e.Cause, e.Iterations, e.Residual)
	case len(e.Sources) > 0:
		return fmt.Sprintf("%s: %v (%d sources skipped)", e.Algorithm, e.Cause, len(e.Sources))
	case e.Node != "":
		return fmt.Sprintf("%s: %v (node %s)", e.Algorithm, e.Cause, e.Node)
	}
	return fmt.Sprintf("%s: %v", e.Algorithm, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *AnalysisError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target error matches this error's cause.
func (e *AnalysisError) Is(target error) bool {
	if target == nil {
		return false
	}
	return errors.Is(e.Cause, target)
}

// KindOf classifies err into an ErrorKind. It returns "" for a nil error.
func KindOf(err error) ErrorKind {
	var aerr *AnalysisError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &aerr) && aerr.Kind != "":
		return aerr.Kind
	case network.IsEmptyInput(err):
		return KindEmptyInput
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCancelled
	case errors.Is(err, ErrConvergence):
		return KindConvergence
	case errors.Is(err, ErrDegradedPath):
		return KindDegradedPath
	case errors.Is(err, ErrPartitionInvariant):
		return KindPartitionInvariant
	}
	return KindInternal
}

func cancelledError(algorithm string, cause error) error {
	return &AnalysisError{Algorithm: algorithm, Kind: KindCancelled, Cause: cause}
}
