package network

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrEmptyInput is returned when no usable edge survives filtering.
	// Analysis must not proceed on such a graph.
	ErrEmptyInput  = errors.New("no usable edges after filtering")
	ErrUnknownNode = errors.New("unknown node")
)

// GraphError provides structured error information for graph operations.
type GraphError struct {
	Op      string // Operation that failed (e.g., "build", "lookup")
	Node    string // Node identifier (if applicable)
	Records int    // Number of input records considered
	Dropped int    // Number of records dropped during filtering
	Cause   error  // Underlying error
}

// Error implements the error interface.
func (e *GraphError) Error() string {
	if e.Node != "" {
		return fmt.Sprintf("%s node %q: %v", e.Op, e.Node, e.Cause)
	}
	if e.Records > 0 || e.Dropped > 0 {
		return fmt.Sprintf("%s graph (%d records, %d dropped): %v", e.Op, e.Records, e.Dropped, e.Cause)
	}
	return fmt.Sprintf("%s graph: %v", e.Op, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *GraphError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target error matches this error's cause.
func (e *GraphError) Is(target error) bool {
	if target == nil {
		return false
	}
	return errors.Is(e.Cause, target)
}

// IsEmptyInput returns true if err reports an empty graph.
func IsEmptyInput(err error) bool {
	return errors.Is(err, ErrEmptyInput)
}

func unknownNodeError(id string) error {
	return &GraphError{Op: "lookup", Node: id, Cause: ErrUnknownNode}
}
