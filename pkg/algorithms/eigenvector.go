package algorithms

import (
	"context"

	"gonum.org/v1/gonum/floats"

	"github.com/dd0wney/cluso-tradenet/pkg/network"
)

// EigenvectorOptions configures eigenvector centrality
type EigenvectorOptions struct {
	MaxIterations int
	Tolerance     float64 // Convergence threshold on the L1 change between iterates
	// Shift iterates (I + A^T) instead of A^T. The dominant eigenvector is the
	// same, but periodic graphs converge instead of oscillating.
	Shift bool
	TopN  int
}

// DefaultEigenvectorOptions returns default eigenvector configuration
func DefaultEigenvectorOptions() EigenvectorOptions {
	return EigenvectorOptions{
		MaxIterations: 1000,
		Tolerance:     1e-3,
		Shift:         true,
		TopN:          20,
	}
}

// EigenvectorCentrality computes weighted eigenvector centrality by power
// iteration. A node's score is fed by the scores of the nodes that trade into
// it, weighted by trade value. The vector starts uniform and is normalized to
// unit L2 norm after every step; iteration stops once the sum of absolute
// differences between successive vectors drops below opts.Tolerance.
//
// Exhausting opts.MaxIterations, or an iterate collapsing to the zero vector,
// returns an *AnalysisError wrapping ErrConvergence and no scores. The context
// is checked between iterations.
func EigenvectorCentrality(ctx context.Context, g *network.Graph, opts EigenvectorOptions) (*CentralityResult, error) {
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultEigenvectorOptions().MaxIterations
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = DefaultEigenvectorOptions().Tolerance
	}

	n := g.NodeCount()
	x := make([]float64, n)
	for i := range x {
		x[i] = 1.0 / float64(n)
	}
	next := make([]float64, n)

	residual := 0.0
	for iter := 1; iter <= opts.MaxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, cancelledError("eigenvector", err)
		}

		if opts.Shift {
			copy(next, x)
		} else {
			clear(next)
		}
		for v := 0; v < n; v++ {
			for _, a := range g.In(v) {
				next[v] += a.Weight * x[a.Node]
			}
		}

		norm := floats.Norm(next, 2)
		if norm == 0 {
			return nil, &AnalysisError{
				Algorithm:  "eigenvector",
				Kind:       KindConvergence,
				Iterations: iter,
				Cause:      ErrConvergence,
			}
		}
		floats.Scale(1/norm, next)

		residual = floats.Distance(next, x, 1)
		x, next = next, x

		if residual < opts.Tolerance {
			return &CentralityResult{
				Algorithm:  "eigenvector",
				Scores:     x,
				Top:        TopN(g, x, opts.TopN),
				Iterations: iter,
				graph:      g,
			}, nil
		}
	}

	return nil, &AnalysisError{
		Algorithm:  "eigenvector",
		Kind:       KindConvergence,
		Iterations: opts.MaxIterations,
		Residual:   residual,
		Cause:      ErrConvergence,
	}
}
