package analysis

import (
	"errors"

	"github.com/dd0wney/cluso-tradenet/pkg/algorithms"
)

// Status describes the outcome of one component or of a whole analysis.
type Status string

const (
	StatusOK             Status = "ok"
	StatusPartial        Status = "partial"
	StatusDegraded       Status = "degraded"
	StatusDidNotConverge Status = "did_not_converge"
	StatusFailed         Status = "error"
	StatusEmptyInput     Status = "empty_input"
	StatusCancelled      Status = "cancelled"
	StatusSkipped        Status = "skipped"
)

// ErrorInfo is a human-readable diagnostic with a machine-readable kind.
type ErrorInfo struct {
	Kind    algorithms.ErrorKind `json:"kind"`
	Message string               `json:"message"`
}

func errorInfo(err error) *ErrorInfo {
	if err == nil {
		return nil
	}
	return &ErrorInfo{Kind: algorithms.KindOf(err), Message: err.Error()}
}

// GraphInfo summarises the network an analysis ran on.
type GraphInfo struct {
	NodeCount   int     `json:"node_count"`
	EdgeCount   int     `json:"edge_count"`
	Components  int     `json:"components"`
	TotalWeight float64 `json:"total_weight"`
	Records     int     `json:"records"`
	Dropped     int     `json:"dropped"`
}

// Ranking is one centrality result. When Status is not "ok" the scores are
// either partial (degraded) or absent, and Error says why.
type Ranking struct {
	Status     Status                  `json:"status"`
	Scores     []algorithms.RankedNode `json:"scores"`
	Iterations int                     `json:"iterations,omitempty"`
	Skipped    []string                `json:"skipped,omitempty"`
	Error      *ErrorInfo              `json:"error,omitempty"`
}

// OK reports whether the ranking is complete.
func (r Ranking) OK() bool {
	return r.Status == StatusOK
}

func rankingFrom(result *algorithms.CentralityResult, err error) Ranking {
	switch {
	case err == nil:
		return Ranking{Status: StatusOK, Scores: result.Top, Iterations: result.Iterations}
	case errors.Is(err, algorithms.ErrDegradedPath) && result != nil:
		return Ranking{Status: StatusDegraded, Scores: result.Top, Skipped: result.Skipped, Error: errorInfo(err)}
	case errors.Is(err, algorithms.ErrConvergence):
		r := Ranking{Status: StatusDidNotConverge, Scores: []algorithms.RankedNode{}, Error: errorInfo(err)}
		var aerr *algorithms.AnalysisError
		if errors.As(err, &aerr) {
			r.Iterations = aerr.Iterations
		}
		return r
	}
	return Ranking{Status: StatusFailed, Scores: []algorithms.RankedNode{}, Error: errorInfo(err)}
}

// Centrality groups the centrality rankings of a report.
type Centrality struct {
	InDegree    Ranking `json:"in_degree"`
	OutDegree   Ranking `json:"out_degree"`
	InStrength  Ranking `json:"in_strength"`
	OutStrength Ranking `json:"out_strength"`
	Betweenness Ranking `json:"betweenness"`
	Eigenvector Ranking `json:"eigenvector"`
}

// Report is the combined result of one analysis.
//
// A request-wide failure (empty input, cancellation) leaves GraphInfo and
// Centrality nil and sets Error. Component failures are reported inside the
// affected Ranking or in CommunitiesError, next to the results that
// succeeded.
type Report struct {
	ID               string      `json:"id"`
	Status           Status      `json:"status"`
	GraphInfo        *GraphInfo  `json:"graph_info,omitempty"`
	Centrality       *Centrality `json:"centrality,omitempty"`
	Communities      [][]string  `json:"communities"`
	Modularity       float64     `json:"modularity"`
	CommunitiesError *ErrorInfo  `json:"communities_error,omitempty"`
	Error            *ErrorInfo  `json:"error,omitempty"`
	DurationMS       float64     `json:"duration_ms"`
}
