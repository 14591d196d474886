package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/dd0wney/cluso-tradenet/pkg/algorithms"
	"github.com/dd0wney/cluso-tradenet/pkg/analysis"
	"github.com/dd0wney/cluso-tradenet/pkg/network"
	"github.com/dd0wney/cluso-tradenet/pkg/validation"
)

type analyzeFunc func(ctx context.Context, records []network.FlowRecord, opts analysis.Options) (*analysis.Report, error)

func (s *Server) handleNetwork(w http.ResponseWriter, r *http.Request) {
	s.runAnalysis(w, r, s.engine.Analyze)
}

func (s *Server) handleClusters(w http.ResponseWriter, r *http.Request) {
	s.runAnalysis(w, r, s.engine.Communities)
}

// analysisOptions overlays the request's query parameters on the server
// defaults.
func (s *Server) analysisOptions(r *http.Request) (analysis.Options, *queryDecoder) {
	opts := s.options
	req := validation.NetworkRequest{
		TopN:          opts.TopN,
		MaxIterations: opts.MaxIterations,
		Tolerance:     opts.Tolerance,
		WeightPolicy:  string(opts.WeightPolicy),
		MaxPasses:     opts.MaxPasses,
	}
	qd := newQueryDecoder(r).
		Int("top_n", &req.TopN).
		Int("max_iterations", &req.MaxIterations).
		Float("tolerance", &req.Tolerance).
		String("weight_policy", &req.WeightPolicy).
		Int("max_passes", &req.MaxPasses).
		Bool("shift", &opts.Shift).
		Validate(func() error { return validation.ValidateNetworkRequest(&req) })

	opts.TopN = req.TopN
	opts.MaxIterations = req.MaxIterations
	opts.Tolerance = req.Tolerance
	opts.WeightPolicy = algorithms.WeightPolicy(req.WeightPolicy)
	opts.MaxPasses = req.MaxPasses
	return opts, qd
}

func (s *Server) runAnalysis(w http.ResponseWriter, r *http.Request, analyze analyzeFunc) {
	opts, qd := s.analysisOptions(r)
	if qd.RespondError(s, w) {
		return
	}

	ctx := r.Context()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	flows, err := s.source.NetworkFlows(ctx)
	if err != nil {
		s.respondSourceError(w, r, err, "load trade network")
		return
	}

	report, err := analyze(ctx, flows, opts)
	s.respondJSON(w, reportStatusCode(report, err), report)
}

// reportStatusCode maps a report outcome to an HTTP status. Partial
// results are still a success: the failed components are described in
// the body.
func reportStatusCode(report *analysis.Report, err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case report != nil && report.Status == analysis.StatusEmptyInput, network.IsEmptyInput(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
