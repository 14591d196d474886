package analysis

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dd0wney/cluso-tradenet/pkg/algorithms"
	"github.com/dd0wney/cluso-tradenet/pkg/logging"
	"github.com/dd0wney/cluso-tradenet/pkg/metrics"
	"github.com/dd0wney/cluso-tradenet/pkg/network"
)

// Engine runs network analyses over snapshots of trade flows. An Engine holds
// no per-analysis state and is safe for concurrent use; every call builds its
// own graph.
type Engine struct {
	logger  logging.Logger
	metrics *metrics.Registry
}

// NewEngine creates an engine. A nil logger discards output and a nil
// registry disables metrics.
func NewEngine(logger logging.Logger, registry *metrics.Registry) *Engine {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Engine{
		logger:  logger.With(logging.Component("engine")),
		metrics: registry,
	}
}

// Analyze builds the trade network from records and runs every analytic
// component on it concurrently.
//
// The returned report is never nil. The error is non-nil only for
// request-wide failures: empty input (network.ErrEmptyInput) or
// cancellation of ctx. Component failures such as non-convergence are
// reported inside the report and do not produce an error.
func (e *Engine) Analyze(ctx context.Context, records []network.FlowRecord, opts Options) (*Report, error) {
	return e.run(ctx, records, opts, AllStages)
}

// Communities builds the trade network and runs community detection only.
func (e *Engine) Communities(ctx context.Context, records []network.FlowRecord, opts Options) (*Report, error) {
	return e.run(ctx, records, opts, []Stage{StageCommunities})
}

func (e *Engine) run(ctx context.Context, records []network.FlowRecord, opts Options, stages []Stage) (*Report, error) {
	start := time.Now()
	report := &Report{
		ID:          uuid.NewString(),
		Communities: [][]string{},
	}
	log := e.logger.With(logging.AnalysisID(report.ID))

	finish := func(status Status, err error) (*Report, error) {
		report.Status = status
		report.DurationMS = float64(time.Since(start).Microseconds()) / 1000
		if err != nil {
			report.Error = errorInfo(err)
		}
		if e.metrics != nil {
			e.metrics.RecordAnalysis(string(status), time.Since(start))
		}
		return report, err
	}

	if err := ctx.Err(); err != nil {
		return finish(StatusCancelled, err)
	}

	timer := logging.StartTimer(log, "graph built", logging.Stage(string(StageBuild)))
	g, err := network.Build(records)
	e.observeStage(StageBuild, timer.Elapsed())
	if err != nil {
		timer.EndWarn(err, logging.Int("records", len(records)))
		return finish(StatusEmptyInput, err)
	}
	timer.End(logging.Int("nodes", g.NodeCount()), logging.Int("edges", g.EdgeCount()))

	stats := g.Stats()
	report.GraphInfo = &GraphInfo{
		NodeCount:   g.NodeCount(),
		EdgeCount:   g.EdgeCount(),
		Components:  len(algorithms.ConnectedComponents(g)),
		TotalWeight: g.TotalWeight(),
		Records:     stats.Records,
		Dropped:     stats.Dropped(),
	}
	if e.metrics != nil {
		e.metrics.SetGraphSize(g.NodeCount(), g.EdgeCount())
		e.metrics.RecordDropped("self_loop", stats.SelfLoops)
		e.metrics.RecordDropped("non_positive", stats.NonPositive)
		e.metrics.RecordDropped("anonymous", stats.Anonymous)
		e.metrics.RecordDropped("non_finite", stats.NonFinite)
	}

	centrality := &Centrality{}
	grp, gctx := errgroup.WithContext(ctx)

	if slices.Contains(stages, StageDegree) {
		grp.Go(func() error {
			timer := logging.StartTimer(log, "degree computed", logging.Stage(string(StageDegree)))
			degree := algorithms.DegreeCentrality(g, opts.TopN)
			centrality.InDegree = Ranking{Status: StatusOK, Scores: degree.InDegree}
			centrality.OutDegree = Ranking{Status: StatusOK, Scores: degree.OutDegree}
			centrality.InStrength = Ranking{Status: StatusOK, Scores: degree.InStrength}
			centrality.OutStrength = Ranking{Status: StatusOK, Scores: degree.OutStrength}
			e.observeStage(StageDegree, timer.End())
			return nil
		})
	}

	if slices.Contains(stages, StageBetweenness) {
		grp.Go(func() error {
			timer := logging.StartTimer(log, "betweenness computed", logging.Stage(string(StageBetweenness)))
			result, err := algorithms.BetweennessCentrality(gctx, g, opts.betweenness())
			if isCancellation(err) {
				return err
			}
			centrality.Betweenness = rankingFrom(result, err)
			if err != nil {
				e.observeStage(StageBetweenness, timer.EndWarn(err))
				if e.metrics != nil && errors.Is(err, algorithms.ErrDegradedPath) {
					e.metrics.DegradedResultsTotal.Inc()
				}
				return nil
			}
			e.observeStage(StageBetweenness, timer.End())
			return nil
		})
	}

	if slices.Contains(stages, StageEigenvector) {
		grp.Go(func() error {
			timer := logging.StartTimer(log, "eigenvector computed", logging.Stage(string(StageEigenvector)))
			result, err := algorithms.EigenvectorCentrality(gctx, g, opts.eigenvector())
			if isCancellation(err) {
				return err
			}
			centrality.Eigenvector = rankingFrom(result, err)
			if err != nil {
				e.observeStage(StageEigenvector, timer.EndWarn(err))
				if e.metrics != nil && errors.Is(err, algorithms.ErrConvergence) {
					e.metrics.ConvergenceFailuresTotal.Inc()
				}
				return nil
			}
			e.observeStage(StageEigenvector, timer.End(logging.Int("iterations", result.Iterations)))
			return nil
		})
	}

	if slices.Contains(stages, StageCommunities) {
		grp.Go(func() error {
			timer := logging.StartTimer(log, "communities detected", logging.Stage(string(StageCommunities)))
			partition, err := algorithms.DetectCommunities(gctx, g, opts.communities())
			if isCancellation(err) {
				return err
			}
			if err != nil {
				report.CommunitiesError = errorInfo(err)
				e.observeStage(StageCommunities, timer.EndError(err))
				return nil
			}
			report.Communities = partition.Communities
			report.Modularity = partition.Modularity
			e.observeStage(StageCommunities, timer.End(logging.Count(len(partition.Communities))))
			return nil
		})
	}

	if err := grp.Wait(); err != nil {
		log.Warn("analysis cancelled", logging.Error(err))
		report.GraphInfo = nil
		report.Communities = [][]string{}
		report.CommunitiesError = nil
		return finish(StatusCancelled, err)
	}

	if !slices.Equal(stages, []Stage{StageCommunities}) {
		markSkipped(centrality, stages)
		report.Centrality = centrality
	}

	status := StatusOK
	if report.CommunitiesError != nil || (report.Centrality != nil && !report.Centrality.complete(stages)) {
		status = StatusPartial
	}
	log.Info("analysis complete",
		logging.String("status", string(status)),
		logging.Int("nodes", g.NodeCount()),
		logging.Int("edges", g.EdgeCount()),
		logging.Latency(time.Since(start)),
	)
	return finish(status, nil)
}

func (e *Engine) observeStage(stage Stage, d time.Duration) {
	if e.metrics != nil {
		e.metrics.RecordStage(string(stage), d)
	}
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// markSkipped fills rankings of stages that were not requested.
func markSkipped(c *Centrality, stages []Stage) {
	skipped := Ranking{Status: StatusSkipped, Scores: []algorithms.RankedNode{}}
	if !slices.Contains(stages, StageDegree) {
		c.InDegree, c.OutDegree, c.InStrength, c.OutStrength = skipped, skipped, skipped, skipped
	}
	if !slices.Contains(stages, StageBetweenness) {
		c.Betweenness = skipped
	}
	if !slices.Contains(stages, StageEigenvector) {
		c.Eigenvector = skipped
	}
}

func (c *Centrality) complete(stages []Stage) bool {
	for _, stage := range stages {
		switch stage {
		case StageBetweenness:
			if !c.Betweenness.OK() {
				return false
			}
		case StageEigenvector:
			if !c.Eigenvector.OK() {
				return false
			}
		}
	}
	return true
}
