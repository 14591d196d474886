package source

import (
	"context"
	"time"

	"github.com/dd0wney/cluso-tradenet/pkg/logging"
	"github.com/dd0wney/cluso-tradenet/pkg/metrics"
	"github.com/dd0wney/cluso-tradenet/pkg/network"
)

// Instrumented wraps a FlowSource, recording read latency, record counts
// and failures.
type Instrumented struct {
	FlowSource
	logger  logging.Logger
	metrics *metrics.Registry
}

// Instrument wraps src. A nil logger or registry disables that concern.
func Instrument(src FlowSource, logger logging.Logger, registry *metrics.Registry) *Instrumented {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Instrumented{
		FlowSource: src,
		logger:     logger.With(logging.Component("source"), logging.Source(src.Name())),
		metrics:    registry,
	}
}

func (s *Instrumented) observe(op string, n int, start time.Time, err error) {
	d := time.Since(start)
	if s.metrics != nil {
		s.metrics.RecordSourceRead(s.Name(), op, n, d, err)
	}
	if err != nil {
		s.logger.Warn("source read failed",
			logging.String("operation", op),
			logging.Latency(d),
			logging.Error(err),
		)
		return
	}
	s.logger.Debug("source read",
		logging.String("operation", op),
		logging.Count(n),
		logging.Latency(d),
	)
}

// NetworkFlows delegates to the wrapped source
func (s *Instrumented) NetworkFlows(ctx context.Context) ([]network.FlowRecord, error) {
	start := time.Now()
	flows, err := s.FlowSource.NetworkFlows(ctx)
	s.observe("network_flows", len(flows), start, err)
	return flows, err
}

// Countries delegates to the wrapped source
func (s *Instrumented) Countries(ctx context.Context) ([]string, error) {
	start := time.Now()
	countries, err := s.FlowSource.Countries(ctx)
	s.observe("countries", len(countries), start, err)
	return countries, err
}

// Records delegates to the wrapped source
func (s *Instrumented) Records(ctx context.Context, filter Filter) ([]TradeRecord, error) {
	start := time.Now()
	records, err := s.FlowSource.Records(ctx, filter)
	s.observe("records", len(records), start, err)
	return records, err
}
