package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initSourceMetrics() {
	r.SourceRecordsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradenet_source_records_total",
			Help: "Total number of trade records read from a flow source",
		},
		[]string{"source"},
	)

	r.SourceLoadDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tradenet_source_load_duration_seconds",
			Help:    "Flow source read latency in seconds",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
		},
		[]string{"source", "operation"},
	)

	r.SourceErrorsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradenet_source_errors_total",
			Help: "Total number of failed flow source reads",
		},
		[]string{"source", "operation"},
	)
}
