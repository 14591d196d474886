package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all metrics for the application
type Registry struct {
	// HTTP Metrics
	HTTPRequestsTotal     *prometheus.CounterVec
	HTTPRequestDuration   *prometheus.HistogramVec
	HTTPRequestsInFlight  prometheus.Gauge
	HTTPResponseSizeBytes *prometheus.HistogramVec
	AuthFailuresTotal     prometheus.Counter

	// Analysis Metrics
	AnalysisTotal            *prometheus.CounterVec
	AnalysisDuration         prometheus.Histogram
	AnalysisStageDuration    *prometheus.HistogramVec
	ConvergenceFailuresTotal prometheus.Counter
	DegradedResultsTotal     prometheus.Counter
	GraphNodes               prometheus.Gauge
	GraphEdges               prometheus.Gauge
	RecordsDroppedTotal      *prometheus.CounterVec

	// Flow Source Metrics
	SourceRecordsTotal *prometheus.CounterVec
	SourceLoadDuration *prometheus.HistogramVec
	SourceErrorsTotal  *prometheus.CounterVec

	// System Metrics. Go runtime and process metrics come from the
	// standard collectors.
	UptimeSeconds prometheus.Gauge
	BuildInfo     *prometheus.GaugeVec

	registry *prometheus.Registry
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	r.initHTTPMetrics()
	r.initAnalysisMetrics()
	r.initSourceMetrics()
	r.initSystemMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}

// Handler returns an HTTP handler exposing the registry in the Prometheus
// text format
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
