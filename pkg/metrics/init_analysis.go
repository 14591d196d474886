package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initAnalysisMetrics() {
	r.AnalysisTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradenet_analysis_total",
			Help: "Total number of network analyses by outcome",
		},
		[]string{"status"},
	)

	r.AnalysisDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tradenet_analysis_duration_seconds",
			Help:    "End-to-end network analysis duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 10.0, 30.0},
		},
	)

	r.AnalysisStageDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tradenet_analysis_stage_duration_seconds",
			Help:    "Duration of each analysis stage in seconds",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 10.0},
		},
		[]string{"stage"},
	)

	r.ConvergenceFailuresTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "tradenet_convergence_failures_total",
			Help: "Total number of eigenvector runs that did not converge",
		},
	)

	r.DegradedResultsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "tradenet_degraded_results_total",
			Help: "Total number of betweenness results returned with skipped sources",
		},
	)

	r.GraphNodes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "tradenet_graph_nodes",
			Help: "Node count of the most recently analysed trade network",
		},
	)

	r.GraphEdges = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "tradenet_graph_edges",
			Help: "Edge count of the most recently analysed trade network",
		},
	)

	r.RecordsDroppedTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradenet_records_dropped_total",
			Help: "Flow records excluded while building the network",
		},
		[]string{"reason"},
	)
}
