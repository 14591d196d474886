package metrics

import (
	"time"
)

// Analysis outcomes used as the status label of tradenet_analysis_total
const (
	StatusOK       = "ok"
	StatusPartial  = "partial"
	StatusEmpty    = "empty_input"
	StatusCanceled = "cancelled"
	StatusError    = "error"
)

// RecordHTTPRequest records an HTTP request with its duration
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordResponseSize records the size of an HTTP response body
func (r *Registry) RecordResponseSize(method, path string, size float64) {
	r.HTTPResponseSizeBytes.WithLabelValues(method, path).Observe(size)
}

// IncHTTPRequestsInFlight marks the start of a request
func (r *Registry) IncHTTPRequestsInFlight() {
	r.HTTPRequestsInFlight.Inc()
}

// DecHTTPRequestsInFlight marks the end of a request
func (r *Registry) DecHTTPRequestsInFlight() {
	r.HTTPRequestsInFlight.Dec()
}

// RecordAuthFailure counts a rejected bearer token
func (r *Registry) RecordAuthFailure() {
	r.AuthFailuresTotal.Inc()
}

// RecordAnalysis records a completed analysis and its total duration
func (r *Registry) RecordAnalysis(status string, duration time.Duration) {
	r.AnalysisTotal.WithLabelValues(status).Inc()
	r.AnalysisDuration.Observe(duration.Seconds())
}

// RecordStage records the duration of one analysis stage
func (r *Registry) RecordStage(stage string, duration time.Duration) {
	r.AnalysisStageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// SetGraphSize records the size of the analysed network
func (r *Registry) SetGraphSize(nodes, edges int) {
	r.GraphNodes.Set(float64(nodes))
	r.GraphEdges.Set(float64(edges))
}

// RecordDropped records flow records the builder excluded, by reason
func (r *Registry) RecordDropped(reason string, n int) {
	if n > 0 {
		r.RecordsDroppedTotal.WithLabelValues(reason).Add(float64(n))
	}
}

// RecordSourceRead records a flow source read. A non-nil err counts as a
// failure and records is ignored.
func (r *Registry) RecordSourceRead(source, operation string, records int, duration time.Duration, err error) {
	r.SourceLoadDuration.WithLabelValues(source, operation).Observe(duration.Seconds())
	if err != nil {
		r.SourceErrorsTotal.WithLabelValues(source, operation).Inc()
		return
	}
	r.SourceRecordsTotal.WithLabelValues(source).Add(float64(records))
}

// UpdateSystemMetrics refreshes the uptime gauge
func (r *Registry) UpdateSystemMetrics(startTime time.Time) {
	r.UptimeSeconds.Set(time.Since(startTime).Seconds())
}
