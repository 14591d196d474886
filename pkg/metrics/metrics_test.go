package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()

	var metric dto.Metric
	if err := c.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	return metric.Counter.GetValue()
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry() returned nil")
	}

	// Verify all metrics are initialized
	if r.HTTPRequestsTotal == nil {
		t.Error("HTTPRequestsTotal not initialized")
	}
	if r.AnalysisTotal == nil {
		t.Error("AnalysisTotal not initialized")
	}
	if r.AnalysisStageDuration == nil {
		t.Error("AnalysisStageDuration not initialized")
	}
	if r.SourceRecordsTotal == nil {
		t.Error("SourceRecordsTotal not initialized")
	}
	if r.GetPrometheusRegistry() == nil {
		t.Error("Prometheus registry not initialized")
	}
}

func TestDefaultRegistry(t *testing.T) {
	// Should return the same instance
	r1 := DefaultRegistry()
	r2 := DefaultRegistry()

	if r1 != r2 {
		t.Error("DefaultRegistry() should return the same instance")
	}
}

func TestRecordHTTPRequest(t *testing.T) {
	r := NewRegistry()

	r.RecordHTTPRequest("GET", "/api/v1/network", "200", 100*time.Millisecond)
	r.RecordHTTPRequest("GET", "/api/v1/network", "422", 5*time.Millisecond)
	r.RecordHTTPRequest("GET", "/api/v1/countries", "200", 50*time.Millisecond)

	counter, err := r.HTTPRequestsTotal.GetMetricWithLabelValues("GET", "/api/v1/network", "200")
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}
	if v := counterValue(t, counter); v != 1 {
		t.Errorf("Counter value = %v, want 1", v)
	}
}

func TestRecordAnalysis(t *testing.T) {
	r := NewRegistry()

	r.RecordAnalysis(StatusOK, 20*time.Millisecond)
	r.RecordAnalysis(StatusOK, 30*time.Millisecond)
	r.RecordAnalysis(StatusPartial, 40*time.Millisecond)

	ok, _ := r.AnalysisTotal.GetMetricWithLabelValues(StatusOK)
	if v := counterValue(t, ok); v != 2 {
		t.Errorf("ok analyses = %v, want 2", v)
	}
	partial, _ := r.AnalysisTotal.GetMetricWithLabelValues(StatusPartial)
	if v := counterValue(t, partial); v != 1 {
		t.Errorf("partial analyses = %v, want 1", v)
	}

	var metric dto.Metric
	if err := r.AnalysisDuration.Write(&metric); err != nil {
		t.Fatalf("Failed to write histogram: %v", err)
	}
	if metric.Histogram.GetSampleCount() != 3 {
		t.Errorf("Duration samples = %d, want 3", metric.Histogram.GetSampleCount())
	}
}

func TestRecordStage(t *testing.T) {
	r := NewRegistry()

	r.RecordStage("betweenness", 10*time.Millisecond)
	r.RecordStage("betweenness", 20*time.Millisecond)

	observer, err := r.AnalysisStageDuration.GetMetricWithLabelValues("betweenness")
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}
	var metric dto.Metric
	if err := observer.(prometheus.Histogram).Write(&metric); err != nil {
		t.Fatalf("Failed to write histogram: %v", err)
	}
	if metric.Histogram.GetSampleCount() != 2 {
		t.Errorf("Stage samples = %d, want 2", metric.Histogram.GetSampleCount())
	}
}

func TestRecordSourceRead(t *testing.T) {
	r := NewRegistry()

	r.RecordSourceRead("postgres", "network_flows", 120, time.Millisecond, nil)
	r.RecordSourceRead("postgres", "network_flows", 30, time.Millisecond, nil)
	r.RecordSourceRead("postgres", "network_flows", 999, time.Millisecond, errors.New("timeout"))

	records, _ := r.SourceRecordsTotal.GetMetricWithLabelValues("postgres")
	if v := counterValue(t, records); v != 150 {
		t.Errorf("Source records = %v, want 150", v)
	}
	failures, _ := r.SourceErrorsTotal.GetMetricWithLabelValues("postgres", "network_flows")
	if v := counterValue(t, failures); v != 1 {
		t.Errorf("Source errors = %v, want 1", v)
	}
}

func TestRecordDropped(t *testing.T) {
	r := NewRegistry()

	r.RecordDropped("self_loop", 3)
	r.RecordDropped("self_loop", 0)

	c, _ := r.RecordsDroppedTotal.GetMetricWithLabelValues("self_loop")
	if v := counterValue(t, c); v != 3 {
		t.Errorf("Dropped = %v, want 3", v)
	}
}

func TestGaugeMetrics(t *testing.T) {
	r := NewRegistry()

	r.SetGraphSize(12, 40)
	r.UpdateSystemMetrics(time.Now().Add(-time.Minute))

	tests := []struct {
		name  string
		gauge prometheus.Gauge
		check func(float64) bool
	}{
		{"GraphNodes", r.GraphNodes, func(v float64) bool { return v == 12 }},
		{"GraphEdges", r.GraphEdges, func(v float64) bool { return v == 40 }},
		{"UptimeSeconds", r.UptimeSeconds, func(v float64) bool { return v >= 60 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var metric dto.Metric
			if err := tt.gauge.Write(&metric); err != nil {
				t.Fatalf("Failed to write metric: %v", err)
			}
			if !tt.check(metric.Gauge.GetValue()) {
				t.Errorf("%s = %v", tt.name, metric.Gauge.GetValue())
			}
		})
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	r := NewRegistry()
	r.ConvergenceFailuresTotal.Inc()
	r.DegradedResultsTotal.Inc()
	r.SetBuildInfo("1.2.3")

	rr := httptest.NewRecorder()
	r.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	for _, name := range []string{
		"tradenet_convergence_failures_total 1",
		"tradenet_degraded_results_total 1",
		"tradenet_graph_nodes",
		`tradenet_build_info{go_version="` + runtime.Version() + `",version="1.2.3"} 1`,
		"go_goroutines",
	} {
		if !strings.Contains(string(body), name) {
			t.Errorf("Expected %q in metrics output", name)
		}
	}
}
