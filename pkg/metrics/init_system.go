package metrics

import (
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// initSystemMetrics registers process and Go runtime collectors next to the
// server's own uptime and build gauges.
func (r *Registry) initSystemMetrics() {
	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r.UptimeSeconds = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "tradenet_uptime_seconds",
			Help: "Time since the server started in seconds",
		},
	)

	r.BuildInfo = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tradenet_build_info",
			Help: "Always 1; labelled with the running version and Go toolchain",
		},
		[]string{"version", "go_version"},
	)
}

// SetBuildInfo publishes the running version.
func (r *Registry) SetBuildInfo(version string) {
	r.BuildInfo.Reset()
	r.BuildInfo.WithLabelValues(version, runtime.Version()).Set(1)
}
