package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// SetupPrometheus creates the registry served on /metrics.
func SetupPrometheus(versionInfo string, extra ...prometheus.Collector) *prometheus.Registry {
	promRegistry := prometheus.NewRegistry()

	versionGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   "rufit",
		Name:        "version_info",
		Help:        "Running service version, always 1",
		ConstLabels: prometheus.Labels{"version": versionInfo},
	})
	versionGauge.Set(1)

	promRegistry.MustRegister(
		versionGauge,
		collectors.NewGoCollector(
			collectors.WithGoCollectorRuntimeMetrics(collectors.MetricsGC, collectors.MetricsMemory, collectors.MetricsScheduler),
		),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	promRegistry.MustRegister(extra...)

	return promRegistry
}
