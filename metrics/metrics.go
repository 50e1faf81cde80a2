package metrics

import (
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/eastcoast-online/envcheck/core"
)

// NoopRegisterer accepts and discards every collector. It is useful for
// tests and for callers which do not export metrics.
var NoopRegisterer = noopRegisterer{}

type noopRegisterer struct{}

func (noopRegisterer) MustRegister(_ ...prometheus.Collector) {}

func (noopRegisterer) Register(_ prometheus.Collector) error { return nil }

func (noopRegisterer) Unregister(_ prometheus.Collector) bool { return true }

// NewRegistry returns a prometheus registry preloaded with the Go runtime and
// process collectors and a gauge describing the running build.
func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	registry.MustRegister(newVersionCollector())
	return registry
}

// newVersionCollector returns a gauge with a constant value of 1 whose labels
// identify the build.
func newVersionCollector() prometheus.Collector {
	buildTime := core.GetBuildTime()
	return prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "version",
			Help: "Indicator of current envcheck version. Use buildId label for version info.",
			ConstLabels: prometheus.Labels{
				"buildId":     core.GetBuildID(),
				"buildTime":   buildTime,
				"goVersion":   runtime.Version(),
				"commandName": core.Command(),
			},
		},
		func() float64 { return 1 },
	)
}
