package observer

import (
	"fmt"
	"io"
	"time"

	"github.com/jmhodges/clock"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/eastcoast-online/envcheck/cmd"
	"github.com/eastcoast-online/envcheck/config"
	"github.com/eastcoast-online/envcheck/environment"
	blog "github.com/eastcoast-online/envcheck/log"
	"github.com/eastcoast-online/envcheck/observer/probers"
	httpprober "github.com/eastcoast-online/envcheck/observer/probers/http"
)

// minPeriod is the shortest accepted repeat period.
const minPeriod = time.Second

// ObsConf is exported to receive YAML configuration. Every field is
// optional; the zero value runs a single sweep and logs warnings to stderr.
type ObsConf struct {
	Log           blog.Config             `yaml:"log"`
	DebugAddr     string                  `yaml:"debugaddr" validate:"omitempty,hostname_port"`
	Period        config.Duration         `yaml:"period"`
	OpenTelemetry cmd.OpenTelemetryConfig `yaml:"opentelemetry"`
}

// validatePeriod ensures the `Period` received by `ObsConf` is either zero
// (run once) or at least minPeriod.
func (c *ObsConf) validatePeriod() error {
	switch {
	case c.Period.Duration < 0:
		return fmt.Errorf("invalid 'period', got: %s, must not be negative", c.Period.Duration)
	case c.Period.Duration > 0 && c.Period.Duration < minPeriod:
		return fmt.Errorf("invalid 'period', got: %s, must be at least %s", c.Period.Duration, minPeriod)
	}
	return nil
}

// Validate checks the struct tags of the whole config and then the fields
// whose rules can't be expressed as tags.
func (c *ObsConf) Validate() error {
	err := cmd.ValidateConfig(c)
	if err != nil {
		return err
	}
	return c.validatePeriod()
}

// MakeObserver returns an Observer which probes every endpoint of env, in
// order, over insecure TLS.
func (c *ObsConf) MakeObserver(env environment.Environment, out io.Writer, clk clock.Clock, stats prometheus.Registerer) *Observer {
	urls := env.URLs()
	probes := make([]probers.Prober, 0, len(urls))
	for _, u := range urls {
		probes = append(probes, httpprober.New(u, clk, nil))
	}
	return New(probes, out, clk, stats)
}
