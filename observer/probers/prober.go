package probers

import (
	"context"
	"time"
)

// Result is the outcome of one probe. When the probe fails only URL and
// Latency are set.
type Result struct {
	URL        string
	StatusCode int
	Latency    time.Duration
}

// Millis returns the latency in whole milliseconds, truncated.
func (r Result) Millis() int64 {
	return r.Latency.Milliseconds()
}

// Prober is the interface for `Prober` types.
type Prober interface {
	// Name returns a name that uniquely identifies the target of this
	// `Prober`.
	Name() string

	// Kind returns a name that uniquely identifies the `Kind` of `Prober`.
	Kind() string

	// Probe performs a single request. A non-nil error means no response was
	// obtained; any response at all, whatever its status, is a success.
	Probe(ctx context.Context) (Result, error)
}
