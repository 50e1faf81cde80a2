package probers

import (
	"context"
	"errors"
	"time"

	"github.com/jmhodges/clock"

	"github.com/eastcoast-online/envcheck/observer/probers"
)

// ErrMock is returned by a failing MockProber.
var ErrMock = errors.New("mock probe failed")

// MockProber returns a canned outcome. If Clk is a fake clock it is advanced
// by Took on every probe; OnProbe, if set, runs before the outcome is
// returned.
type MockProber struct {
	PName   string
	Status  int
	Took    time.Duration
	Success bool
	Clk     clock.FakeClock
	OnProbe func()
}

var _ probers.Prober = MockProber{}

func (p MockProber) Name() string {
	return p.PName
}

func (p MockProber) Kind() string {
	return "Mock"
}

func (p MockProber) Probe(ctx context.Context) (probers.Result, error) {
	if p.Clk != nil {
		p.Clk.Add(p.Took)
	}
	if p.OnProbe != nil {
		p.OnProbe()
	}
	if !p.Success {
		return probers.Result{URL: p.PName, Latency: p.Took}, ErrMock
	}
	return probers.Result{URL: p.PName, StatusCode: p.Status, Latency: p.Took}, nil
}
