package observer

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jmhodges/clock"
	"github.com/prometheus/client_golang/prometheus"
	io_prometheus_client "github.com/prometheus/client_model/go"

	blog "github.com/eastcoast-online/envcheck/log"
	"github.com/eastcoast-online/envcheck/metrics"
	"github.com/eastcoast-online/envcheck/observer/probers"
	mock "github.com/eastcoast-online/envcheck/observer/probers/mock"
	"github.com/eastcoast-online/envcheck/test"
)

func TestRunReportsInOrder(t *testing.T) {
	clk := clock.NewFake()
	probes := []probers.Prober{
		mock.MockProber{PName: "https://a.example", Status: 200, Took: 120 * time.Millisecond, Success: true, Clk: clk},
		mock.MockProber{PName: "https://b.example", Success: false, Took: 3 * time.Second, Clk: clk},
		mock.MockProber{PName: "https://c.example", Status: 503, Took: 1500 * time.Microsecond, Success: true, Clk: clk},
	}
	var out bytes.Buffer
	logger, logs := blog.NewMock()
	ctx := blog.NewContext(context.Background(), logger)

	obs := New(probes, &out, clk, metrics.NoopRegisterer)
	sum := obs.Run(ctx)

	test.AssertEquals(t, sum, Summary{Total: 3, Failed: 1})
	test.AssertLines(t, out.String(), []string{
		"https://a.example Status: 200 Response time: 120ms",
		"https://b.example Failed.",
		"https://c.example Status: 503 Response time: 1ms",
	})

	failures := logs.GetAllMatching(`^WARN: Probe failed`)
	test.AssertEquals(t, len(failures), 1)
	test.AssertEquals(t, failures[0].Attrs["name"], "https://b.example")
	test.AssertEquals(t, failures[0].Attrs["error"], mock.ErrMock.Error())
	test.AssertEquals(t, len(logs.GetAllMatching(`^INFO: Probe complete`)), 2)
	test.AssertEquals(t, len(logs.GetAllMatching(`^INFO: Sweep complete .*failed=1 .*total=3`)), 1)
}

// orderedWriter records, for every Write, how many probes had run.
type orderedWriter struct {
	probed *int
	seen   []int
}

func (w *orderedWriter) Write(p []byte) (int, error) {
	w.seen = append(w.seen, *w.probed)
	return len(p), nil
}

func TestRunWritesBeforeNextProbe(t *testing.T) {
	var probed int
	inc := func() { probed++ }
	probes := []probers.Prober{
		mock.MockProber{PName: "a", Success: true, OnProbe: inc},
		mock.MockProber{PName: "b", Success: false, OnProbe: inc},
		mock.MockProber{PName: "c", Success: true, OnProbe: inc},
	}
	w := &orderedWriter{probed: &probed}
	New(probes, w, clock.NewFake(), metrics.NoopRegisterer).Run(context.Background())
	test.AssertDeepEquals(t, w.seen, []int{1, 2, 3})
}

func TestRunStopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	probes := []probers.Prober{
		mock.MockProber{PName: "a", Success: true, OnProbe: cancel},
		mock.MockProber{PName: "b", Success: true},
	}
	var out bytes.Buffer
	sum := New(probes, &out, clock.NewFake(), metrics.NoopRegisterer).Run(ctx)
	test.AssertEquals(t, sum, Summary{Total: 1})
	test.AssertLines(t, out.String(), []string{"a Status: 0 Response time: 0ms"})
}

func TestRunMetrics(t *testing.T) {
	clk := clock.NewFake()
	probes := []probers.Prober{
		mock.MockProber{PName: "a", Status: 200, Success: true},
		mock.MockProber{PName: "a", Status: 200, Success: true},
		mock.MockProber{PName: "b", Success: false},
	}
	registry := prometheus.NewRegistry()
	obs := New(probes, &bytes.Buffer{}, clk, registry)
	obs.Run(context.Background())

	test.AssertMetricWithLabelsEquals(t, obs.histObservations, prometheus.Labels{"success": "true"}, 2)
	test.AssertMetricWithLabelsEquals(t, obs.histObservations, prometheus.Labels{"name": "b", "success": "false"}, 1)
	test.AssertMetricWithLabelsEquals(t, obs.statusCodes, prometheus.Labels{"name": "a", "code": "200"}, 2)
	test.AssertMetricWithLabelsEquals(t, obs.statusCodes, prometheus.Labels{"name": "b"}, 0)
}

func histogramSum(t *testing.T, obs *Observer, labels ...string) float64 {
	t.Helper()
	m, ok := obs.histObservations.WithLabelValues(labels...).(prometheus.Metric)
	test.Assert(t, ok, "histogram observer is not a metric")
	var iom io_prometheus_client.Metric
	err := m.Write(&iom)
	test.AssertNotError(t, err, "writing histogram")
	return iom.GetHistogram().GetSampleSum()
}

func TestRunTimesFailuresLikeSuccesses(t *testing.T) {
	// The observer's clock never moves, so every recorded duration must come
	// from the prober's own measurement.
	probes := []probers.Prober{
		mock.MockProber{PName: "a", Status: 200, Took: 2 * time.Second, Success: true},
		mock.MockProber{PName: "b", Took: 3 * time.Second, Success: false},
	}
	logger, logs := blog.NewMock()
	ctx := blog.NewContext(context.Background(), logger)

	obs := New(probes, &bytes.Buffer{}, clock.NewFake(), prometheus.NewRegistry())
	obs.Run(ctx)

	test.AssertEquals(t, histogramSum(t, obs, "a", "Mock", "true"), 2.0)
	test.AssertEquals(t, histogramSum(t, obs, "b", "Mock", "false"), 3.0)

	failures := logs.GetAllMatching(`^WARN: Probe failed`)
	test.AssertEquals(t, len(failures), 1)
	test.AssertEquals(t, failures[0].Attrs["duration"], "3s")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestRunWriteFailureIsLogged(t *testing.T) {
	logger, logs := blog.NewMock()
	ctx := blog.NewContext(context.Background(), logger)
	probes := []probers.Prober{mock.MockProber{PName: "a", Success: true}}

	sum := New(probes, failingWriter{}, clock.NewFake(), metrics.NoopRegisterer).Run(ctx)
	test.AssertEquals(t, sum, Summary{Total: 1})
	test.AssertEquals(t, len(logs.GetAllMatching(`^ERROR: Writing report line .*disk full`)), 1)
}

// lockedBuffer is a bytes.Buffer safe for the concurrent reads done while
// Watch is running.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatchRepeatsUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var sweeps int
	probes := []probers.Prober{
		mock.MockProber{PName: "a", Status: 204, Success: true, OnProbe: func() {
			mu.Lock()
			defer mu.Unlock()
			sweeps++
			if sweeps == 3 {
				cancel()
			}
		}},
	}
	var out lockedBuffer
	done := make(chan struct{})
	go func() {
		New(probes, &out, clock.New(), metrics.NoopRegisterer).Watch(ctx, time.Millisecond)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after its context was cancelled")
	}
	test.AssertLines(t, out.String(), []string{
		"a Status: 204 Response time: 0ms",
		"a Status: 204 Response time: 0ms",
		"a Status: 204 Response time: 0ms",
	})
}
