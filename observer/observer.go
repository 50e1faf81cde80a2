// Package observer runs health check sweeps: it probes each configured
// target in order and reports one line per target as soon as its probe
// completes.
package observer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/jmhodges/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	blog "github.com/eastcoast-online/envcheck/log"
	"github.com/eastcoast-online/envcheck/observer/probers"
)

// Observer is the steward of a fixed, ordered list of probers.
type Observer struct {
	probers []probers.Prober
	out     io.Writer
	clk     clock.Clock
	tracer  trace.Tracer

	histObservations *prometheus.HistogramVec
	statusCodes      *prometheus.CounterVec
}

// Summary counts the outcomes of one sweep.
type Summary struct {
	Total  int
	Failed int
}

// New returns an Observer which writes report lines to out and registers its
// metrics with stats.
func New(probes []probers.Prober, out io.Writer, clk clock.Clock, stats prometheus.Registerer) *Observer {
	histObservations := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "envcheck_probe_duration_seconds",
			Help:    "time from sending each probe's request until its response headers or its error",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"name", "kind", "success"})
	statusCodes := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "envcheck_probe_status_total",
			Help: "HTTP status codes returned by completed probes",
		}, []string{"name", "code"})
	stats.MustRegister(histObservations, statusCodes)

	return &Observer{
		probers:          probes,
		out:              out,
		clk:              clk,
		tracer:           otel.Tracer("github.com/eastcoast-online/envcheck/observer"),
		histObservations: histObservations,
		statusCodes:      statusCodes,
	}
}

// Run probes every target once, strictly in order, writing each report line
// before the next probe starts. A failed probe never stops the sweep; a
// cancelled context does.
func (o *Observer) Run(ctx context.Context) Summary {
	ctx, span := o.tracer.Start(ctx, "sweep",
		trace.WithAttributes(attribute.Int("envcheck.targets", len(o.probers))))
	defer span.End()

	var sum Summary
	for _, p := range o.probers {
		if ctx.Err() != nil {
			blog.Warn(ctx, "Sweep interrupted", slog.Int("remaining", len(o.probers)-sum.Total))
			break
		}
		sum.Total++
		if !o.probe(ctx, p) {
			sum.Failed++
		}
	}

	if sum.Failed > 0 {
		span.SetStatus(codes.Error, fmt.Sprintf("%d of %d probes failed", sum.Failed, sum.Total))
	}
	blog.Info(ctx, "Sweep complete",
		slog.Int("total", sum.Total),
		slog.Int("failed", sum.Failed),
	)
	return sum
}

// probe runs a single prober and reports its outcome. It returns whether the
// probe succeeded.
func (o *Observer) probe(ctx context.Context, p probers.Prober) bool {
	res, err := p.Probe(ctx)
	success := err == nil

	o.histObservations.WithLabelValues(
		p.Name(), p.Kind(), strconv.FormatBool(success),
	).Observe(res.Latency.Seconds())

	if success {
		o.statusCodes.WithLabelValues(p.Name(), strconv.Itoa(res.StatusCode)).Inc()
		o.report(ctx, successLine(res))
		blog.Info(ctx, "Probe complete",
			slog.String("kind", p.Kind()),
			slog.String("name", p.Name()),
			slog.Int("status", res.StatusCode),
			slog.Duration("duration", res.Latency),
		)
		return true
	}

	o.report(ctx, failureLine(p.Name()))
	blog.Warn(ctx, "Probe failed",
		slog.String("kind", p.Kind()),
		slog.String("name", p.Name()),
		slog.Duration("duration", res.Latency),
		slog.Any("error", err),
	)
	return false
}

func (o *Observer) report(ctx context.Context, line string) {
	_, err := io.WriteString(o.out, line)
	if err != nil {
		blog.Error(ctx, "Writing report line", err)
	}
}

// Watch runs a sweep immediately and then once every period until ctx is
// cancelled. Sweeps never overlap: the period is measured from the end of one
// sweep to the start of the next.
func (o *Observer) Watch(ctx context.Context, period time.Duration) {
	for {
		o.Run(ctx)
		select {
		case <-ctx.Done():
			return
		case <-o.clk.After(period):
		}
	}
}
