// Package cmd provides utilities that underlie the envcheck command: panic
// handling, logging, metrics and tracing setup, and config loading.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/go-logr/stdr"
	"github.com/jmhodges/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/term"

	"github.com/eastcoast-online/envcheck/core"
	blog "github.com/eastcoast-online/envcheck/log"
	"github.com/eastcoast-online/envcheck/metrics"
)

// Telemetry holds the logger, metrics registry and tracing pipeline shared
// by a running command.
type Telemetry struct {
	Logger   *slog.Logger
	Registry *prometheus.Registry

	debugServer   *http.Server
	debugListener net.Listener
	shutdownTrace func(context.Context) error
}

// StatsAndLogging sets up a logger writing to stderr, a prometheus registry,
// a debug server exporting the registry on addr (if addr is non-empty) and,
// if an endpoint is configured, an OpenTelemetry tracing pipeline.
func StatsAndLogging(logConf blog.Config, otConf OpenTelemetryConfig, addr string, stderr io.Writer) (*Telemetry, error) {
	if f, ok := stderr.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		logConf.TextFormat = true
	}
	logger, err := blog.New(logConf, stderr)
	if err != nil {
		return nil, fmt.Errorf("setting up logging: %w", err)
	}

	t := &Telemetry{
		Logger:        logger,
		Registry:      metrics.NewRegistry(),
		shutdownTrace: func(context.Context) error { return nil },
	}

	if addr != "" {
		err = t.startDebugServer(addr)
		if err != nil {
			return nil, err
		}
	}

	if otConf.Endpoint != "" {
		t.shutdownTrace, err = newOpenTelemetry(otConf, logger)
		if err != nil {
			t.Shutdown(context.Background())
			return nil, err
		}
	}

	logger.Info("Versions",
		slog.String("command", core.Command()),
		slog.String("buildID", core.GetBuildID()),
		slog.String("buildTime", core.GetBuildTime()),
		slog.String("goVersion", runtime.Version()),
	)
	return t, nil
}

// startDebugServer serves the registry on /metrics at addr until Shutdown.
func (t *Telemetry) startDebugServer(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("unable to boot debug server on %q: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(t.Registry, promhttp.HandlerOpts{
		ErrorLog: slog.NewLogLogger(t.Logger.Handler(), slog.LevelWarn),
	}))
	t.debugServer = &http.Server{
		Handler:     mux,
		ReadTimeout: 30 * time.Second,
	}
	t.debugListener = ln

	t.Logger.Info("Booting debug server", slog.String("addr", ln.Addr().String()))
	go func() {
		err := t.debugServer.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.Logger.Error("Debug server failed", slog.Any("error", err))
		}
	}()
	return nil
}

// DebugAddr returns the address the debug server is listening on, or the
// empty string if it is not running.
func (t *Telemetry) DebugAddr() string {
	if t.debugListener == nil {
		return ""
	}
	return t.debugListener.Addr().String()
}

// Shutdown stops the debug server and flushes any pending trace spans.
func (t *Telemetry) Shutdown(ctx context.Context) {
	if t.debugServer != nil {
		err := t.debugServer.Shutdown(ctx)
		if err != nil {
			t.Logger.Warn("Stopping debug server", slog.Any("error", err))
		}
	}
	err := t.shutdownTrace(ctx)
	if err != nil {
		t.Logger.Warn("Flushing traces", slog.Any("error", err))
	}
}

// newOpenTelemetry installs a global tracer provider exporting spans over
// OTLP/gRPC to the configured endpoint. No propagator is installed: probes
// must not add trace headers to their requests.
func newOpenTelemetry(config OpenTelemetryConfig, logger *slog.Logger) (func(context.Context) error, error) {
	otel.SetLogger(stdr.New(slog.NewLogLogger(logger.Handler(), slog.LevelDebug)))
	otel.SetErrorHandler(otel.ErrorHandlerFunc(func(err error) {
		logger.Error("OpenTelemetry error", slog.Any("error", err))
	}))

	exporter, err := otlptracegrpc.New(context.Background(),
		otlptracegrpc.WithInsecure(),
		otlptracegrpc.WithEndpoint(config.Endpoint),
	)
	if err != nil {
		return nil, fmt.Errorf("creating OpenTelemetry OTLP exporter: %w", err)
	}

	resources := resource.NewWithAttributes("",
		attribute.String("service.name", core.Command()),
		attribute.String("service.version", core.GetBuildID()),
	)
	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithResource(resources),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(config.SampleRatio))),
		sdktrace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(tracerProvider)

	return tracerProvider.Shutdown, nil
}

// SignalContext returns a context which is cancelled when the process
// receives SIGINT, SIGTERM or SIGHUP.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
}

// Clock returns a clock.Clock. In production this is the system clock.
func Clock() clock.Clock {
	return clock.New()
}

// AuditPanic catches and logs panics, then exits with exit code 1. This
// method should be called in a defer statement as early as possible.
func AuditPanic() {
	err := recover()
	if err == nil {
		return
	}
	buf := make([]byte, 8192)
	n := runtime.Stack(buf, false)
	fmt.Fprintf(os.Stderr, "Panic caused by err: %s\nStack Trace (Current goroutine) %s\n", err, buf[:n])
	os.Exit(1)
}
