// Package observability builds the logger, tracer and metrics registry
// shared by every module.
package observability

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	pointsmetrics "github.com/Black-And-White-Club/poker-points/app/observability/metrics/points"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Config selects log level, tracing export and service identity.
type Config struct {
	ServiceName    string
	Environment    string
	LogLevel       string
	OTLPEndpoint   string
	SampleRate     float64
	MetricsAddress string
	// Output receives log lines; nil means stdout.
	Output io.Writer
}

// Provider owns the process-wide telemetry backends.
type Provider struct {
	Logger         *slog.Logger
	TracerProvider trace.TracerProvider
	shutdown       func(context.Context) error
}

// Registry holds the instruments handed to modules.
type Registry struct {
	Tracer        trace.Tracer
	Prometheus    *prometheus.Registry
	PointsMetrics pointsmetrics.PointsMetrics
}

// Observability bundles the provider and registry.
type Observability struct {
	Provider *Provider
	Registry *Registry
}

// Init builds observability from cfg. Tracing is exported only when an OTLP
// endpoint is configured; otherwise spans go to a no-op provider.
func Init(ctx context.Context, cfg Config) (Observability, error) {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "poker-points"
	}

	logger, err := NewLogger(cfg)
	if err != nil {
		return Observability{}, err
	}

	tp, shutdown, err := newTracerProvider(ctx, cfg)
	if err != nil {
		return Observability{}, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	points, err := pointsmetrics.NewPrometheus(reg, "poker")
	if err != nil {
		_ = shutdown(ctx)
		return Observability{}, fmt.Errorf("failed to register points metrics: %w", err)
	}

	logger.InfoContext(ctx, "Observability initialized",
		slog.String("service", cfg.ServiceName),
		slog.String("environment", cfg.Environment),
		slog.Bool("tracing_exported", cfg.OTLPEndpoint != ""),
	)

	return Observability{
		Provider: &Provider{Logger: logger, TracerProvider: tp, shutdown: shutdown},
		Registry: &Registry{
			Tracer:        tp.Tracer(cfg.ServiceName),
			Prometheus:    reg,
			PointsMetrics: points,
		},
	}, nil
}

// NewLogger returns a JSON logger at cfg.LogLevel, or a text logger when the
// environment is "development".
func NewLogger(cfg Config) (*slog.Logger, error) {
	var level slog.Level
	if cfg.LogLevel != "" {
		if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
		}
	}
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.EqualFold(cfg.Environment, "development") {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}
	return slog.New(handler).With(slog.String("service", cfg.ServiceName)), nil
}

func newTracerProvider(ctx context.Context, cfg Config) (trace.TracerProvider, func(context.Context) error, error) {
	noShutdown := func(context.Context) error { return nil }
	if cfg.OTLPEndpoint == "" {
		return noop.NewTracerProvider(), noShutdown, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(cfg.OTLPEndpoint))
	if err != nil {
		return nil, noShutdown, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.DeploymentEnvironment(cfg.Environment),
		),
	)
	if err != nil {
		return nil, noShutdown, err
	}

	sampler := sdktrace.AlwaysSample()
	if cfg.SampleRate > 0 && cfg.SampleRate < 1 {
		sampler = sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRate))
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	return tp, tp.Shutdown, nil
}

// Shutdown flushes pending spans.
func (o Observability) Shutdown(ctx context.Context) error {
	if o.Provider == nil || o.Provider.shutdown == nil {
		return nil
	}
	if err := o.Provider.shutdown(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to shut down tracer provider: %w", err)
	}
	return nil
}
