// Package otel wires OpenTelemetry tracing, metrics and logs for the bot. Spans and counters
// come from the onboarding engine; log records carry signup events.
package otel

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.39.0"
	"go.uber.org/zap"
)

// MetricInterval is how often counters are pushed to the collector.
const MetricInterval = 15 * time.Second

// Options configures NewProviders.
type Options struct {
	// Endpoint is host:port or a URL whose path is ignored. Empty disables export.
	Endpoint    string
	ServiceName string
	// Environment becomes deployment.environment.name when set (APP_ENV).
	Environment string
	// Insecure forces plaintext even for https endpoints (OTEL_EXPORTER_OTLP_INSECURE).
	Insecure bool
}

// Providers holds the OpenTelemetry providers and a shutdown function.
type Providers struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *metric.MeterProvider
	LoggerProvider *sdklog.LoggerProvider
	Shutdown       func(context.Context) error
}

// NewProviders builds providers that export over OTLP gRPC. Without an endpoint the providers
// still record (so instruments work) but export nothing, and Shutdown is a no-op.
func NewProviders(ctx context.Context, opts Options) (*Providers, error) {
	if strings.TrimSpace(opts.Endpoint) == "" {
		return &Providers{
			TracerProvider: sdktrace.NewTracerProvider(),
			MeterProvider:  metric.NewMeterProvider(),
			LoggerProvider: sdklog.NewLoggerProvider(),
			Shutdown:       func(context.Context) error { return nil },
		}, nil
	}
	target, plaintext, err := parseEndpoint(opts.Endpoint)
	if err != nil {
		return nil, err
	}
	plaintext = plaintext || opts.Insecure

	res, err := newResource(opts)
	if err != nil {
		return nil, err
	}

	var s stack
	traceExp, err := otlptracegrpc.New(ctx, traceOptions(target, plaintext)...)
	if err != nil {
		return nil, fmt.Errorf("trace exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(traceExp), sdktrace.WithResource(res))
	s.push(tp.Shutdown)

	metricExp, err := otlpmetricgrpc.New(ctx, metricOptions(target, plaintext)...)
	if err != nil {
		_ = s.shutdown(ctx)
		return nil, fmt.Errorf("metric exporter: %w", err)
	}
	mp := metric.NewMeterProvider(
		metric.WithResource(res),
		metric.WithReader(metric.NewPeriodicReader(metricExp, metric.WithInterval(MetricInterval))),
	)
	s.push(mp.Shutdown)

	logExp, err := otlploggrpc.New(ctx, logOptions(target, plaintext)...)
	if err != nil {
		_ = s.shutdown(ctx)
		return nil, fmt.Errorf("log exporter: %w", err)
	}
	lp := sdklog.NewLoggerProvider(sdklog.WithProcessor(sdklog.NewBatchProcessor(logExp)), sdklog.WithResource(res))
	s.push(lp.Shutdown)

	return &Providers{
		TracerProvider: tp,
		MeterProvider:  mp,
		LoggerProvider: lp,
		Shutdown:       s.shutdown,
	}, nil
}

// parseEndpoint returns the gRPC target and whether plaintext should be used (any scheme but https).
func parseEndpoint(endpoint string) (target string, plaintext bool, err error) {
	endpoint = strings.TrimSpace(endpoint)
	if !strings.Contains(endpoint, "://") {
		endpoint = "http://" + endpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", false, fmt.Errorf("invalid OTLP endpoint %q: %w", endpoint, err)
	}
	if u.Host == "" {
		return "", false, fmt.Errorf("invalid OTLP endpoint %q: missing host", endpoint)
	}
	return u.Host, u.Scheme != "https", nil
}

func newResource(opts Options) (*resource.Resource, error) {
	attrs := resource.NewWithAttributes(semconv.SchemaURL, semconv.ServiceName(opts.ServiceName))
	if opts.Environment != "" {
		attrs = resource.NewWithAttributes(semconv.SchemaURL,
			semconv.ServiceName(opts.ServiceName),
			semconv.DeploymentEnvironmentName(opts.Environment))
	}
	return resource.Merge(resource.Default(), attrs)
}

func traceOptions(target string, plaintext bool) []otlptracegrpc.Option {
	o := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(target)}
	if plaintext {
		o = append(o, otlptracegrpc.WithInsecure())
	}
	return o
}

func metricOptions(target string, plaintext bool) []otlpmetricgrpc.Option {
	o := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(target)}
	if plaintext {
		o = append(o, otlpmetricgrpc.WithInsecure())
	}
	return o
}

func logOptions(target string, plaintext bool) []otlploggrpc.Option {
	o := []otlploggrpc.Option{otlploggrpc.WithEndpoint(target)}
	if plaintext {
		o = append(o, otlploggrpc.WithInsecure())
	}
	return o
}

// stack shuts providers down in reverse creation order.
type stack []func(context.Context) error

func (s *stack) push(fn func(context.Context) error) { *s = append(*s, fn) }

func (s stack) shutdown(ctx context.Context) error {
	var errs []error
	for i := len(s) - 1; i >= 0; i-- {
		if err := s[i](ctx); err != nil {
			zap.L().Warn("telemetry: provider shutdown", zap.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SetGlobal installs the tracer and meter providers and the W3C propagator globally so the
// engine's instruments and otelgrpc on the health server pick them up. The LoggerProvider is
// passed explicitly to NewEventEmitter.
func (p *Providers) SetGlobal() {
	if p.TracerProvider != nil {
		otel.SetTracerProvider(p.TracerProvider)
	}
	if p.MeterProvider != nil {
		otel.SetMeterProvider(p.MeterProvider)
	}
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
}
