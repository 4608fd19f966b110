package observability

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/commonerrors"
)

// TracingConfig contains tracing configuration
type TracingConfig struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	SampleRate     float64
	PrettyPrint    bool
	BatchTimeout   time.Duration
	// Output receives exported spans. Defaults to stdout.
	Output io.Writer
	// Exporter overrides the stdout exporter, mainly for tests.
	Exporter sdktrace.SpanExporter
}

// DefaultTracingConfig returns tracing disabled with full sampling once enabled.
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		ServiceName:    "rectable",
		ServiceVersion: "dev",
		SampleRate:     1.0,
		BatchTimeout:   5 * time.Second,
	}
}

// Provider owns a tracer provider and knows how to shut it down.
type Provider struct {
	provider trace.TracerProvider
	shutdown func(context.Context) error
}

// NewProvider builds a tracer provider from config. A disabled config yields
// a no-op provider, so callers never need to nil-check.
func NewProvider(config TracingConfig) (*Provider, error) {
	if !config.Enabled {
		return &Provider{
			provider: noop.NewTracerProvider(),
			shutdown: func(context.Context) error { return nil },
		}, nil
	}

	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		attribute.String("service.name", config.ServiceName),
		attribute.String("service.version", config.ServiceVersion),
	))
	if err != nil {
		return nil, commonerrors.Wrap(err, commonerrors.ErrorTypeConfig, "failed to create resource")
	}

	exporter := config.Exporter
	if exporter == nil {
		out := config.Output
		if out == nil {
			out = os.Stdout
		}
		opts := []stdouttrace.Option{stdouttrace.WithWriter(out)}
		if config.PrettyPrint {
			opts = append(opts, stdouttrace.WithPrettyPrint())
		}
		exporter, err = stdouttrace.New(opts...)
		if err != nil {
			return nil, commonerrors.Wrap(err, commonerrors.ErrorTypeConfig, "failed to create stdout exporter")
		}
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(config.SampleRate)),
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(batchTimeout(config.BatchTimeout))),
	)

	return &Provider{provider: tp, shutdown: tp.Shutdown}, nil
}

func sampler(rate float64) sdktrace.Sampler {
	switch {
	case rate <= 0:
		return sdktrace.NeverSample()
	case rate >= 1.0:
		return sdktrace.AlwaysSample()
	default:
		return sdktrace.TraceIDRatioBased(rate)
	}
}

func batchTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return 5 * time.Second
	}
	return d
}

// TracerProvider returns the underlying provider
func (p *Provider) TracerProvider() trace.TracerProvider {
	return p.provider
}

// Tracer returns a named tracer from the provider
func (p *Provider) Tracer(name string) trace.Tracer {
	return p.provider.Tracer(name)
}

// Install makes the provider the global otel provider and sets the
// W3C trace-context and baggage propagators.
func (p *Provider) Install() {
	otel.SetTracerProvider(p.provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
}

// Shutdown flushes pending spans and stops the provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	if err := p.shutdown(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return commonerrors.Wrap(err, commonerrors.ErrorTypeInternal, "failed to shutdown tracer")
	}
	return nil
}
