// Package telemetry installs optional OTLP tracing for outbound API calls.
package telemetry

import (
	"context"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const serviceName = "offerwatch"

// Options select the collector. An empty Endpoint disables tracing.
type Options struct {
	Endpoint string
	Insecure bool
	Version  string
	Logger   *slog.Logger
}

// Setup installs a global tracer provider and returns its shutdown func.
// Failures are logged and leave tracing off; they never stop the client.
func Setup(ctx context.Context, opts Options) func(context.Context) error {
	noop := func(context.Context) error { return nil }
	if opts.Endpoint == "" {
		return noop
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	exporterOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(opts.Endpoint)}
	if opts.Insecure {
		exporterOpts = append(exporterOpts, otlptracegrpc.WithInsecure())
	}

	exporter, err := otlptracegrpc.New(ctx, exporterOpts...)
	if err != nil {
		logger.Warn("otel exporter error", slog.String("error", err.Error()))
		return noop
	}

	attrs := resource.WithAttributes(semconv.ServiceName(serviceName))
	if opts.Version != "" {
		attrs = resource.WithAttributes(semconv.ServiceName(serviceName), semconv.ServiceVersion(opts.Version))
	}
	res, err := resource.New(ctx, attrs)
	if err != nil {
		logger.Warn("otel resource error", slog.String("error", err.Error()))
	}

	provider := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(res),
	)
	otel.SetTracerProvider(provider)
	logger.Info("tracing enabled", slog.String("endpoint", opts.Endpoint))

	return provider.Shutdown
}

// WrapTransport instruments an HTTP round tripper. Without an installed
// provider the spans are no-ops. A nil base wraps http.DefaultTransport.
func WrapTransport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return otelhttp.NewTransport(base,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}
