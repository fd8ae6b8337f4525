// Package telemetry wires OpenTelemetry tracing. Spans are always created;
// they are only exported when an OTLP endpoint is configured.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"layoffs-engine/internal/config"
	"layoffs-engine/internal/logging"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Shutdown flushes and stops the exporter.
type Shutdown func(ctx context.Context) error

func noop(context.Context) error { return nil }

func newResource(serviceName string) (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		),
	)
}

// Setup installs a global tracer provider exporting over OTLP/HTTP.
// With no endpoint it leaves the default no-op provider in place.
func Setup(ctx context.Context, cfg config.TelemetryConfig) (Shutdown, error) {
	endpoint := strings.TrimSpace(cfg.OTLPHTTPEndpoint)
	if endpoint == "" {
		return noop, nil
	}

	name := cfg.ServiceName
	if name == "" {
		name = "layoffs-engine"
	}
	r, err := newResource(name)
	if err != nil {
		return noop, fmt.Errorf("telemetry resource: %w", err)
	}

	exporter, err := newExporter(ctx, endpoint, cfg.Insecure)
	if err != nil {
		return noop, fmt.Errorf("telemetry exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(r),
	)
	otel.SetTracerProvider(tp)

	logging.Component("telemetry").Info().
		Str("endpoint", endpoint).
		Str("service", name).
		Msg("trace export initialized")

	return func(ctx context.Context) error {
		return errors.Join(tp.ForceFlush(ctx), tp.Shutdown(ctx))
	}, nil
}

func newExporter(ctx context.Context, endpoint string, insecure bool) (sdktrace.SpanExporter, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	opts := []otlptracehttp.Option{}
	if strings.Contains(endpoint, "://") {
		opts = append(opts, otlptracehttp.WithEndpointURL(endpoint))
	} else {
		opts = append(opts, otlptracehttp.WithEndpoint(endpoint))
	}
	if insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	return otlptracehttp.New(ctx, opts...)
}
