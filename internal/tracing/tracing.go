// Package tracing bootstraps an OpenTelemetry tracer provider and
// exposes a thin span-start helper used at the job manager, worker,
// and search call sites.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"

	"github.com/vectorize-go/vectorize/internal/config"
)

const tracerName = "github.com/vectorize-go/vectorize"

// Module provides the tracer provider and shuts it down with the
// process lifecycle.
var Module = fx.Module("tracing",
	fx.Provide(newTracerProvider),
	fx.Invoke(registerLifecycle),
)

func newTracerProvider(cfg *config.Config) (*sdktrace.TracerProvider, error) {
	return NewTracerProvider("vectorize-" + cfg.Environment)
}

func registerLifecycle(lc fx.Lifecycle, tp *sdktrace.TracerProvider) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return tp.Shutdown(ctx)
		},
	})
}

// NewTracerProvider builds a tracer provider tagged with the service
// name, registers it as the global provider, and returns it so the
// caller can register an fx.Hook to shut it down cleanly.
func NewTracerProvider(serviceName string) (*sdktrace.TracerProvider, error) {
	res := resource.NewWithAttributes(
		"https://opentelemetry.io/schemas/1.24.0",
		attribute.String("service.name", serviceName),
	)

	tp := sdktrace.NewTracerProvider(sdktrace.WithResource(res))
	otel.SetTracerProvider(tp)
	return tp, nil
}

// Start begins a span named name under the current context, returning
// the child context and the span so callers can RecordError/SetStatus
// before calling span.End().
func Start(ctx context.Context, name string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name)
}
