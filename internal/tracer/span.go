package tracer

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentation = "github.com/ppiankov/gcpwatch"

// Start opens a span named name. Without an installed SDK the global
// provider is a no-op.
func Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := otel.Tracer(instrumentation).Start(ctx, name, trace.WithAttributes(attrs...))
	if id := RequestID(ctx); id != "" {
		span.SetAttributes(attribute.String("gcpwatch.request_id", id))
	}
	return ctx, span
}

// End records err (if any) under kind and closes span.
func End(span trace.Span, kind string, err error) {
	if err != nil {
		span.SetAttributes(attribute.String("gcpwatch.error_kind", kind))
		span.SetStatus(codes.Error, kind)
	}
	span.End()
}
