package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// tracerName is the instrumentation scope reported for every span the
// facade emits.
const tracerName = "github.com/ruleforge/ruleengine"

// Tracer returns the package-scoped tracer for the given provider. Pass
// otel.GetTracerProvider() (the default, a no-op, when the host
// application hasn't configured one) or a provider built from
// go.opentelemetry.io/otel/sdk/trace with the
// go.opentelemetry.io/otel/exporters/stdout/stdouttrace exporter for local
// inspection.
func Tracer(provider trace.TracerProvider) trace.Tracer {
	if provider == nil {
		provider = otel.GetTracerProvider()
	}
	return provider.Tracer(tracerName)
}

// StartSpan starts a span named "ruleengine.<operation>" and returns the
// derived context and the span.
func StartSpan(ctx context.Context, tracer trace.Tracer, operation string, attrs ...trace.SpanStartOption) (context.Context, trace.Span) {
	return tracer.Start(ctx, "ruleengine."+operation, attrs...)
}
