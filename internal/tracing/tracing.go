// Package tracing sets up an otel tracer provider and exposes the one
// span helper the worker pool uses, replacing
// go-shared's tracing wrapper (private to the teacher's org) with
// go.opentelemetry.io/otel directly.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/tesseract-hub/research-orchestrator"

// Setup installs a tracer provider and returns a shutdown func. With no
// exporter configured this still records spans in-process, useful for
// the batched sampling a future exporter would consume.
func Setup() (shutdown func(context.Context) error) {
	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	return tp.Shutdown
}

func tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}

// StartSpan starts a span named op, tagging it with failureID and
// queueItemID when present - the two identifiers every worker/search
// span needs to be useful in a trace viewer.
func StartSpan(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer().Start(ctx, op, trace.WithAttributes(attrs...))
}
