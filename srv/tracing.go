package srv

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("lowlife")

// StartDBSpan starts a child span for a database operation
func StartDBSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	baseAttrs := []attribute.KeyValue{
		attribute.String("db.system", "sqlite"),
		attribute.String("db.operation", operation),
	}
	attrs = append(baseAttrs, attrs...)
	return tracer.Start(ctx, "db."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
}

// RecordError records an error on the span following OTel exception conventions.
// It adds an "exception" event with message, type, and stacktrace attributes,
// and sets the span status to Error.
func RecordError(span trace.Span, err error) {
	if err == nil || !span.IsRecording() {
		return
	}

	// Capture stack trace
	const maxStackSize = 4096
	stackBuf := make([]byte, maxStackSize)
	stackSize := runtime.Stack(stackBuf, false)
	stacktrace := string(stackBuf[:stackSize])

	span.AddEvent("exception",
		trace.WithAttributes(
			attribute.String("exception.type", "error"),
			attribute.String("exception.message", err.Error()),
			attribute.String("exception.stacktrace", stacktrace),
		),
	)

	span.SetStatus(codes.Error, err.Error())
}

// RecordSecurityEvent logs a security-relevant event and attaches it to the
// current span when there is one.
func RecordSecurityEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	event := "security." + name
	args := make([]any, 0, len(attrs)*2)
	for _, a := range attrs {
		args = append(args, string(a.Key), a.Value.Emit())
	}
	slog.Warn(event, args...)

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.AddEvent(event, trace.WithAttributes(attrs...))
	}
}

// writeJSON encodes v as the response body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encode response", "error", err)
	}
}
