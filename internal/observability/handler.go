package observability

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/florianilch/genaibridge/internal/observability/middleware"
)

// correlationHandler adds correlation attributes to every record logged with a
// context: trace_id and span_id from the OpenTelemetry span context, and the
// request_id stored by the request ID middleware.
type correlationHandler struct {
	handler slog.Handler
}

// newTraceContextHandler wraps handler with correlation attributes.
func newTraceContextHandler(handler slog.Handler) *correlationHandler {
	return &correlationHandler{handler: handler}
}

// Enabled reports whether the handler handles records at the given level.
func (h *correlationHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *correlationHandler) Handle(ctx context.Context, record slog.Record) error {
	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
		record.AddAttrs(
			slog.String("trace_id", spanCtx.TraceID().String()),
			slog.String("span_id", spanCtx.SpanID().String()),
		)
	}
	if requestID, ok := middleware.RequestIDFromContext(ctx); ok {
		record.AddAttrs(slog.String("request_id", requestID))
	}

	return h.handler.Handle(ctx, record)
}

// WithAttrs returns a new handler with additional attributes.
func (h *correlationHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &correlationHandler{handler: h.handler.WithAttrs(attrs)}
}

// WithGroup returns a new handler with the given group name.
func (h *correlationHandler) WithGroup(name string) slog.Handler {
	return &correlationHandler{handler: h.handler.WithGroup(name)}
}
