package logging

import (
	"context"
	"fmt"
	"log/slog"
)

type contextKey string

const contextAttrsKey contextKey = "contextAttrs"

// ContextHandler is a slog.Handler that enriches every record with the
// attributes stored in the context via WithAttrs. It is how request-scoped
// data like trace IDs end up on every log line of a request.
type ContextHandler struct {
	handler slog.Handler
}

// NewContextHandler wraps the given handler with context-attr enrichment.
func NewContextHandler(h slog.Handler) *ContextHandler {
	return &ContextHandler{handler: h}
}

// Enabled delegates to the underlying handler.
func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle adds the context attributes to the record before delegating.
func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs, ok := ctx.Value(contextAttrsKey).([]slog.Attr); ok {
		r.AddAttrs(attrs...)
	}
	if err := h.handler.Handle(ctx, r); err != nil {
		return fmt.Errorf("handle log record: %w", err)
	}
	return nil
}

// WithAttrs wraps the result of calling WithAttrs on the underlying handler.
func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{handler: h.handler.WithAttrs(attrs)}
}

// WithGroup wraps the result of calling WithGroup on the underlying handler.
func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{handler: h.handler.WithGroup(name)}
}

// WithAttrs stores slog attributes in the context so that ContextHandler
// includes them on every log line emitted with that context.
func WithAttrs(ctx context.Context, attr ...slog.Attr) context.Context {
	if existing, ok := ctx.Value(contextAttrsKey).([]slog.Attr); ok {
		attr = append(existing, attr...)
	}
	return context.WithValue(ctx, contextAttrsKey, attr)
}
