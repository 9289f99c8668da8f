package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey struct{}

// NewContext returns ctx carrying l. The HTTP layer stores a per-request logger here.
func NewContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the request logger, or a no-op logger outside a request.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

// With returns a context whose logger carries the extra fields.
func With(ctx context.Context, fields ...zap.Field) context.Context {
	return NewContext(ctx, FromContext(ctx).With(fields...))
}
