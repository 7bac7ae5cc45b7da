package logging

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

type traceIDKey struct{}

// FromContext returns the logger stored in ctx, or a disabled logger when none was
// attached. Callers never need a nil check.
func FromContext(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}

// ContextWithTraceID attaches traceID to ctx.
func ContextWithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, traceID)
}

// TraceIDFromContext returns the trace ID attached to ctx, if any.
func TraceIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(traceIDKey{}).(string); ok {
		return v
	}
	return ""
}

// GetOrGenerateTraceID returns the trace ID on ctx, generating a new ULID when absent.
func GetOrGenerateTraceID(ctx context.Context) string {
	if id := TraceIDFromContext(ctx); id != "" {
		return id
	}
	return ulid.Make().String()
}

// WithTrace attaches the logger to ctx with the trace ID of ctx added as a field.
func WithTrace(ctx context.Context, l zerolog.Logger) context.Context {
	traceID := GetOrGenerateTraceID(ctx)
	ctx = ContextWithTraceID(ctx, traceID)
	l = l.With().Str("trace_id", traceID).Logger()
	return l.WithContext(ctx)
}
