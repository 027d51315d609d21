package logging

import (
	"context"
	"log/slog"
)

// Context keys for common log fields.
type contextKey string

const (
	// BuildIDKey is the context key for the build ID.
	BuildIDKey contextKey = "build_id"

	// MetricKey is the context key for the metric being compiled.
	MetricKey contextKey = "metric"

	// GenerationKey is the context key for the grammar generation.
	GenerationKey contextKey = "generation"

	// TraceIDKey is the context key for trace IDs.
	TraceIDKey contextKey = "trace_id"
)

// WithBuildID adds a build ID to the context.
func WithBuildID(ctx context.Context, buildID string) context.Context {
	return context.WithValue(ctx, BuildIDKey, buildID)
}

// GetBuildID retrieves the build ID from the context.
func GetBuildID(ctx context.Context) string {
	if id, ok := ctx.Value(BuildIDKey).(string); ok {
		return id
	}
	return ""
}

// WithMetric adds a metric name to the context.
func WithMetric(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, MetricKey, name)
}

// GetMetric retrieves the metric name from the context.
func GetMetric(ctx context.Context) string {
	if name, ok := ctx.Value(MetricKey).(string); ok {
		return name
	}
	return ""
}

// WithGeneration adds the grammar generation to the context.
func WithGeneration(ctx context.Context, gen string) context.Context {
	return context.WithValue(ctx, GenerationKey, gen)
}

// GetGeneration retrieves the grammar generation from the context.
func GetGeneration(ctx context.Context) string {
	if gen, ok := ctx.Value(GenerationKey).(string); ok {
		return gen
	}
	return ""
}

// WithTraceID adds a trace ID to the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// GetTraceID retrieves the trace ID from the context.
func GetTraceID(ctx context.Context) string {
	if traceID, ok := ctx.Value(TraceIDKey).(string); ok {
		return traceID
	}
	return ""
}

// extractContextFields extracts the build fields of ctx as key-value pairs
// suitable for logger.With().
func extractContextFields(ctx context.Context) []any {
	if ctx == nil {
		return nil
	}

	var fields []any
	if id := GetBuildID(ctx); id != "" {
		fields = append(fields, string(BuildIDKey), id)
	}
	if gen := GetGeneration(ctx); gen != "" {
		fields = append(fields, string(GenerationKey), gen)
	}
	if name := GetMetric(ctx); name != "" {
		fields = append(fields, string(MetricKey), name)
	}
	if traceID := GetTraceID(ctx); traceID != "" {
		fields = append(fields, string(TraceIDKey), traceID)
	}
	return fields
}

// contextHandler adds the build fields of the record's context to every
// record before passing it on.
type contextHandler struct {
	next slog.Handler
}

func (h *contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if fields := extractContextFields(ctx); len(fields) > 0 {
		r = r.Clone()
		r.Add(fields...)
	}
	return h.next.Handle(ctx, r)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{next: h.next.WithAttrs(attrs)}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{next: h.next.WithGroup(name)}
}
