package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldJobID is the standardized structured logging key for transcription job identifiers.
	FieldJobID = "job_id"
	// FieldPlugin is the standardized structured logging key for plugin names.
	FieldPlugin = "plugin"
	// FieldSession is the standardized structured logging key for workflow session identifiers.
	FieldSession = "session"
	// FieldRequestID is the standardized structured logging key for request correlation identifiers.
	FieldRequestID = "request_id"
)

type contextKey int

const (
	jobIDKey contextKey = iota
	pluginKey
	requestIDKey
)

// WithJobID stores a job identifier on the context for log enrichment.
func WithJobID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, jobIDKey, id)
}

// JobIDFromContext extracts a job identifier stored via WithJobID.
func JobIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(jobIDKey).(string)
	return id, ok && id != ""
}

// WithPlugin stores a plugin name on the context for log enrichment.
func WithPlugin(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, pluginKey, name)
}

// PluginFromContext extracts a plugin name stored via WithPlugin.
func PluginFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(pluginKey).(string)
	return name, ok && name != ""
}

// WithRequestID stores a request correlation identifier on the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts a request identifier stored via WithRequestID.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey).(string)
	return id, ok && id != ""
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if id, ok := JobIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldJobID, id))
	}
	if name, ok := PluginFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldPlugin, name))
	}
	if rid, ok := RequestIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRequestID, rid))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived
// from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
