// Package log provides structured logging (slog) that tags every record with
// the conversation thread and capability carried in the context.
package log

import (
	"context"
	"io"
	"log/slog"
)

type contextKey int

const (
	threadKey contextKey = iota
	capabilityKey
)

// Attribute keys added from the context.
const (
	ThreadKey     = "thread_id"
	CapabilityKey = "capability"
)

// WithThread returns a context whose log records carry threadID.
func WithThread(ctx context.Context, threadID string) context.Context {
	return context.WithValue(ctx, threadKey, threadID)
}

// WithCapability returns a context whose log records carry the capability name.
func WithCapability(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, capabilityKey, name)
}

// ContextHandler implements slog.Handler by decorating another handler with
// attributes taken from the record's context.
type ContextHandler struct {
	next slog.Handler
	opts handlerConfig
}

// HandlerOption configures the ContextHandler.
type HandlerOption func(*handlerConfig)

type handlerConfig struct {
	level     slog.Level
	addSource bool
	json      bool
}

// defaultHandlerConfig returns the default configuration.
func defaultHandlerConfig() handlerConfig {
	return handlerConfig{
		level: slog.LevelInfo,
	}
}

// WithLevel sets the minimum log level to report.
func WithLevel(level slog.Level) HandlerOption {
	return func(c *handlerConfig) {
		c.level = level
	}
}

// WithSource enables reporting of source location (file/line).
func WithSource(enabled bool) HandlerOption {
	return func(c *handlerConfig) {
		c.addSource = enabled
	}
}

// WithJSON selects JSON output for handlers built by New.
func WithJSON(enabled bool) HandlerOption {
	return func(c *handlerConfig) {
		c.json = enabled
	}
}

// NewHandler wraps next with context attribute injection.
func NewHandler(next slog.Handler, opts ...HandlerOption) *ContextHandler {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &ContextHandler{next: next, opts: cfg}
}

// New builds a logger writing text (or JSON) records to w.
func New(w io.Writer, opts ...HandlerOption) *slog.Logger {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	ho := &slog.HandlerOptions{Level: cfg.level, AddSource: cfg.addSource}

	var base slog.Handler
	if cfg.json {
		base = slog.NewJSONHandler(w, ho)
	} else {
		base = slog.NewTextHandler(w, ho)
	}
	return slog.New(&ContextHandler{next: base, opts: cfg})
}

// Enabled reports whether the handler handles records at the given level.
func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.opts.level && h.next.Enabled(ctx, level)
}

// Handle adds the thread and capability attributes, then delegates.
func (h *ContextHandler) Handle(ctx context.Context, record slog.Record) error {
	if ctx != nil {
		if v, ok := ctx.Value(threadKey).(string); ok && v != "" {
			record.AddAttrs(slog.String(ThreadKey, v))
		}
		if v, ok := ctx.Value(capabilityKey).(string); ok && v != "" {
			record.AddAttrs(slog.String(CapabilityKey, v))
		}
	}
	return h.next.Handle(ctx, record)
}

// WithAttrs returns a new ContextHandler whose delegate includes the given attributes.
func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{next: h.next.WithAttrs(attrs), opts: h.opts}
}

// WithGroup returns a new ContextHandler with the given group name.
func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{next: h.next.WithGroup(name), opts: h.opts}
}

// Discard returns a logger that drops every record. Useful in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
