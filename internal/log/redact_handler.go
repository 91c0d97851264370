package log

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// redactedKeywords are substrings of attribute keys whose values must never
// be logged verbatim. The list is intentionally small and specific to what
// this tool actually handles: portal credentials and session cookies.
var redactedKeywords = []string{
	"password",
	"pwd",
	"cookie",
	"session",
	"authorization",
	"credential",
	"token",
}

// MaskValue replaces redacted attribute values.
const MaskValue = "***REDACTED***"

// RedactHandler wraps an slog.Handler and masks sensitive attribute values.
//
// Design decision: We wrap a handler rather than providing a custom logger
// because a handler composes with the standard slog API and with any output
// format (text, JSON) without callers having to change how they log.
type RedactHandler struct {
	handler slog.Handler
}

// NewRedactHandler creates a RedactHandler wrapping the given handler.
// If handler is nil, slog.Default()'s handler is wrapped.
func NewRedactHandler(handler slog.Handler) *RedactHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &RedactHandler{handler: handler}
}

// Enabled delegates to the underlying handler.
func (h *RedactHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle masks sensitive attributes and forwards the record.
func (h *RedactHandler) Handle(ctx context.Context, r slog.Record) error {
	masked := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		masked.AddAttrs(h.redactAttr(a))
		return true
	})
	return h.handler.Handle(ctx, masked)
}

// WithAttrs returns a handler with the given (masked) attributes added.
func (h *RedactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	maskedAttrs := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		maskedAttrs[i] = h.redactAttr(a)
	}
	return &RedactHandler{handler: h.handler.WithAttrs(maskedAttrs)}
}

// WithGroup returns a handler with the given group name.
func (h *RedactHandler) WithGroup(name string) slog.Handler {
	return &RedactHandler{handler: h.handler.WithGroup(name)}
}

// redactAttr masks a single attribute, recursing into groups.
func (h *RedactHandler) redactAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		maskedAttrs := make([]slog.Attr, len(group))
		for i, ga := range group {
			maskedAttrs[i] = h.redactAttr(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(maskedAttrs...)}
	}

	key := strings.ToLower(a.Key)
	for _, keyword := range redactedKeywords {
		if strings.Contains(key, keyword) {
			return slog.String(a.Key, MaskValue)
		}
	}
	return a
}

// NewLogger creates a logger writing text records to w at LevelInfo, or
// LevelDebug when verbose is set, with redaction applied.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	inner := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(NewRedactHandler(inner))
}
