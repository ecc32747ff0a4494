package platform

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// ParseLevel maps a config log level to a slog.Level. Unknown values mean warn,
// which keeps the console quiet for a one-shot CLI.
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// NewLogger creates a structured logger that writes to stderr at the given
// level and, when errorLog is non-nil, appends warnings and errors to it.
func NewLogger(level string, errorLog io.Writer) *slog.Logger {
	return newLogger(os.Stderr, level, errorLog)
}

func newLogger(console io.Writer, level string, errorLog io.Writer) *slog.Logger {
	lvl := ParseLevel(level)
	handlers := []slog.Handler{
		slog.NewTextHandler(console, &slog.HandlerOptions{Level: lvl}),
	}
	floor := lvl
	if errorLog != nil {
		handlers = append(handlers, NewErrorLogHandler(errorLog, slog.LevelWarn))
		if slog.LevelWarn < floor {
			floor = slog.LevelWarn
		}
	}
	return slog.New(&multiHandler{level: floor, handlers: handlers})
}

// multiHandler fans log records out to multiple slog.Handler implementations.
type multiHandler struct {
	level    slog.Level
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(_ context.Context, l slog.Level) bool { return l >= m.level }

func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.handlers {
		if h.Enabled(ctx, r.Level) {
			_ = h.Handle(ctx, r)
		}
	}
	return nil
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	hs := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		hs[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{level: m.level, handlers: hs}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	hs := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		hs[i] = h.WithGroup(name)
	}
	return &multiHandler{level: m.level, handlers: hs}
}
