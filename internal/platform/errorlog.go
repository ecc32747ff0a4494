package platform

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const errorLogTimeFormat = "2006-01-02 15:04:05"

// OpenErrorLog opens the append-only error log, creating it and its
// directory if needed.
func OpenErrorLog(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create log dir: %w: %w", ErrPersistence, err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open error log: %w: %w", ErrPersistence, err)
	}
	return f, nil
}

// NewErrorLogHandler returns a slog.Handler that appends one line per record:
//
//	[2006-01-02 15:04:05] ERROR connect failed target=mullvad-se-sto error="..."
func NewErrorLogHandler(w io.Writer, level slog.Level) slog.Handler {
	return &errorLogHandler{mu: &sync.Mutex{}, w: w, minLevel: level}
}

type errorLogHandler struct {
	mu       *sync.Mutex
	w        io.Writer
	minLevel slog.Level
	preAttrs []slog.Attr
}

func (h *errorLogHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.minLevel
}

func (h *errorLogHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s %s", r.Time.Format(errorLogTimeFormat), r.Level.String(), r.Message)
	for _, a := range h.preAttrs {
		b.WriteByte(' ')
		b.WriteString(fmtAttr(a))
	}
	r.Attrs(func(a slog.Attr) bool {
		b.WriteByte(' ')
		b.WriteString(fmtAttr(a))
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

func (h *errorLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	combined := make([]slog.Attr, len(h.preAttrs)+len(attrs))
	copy(combined, h.preAttrs)
	copy(combined[len(h.preAttrs):], attrs)
	return &errorLogHandler{mu: h.mu, w: h.w, minLevel: h.minLevel, preAttrs: combined}
}

func (h *errorLogHandler) WithGroup(_ string) slog.Handler {
	return h // groups are flattened
}

func fmtAttr(a slog.Attr) string {
	v := a.Value.Resolve()
	switch v.Kind() {
	case slog.KindString:
		s := v.String()
		if strings.ContainsAny(s, " \t\n") {
			return fmt.Sprintf("%s=%q", a.Key, s)
		}
		return a.Key + "=" + s
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			msg := err.Error()
			if strings.ContainsAny(msg, " \t\n") {
				return fmt.Sprintf("%s=%q", a.Key, msg)
			}
			return a.Key + "=" + msg
		}
		return fmt.Sprintf("%s=%v", a.Key, v.Any())
	default:
		return fmt.Sprintf("%s=%v", a.Key, v)
	}
}
