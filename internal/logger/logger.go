package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// ParseLevel maps DEBUG, INFO, WARN, ERROR (any case) to a slog level.
// Unknown values default to INFO.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds a logger writing JSON lines (or text when pretty) to w.
// Every record carries the service name and the host it ran on.
func New(w io.Writer, service, level string, pretty bool) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	var h slog.Handler
	if pretty {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}
	host, _ := os.Hostname()
	return slog.New(h).With(slog.String("service", service), slog.String("hostname", host))
}

// Discard returns a logger that drops everything. Used as a nil-safe default.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 4}))
}

// OrDiscard returns l, or a discarding logger when l is nil.
func OrDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return Discard()
	}
	return l
}

// Action tags a log record with the event name, mirroring the action field
// of the service logs this client talks to.
func Action(name string) slog.Attr { return slog.String("action", name) }

// Err renders an error attribute. A nil error yields an empty attr, which handlers skip.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String("error", err.Error())
}
