package logging

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strings"
)

// New creates a console slog.Logger with the provided level string. When
// logPath is non-empty a second text handler appends to that file; pass an
// empty path (production runs) for console-only logging.
func New(level, logPath string) *slog.Logger {
	lvl := levelFromString(level)
	console := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})

	if logPath == "" {
		return slog.New(console)
	}

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		log.Printf("logging: cannot open %s: %v (console only)", logPath, err)
		return slog.New(console)
	}

	fileHandler := slog.NewTextHandler(file, &slog.HandlerOptions{Level: lvl})
	return slog.New(fanoutHandler{console, fileHandler})
}

func levelFromString(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "error":
		return slog.LevelError
	case "warn", "warning":
		return slog.LevelWarn
	case "info":
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

// fanoutHandler duplicates records to every wrapped handler.
type fanoutHandler []slog.Handler

func (h fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, hh := range h {
		if hh.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h fanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	var firstErr error
	for _, hh := range h {
		if !hh.Enabled(ctx, record.Level) {
			continue
		}
		if err := hh.Handle(ctx, record.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (h fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make(fanoutHandler, len(h))
	for i, hh := range h {
		next[i] = hh.WithAttrs(attrs)
	}
	return next
}

func (h fanoutHandler) WithGroup(name string) slog.Handler {
	next := make(fanoutHandler, len(h))
	for i, hh := range h {
		next[i] = hh.WithGroup(name)
	}
	return next
}
