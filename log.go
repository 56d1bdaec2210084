package vkframe

import (
	"io"
	"strings"
	"sync/atomic"

	"golang.org/x/exp/slog"
)

// NewLogger returns a text logger writing to w at the given level.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// ParseLevel maps a config level name onto a slog level. Unknown names map to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// debugSink receives validation messages from the debug report callback, which
// has no user data pointer we can route a logger through.
var debugSink atomic.Pointer[slog.Logger]

func setDebugSink(logger *slog.Logger) {
	debugSink.Store(logger)
}

func sink() *slog.Logger {
	if l := debugSink.Load(); l != nil {
		return l
	}
	return slog.Default()
}

func discardLogger() *slog.Logger {
	return NewLogger(io.Discard, slog.LevelError)
}
