// Package logging sets up the application loggers.
package logging

import (
	"io"
	"log/slog"
	"os"
)

var defaultLogger *slog.Logger

// Init initializes the logging system with a human-readable text handler on
// stderr. Debug enables verbose output.
func Init(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)
}

// ForComponent returns a logger scoped to a pipeline component.
func ForComponent(name string) *slog.Logger {
	if defaultLogger == nil {
		Init(false)
	}
	return defaultLogger.With("component", name)
}

// NewDiscardLogger returns a logger that drops everything, used in tests.
func NewDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
