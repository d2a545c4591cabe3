// Package logger provides scoped structured logging helpers built on log/slog.
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// Scope tags a logger with the subsystem it belongs to, e.g.
// log.With(logger.Scope("worker")).
func Scope(name string) slog.Attr {
	return slog.String("scope", name)
}

// Error wraps an error as a slog attribute under a consistent key.
func Error(err error) slog.Attr {
	return slog.Any("error", err)
}

// NewLogger builds the process-wide logger from LOG_LEVEL and GO_ENV.
// Text handler when GO_ENV is unset or "local", JSON handler otherwise.
func NewLogger() *slog.Logger {
	level := parseLevel(os.Getenv("LOG_LEVEL"))

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(os.Getenv("GO_ENV"), "local") || os.Getenv("GO_ENV") == "" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
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
