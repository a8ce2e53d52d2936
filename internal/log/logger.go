// Package log is a thin wrapper over log/slog that stamps every line with
// the component it came from.
package log

import (
	"log/slog"
	"os"
	"strings"
)

// Logger carries a component name through slog.
type Logger struct {
	*slog.Logger
}

// New builds a text logger on stdout at the given level ("debug", "info",
// "warn", "error"; anything else means info) and sets it as the default.
func New(level string) *Logger {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(level),
	}))
	slog.SetDefault(logger)
	return &Logger{Logger: logger}
}

// WithComponent returns a logger whose lines carry the component name.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{Logger: l.Logger.With("component", component)}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
