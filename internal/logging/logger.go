package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Setup initializes the global slog logger with JSON output to stdout.
// LOG_LEVEL accepts debug, info, warn or error.
func Setup() *slog.Logger {
	logger := slog.New(NewJSONHandler(os.Stdout, os.Getenv("LOG_LEVEL")))
	slog.SetDefault(logger)
	return logger
}

// NewJSONHandler builds the stdout handler used on its own at boot and
// behind a MultiHandler once the database is reachable.
func NewJSONHandler(w io.Writer, level string) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
	})
}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
