package logger

import (
	"log/slog"
	"os"
)

// NewTestLogger returns a quiet logger for tests. TEST_DEBUG=1 turns on debug
// output; TEST_LOG_LEVEL picks any other level.
func NewTestLogger() *slog.Logger {
	level := ParseLevel(os.Getenv("TEST_LOG_LEVEL"), slog.LevelWarn)
	if os.Getenv("TEST_DEBUG") != "" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
