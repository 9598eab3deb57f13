// Package logging configures the process-wide slog default. Each
// binary picks its own baseline: the relay server logs at info, the CLI
// stays quiet at error so structured logs never fight the styled
// console output. LOG_LEVEL overrides either.
package logging

import (
	"log/slog"
	"os"
)

// Init installs a text handler on stderr at the given default level,
// honoring the LOG_LEVEL environment variable when set.
func Init(def slog.Level) {
	level := def

	if l, ok := os.LookupEnv("LOG_LEVEL"); ok {
		switch l {
		case "dev", "development", "debug":
			level = slog.LevelDebug
		case "info":
			level = slog.LevelInfo
		case "warn", "warning":
			level = slog.LevelWarn
		case "error", "production", "prod":
			level = slog.LevelError
		}
	}

	logger := slog.New(
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		}),
	)
	slog.SetDefault(logger)
}
