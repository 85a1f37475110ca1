package config

import (
	"log/slog"
	"os"
)

// NewLogger builds the process logger from GO_ENV and LOG_LEVEL. Production
// emits JSON for log shipping; every other environment gets human-readable
// text. All records carry a service attribute so aggregated logs stay
// attributable.
func NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: logLevel(os.Getenv("LOG_LEVEL"))}
	var handler slog.Handler
	if os.Getenv("GO_ENV") == "production" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler).With("service", "partyhaus")
}

// logLevel maps a LOG_LEVEL value to a slog level. Unknown or empty values
// mean info.
func logLevel(s string) slog.Level {
	switch s {
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
