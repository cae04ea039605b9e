package internal

import (
	"io"
	"log/slog"
	"time"
)

// ParseLogLevel maps a LOG_LEVEL value to a slog level.
func ParseLogLevel(level string) (slog.Level, bool) {
	switch level {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

// NewLogger writes JSON outside dev and text in dev. Every record carries the
// service name so storefront logs can be told apart in a shared sink.
func NewLogger(w io.Writer, env string, level string) *slog.Logger {
	lvl, ok := ParseLogLevel(level)

	var h slog.Handler
	switch env {
	case "dev":
		h = slog.NewTextHandler(w, &slog.HandlerOptions{
			Level:     lvl,
			AddSource: lvl == slog.LevelDebug,
		})
	default:
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: lvl,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if a.Key == slog.TimeKey && len(groups) == 0 {
					return slog.String("time", a.Value.Time().UTC().Format(time.RFC3339Nano))
				}
				return a
			},
		})
	}

	logger := slog.New(h).With("service", "pantry", "env", env)
	if !ok {
		logger.Warn("unknown log level, using info", "value", level)
	}
	return logger
}
