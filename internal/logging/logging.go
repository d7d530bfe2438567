package logging

import (
	"log/slog"
	"os"
	"strings"
)

// New initializes the process-wide slog logger and sets it as the default.
// LOG_FORMAT selects the output format: "text" for development (the
// default), "json" for production. LOG_LEVEL sets the minimum level
// (debug/info/warn/error); unset means debug.
func New() {
	level := parseLevel(os.Getenv("LOG_LEVEL"))

	var handler slog.Handler
	switch os.Getenv("LOG_FORMAT") {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	default:
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level:     level,
			AddSource: true,
		})
	}

	slog.SetDefault(slog.New(handler))
}

// parseLevel maps a LOG_LEVEL value to a slog level. Anything unrecognized
// falls back to debug, the chattiest setting, so a typo never hides logs.
func parseLevel(raw string) slog.Level {
	switch strings.ToLower(raw) {
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}
