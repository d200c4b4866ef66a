package logx

import (
	"log/slog"
	"os"
	"strings"
)

// New builds the process logger from LOG_LEVEL and LOG_FORMAT and installs
// it as the slog default so components without an injected logger still
// log consistently.
func New() *slog.Logger {
	level := new(slog.LevelVar)
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		level.Set(slog.LevelDebug)
	case "warn":
		level.Set(slog.LevelWarn)
	case "error":
		level.Set(slog.LevelError)
	default:
		level.Set(slog.LevelInfo)
	}

	var h slog.Handler
	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		h = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		h = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}

	l := slog.New(h).With("app", "steamsync")
	slog.SetDefault(l)
	return l
}
