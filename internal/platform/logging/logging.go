// Package logging centralizes slog handler construction so every component
// logs with the same level and format, controlled by environment variables.
package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Setup builds the process logger. LOG_LEVEL selects the minimum level
// (debug|info|warn|error, default info); LOG_FORMAT=json switches to the JSON
// handler. Output goes to stderr.
func Setup() *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}

	var h slog.Handler
	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		h = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	} else {
		h = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	}
	return slog.New(h)
}
