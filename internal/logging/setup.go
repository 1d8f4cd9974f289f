// Package logging builds the slog handlers used across kindling.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// verbosity is what a level name turns on. Trace is debug plus caller info.
type verbosity struct {
	level     slog.Level
	caller    bool
	timestamp bool
}

func parseVerbosity(name string) verbosity {
	switch strings.ToLower(name) {
	case "trace":
		return verbosity{level: slog.LevelDebug, caller: true, timestamp: true}
	case "debug":
		return verbosity{level: slog.LevelDebug, timestamp: true}
	case "warn", "warning":
		return verbosity{level: slog.LevelWarn}
	case "error":
		return verbosity{level: slog.LevelError}
	default:
		return verbosity{level: slog.LevelInfo}
	}
}

// ParseLevel maps a level name to a slog level. Trace maps to debug; unknown names map to info.
func ParseLevel(name string) slog.Level {
	return parseVerbosity(name).level
}

// SetupHandlerText returns a charmbracelet console handler. A nil writer means stderr.
func SetupHandlerText(level string, w io.Writer) slog.Handler {
	if w == nil {
		w = os.Stderr
	}
	v := parseVerbosity(level)
	return log.NewWithOptions(w, log.Options{
		Level:           log.Level(v.level),
		ReportCaller:    v.caller,
		ReportTimestamp: v.timestamp,
	})
}

// SetupHandlerJSON returns a JSON handler. A nil writer means stdout.
func SetupHandlerJSON(level string, w io.Writer) slog.Handler {
	if w == nil {
		w = os.Stdout
	}
	v := parseVerbosity(level)
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: v.level, AddSource: v.caller})
}

// SetupLogger installs a console logger at level as the slog default.
func SetupLogger(level string) {
	slog.SetDefault(slog.New(SetupHandlerText(level, nil)))
}
