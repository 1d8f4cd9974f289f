package main

import (
	"log/slog"
	"os"

	"github.com/atlanticdynamic/kindling/internal/config"
	"github.com/atlanticdynamic/kindling/internal/logging"
)

// SetupLogger configures the default logger based on provided log level and format
func SetupLogger(logLevel, format string) {
	if format == config.LogFormatJSON {
		slog.SetDefault(slog.New(logging.SetupHandlerJSON(logLevel, os.Stderr)))
		return
	}
	logging.SetupLogger(logLevel)
}
