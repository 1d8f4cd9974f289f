package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/atlanticdynamic/kindling/internal/config"
)

// OpenOutput resolves a logger output value. Supported values:
//   - "stderr" or "" writes to os.Stderr
//   - "stdout" writes to os.Stdout
//   - "file:///path/to/file" or any path appends to that file, creating parent directories
//
// The returned closer is a no-op for the standard streams.
func OpenOutput(output string) (io.Writer, io.Closer, error) {
	switch {
	case output == "" || output == "stderr":
		return os.Stderr, nopCloser{}, nil
	case output == "stdout":
		return os.Stdout, nopCloser{}, nil
	case strings.Contains(output, "://") && !strings.HasPrefix(output, "file://"):
		return nil, nil, fmt.Errorf("unsupported log output: %s", output)
	}

	path := strings.TrimPrefix(output, "file://")
	if dir := filepath.Dir(path); dir != "." && dir != "/" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	return file, file, nil
}

// NewHandler builds the handler described by cfg. An inactive logger discards
// everything. Relative file outputs must be resolved by the caller.
func NewHandler(cfg config.LoggerConfig) (slog.Handler, io.Closer, error) {
	if !cfg.Active {
		return slog.DiscardHandler, nopCloser{}, nil
	}

	w, closer, err := OpenOutput(cfg.Output)
	if err != nil {
		return nil, nil, err
	}

	if cfg.Format == config.LogFormatJSON {
		return SetupHandlerJSON(cfg.Level, w), closer, nil
	}
	return SetupHandlerText(cfg.Level, w), closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
