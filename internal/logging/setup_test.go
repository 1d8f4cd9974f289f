package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/atlanticdynamic/kindling/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupHandlerText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		logLevel  string
		logDebug  bool
		wantDebug bool
	}{
		{name: "trace", logLevel: "trace", wantDebug: true},
		{name: "debug", logLevel: "debug", wantDebug: true},
		{name: "mixed case", logLevel: "DeBuG", wantDebug: true},
		{name: "info", logLevel: "info", wantDebug: false},
		{name: "unknown defaults to info", logLevel: "chatty", wantDebug: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := slog.New(SetupHandlerText(tt.logLevel, &buf))
			logger.Debug("debug message", "route", "home")
			logger.Info("info message", "route", "home")

			out := buf.String()
			assert.Contains(t, out, "info message")
			assert.Contains(t, out, "route")
			if tt.wantDebug {
				assert.Contains(t, out, "debug message")
			} else {
				assert.NotContains(t, out, "debug message")
			}
		})
	}
}

func TestSetupHandlerJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(SetupHandlerJSON("warn", &buf))
	logger.Info("skipped")
	logger.Warn("kept", "ident", "home")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var record map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &record))
	assert.Equal(t, "kept", record["msg"])
	assert.Equal(t, "WARN", record["level"])
	assert.Equal(t, "home", record["ident"])
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.LevelDebug, ParseLevel("trace"))
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("info"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}

func TestOpenOutput(t *testing.T) {
	t.Parallel()

	w, closer, err := OpenOutput("")
	require.NoError(t, err)
	assert.Equal(t, os.Stderr, w)
	assert.NoError(t, closer.Close())

	w, _, err = OpenOutput("stdout")
	require.NoError(t, err)
	assert.Equal(t, os.Stdout, w)

	_, _, err = OpenOutput("redis://localhost:6379")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "logs", "app.log")
	w, closer, err = OpenOutput("file://" + path)
	require.NoError(t, err)
	_, err = w.Write([]byte("line\n"))
	require.NoError(t, err)
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "line\n", string(data))
}

func TestNewHandler(t *testing.T) {
	t.Parallel()

	t.Run("inactive discards", func(t *testing.T) {
		t.Parallel()
		cfg := config.NewLoggerConfig()
		cfg.Active = false
		h, closer, err := NewHandler(cfg)
		require.NoError(t, err)
		assert.False(t, h.Enabled(t.Context(), slog.LevelError))
		assert.NoError(t, closer.Close())
	})

	t.Run("json to file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "app.log")
		cfg := config.LoggerConfig{Active: true, Level: "debug", Format: config.LogFormatJSON, Output: path}
		h, closer, err := NewHandler(cfg)
		require.NoError(t, err)

		slog.New(h).Debug("booted", "mode", "web")
		require.NoError(t, closer.Close())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"msg":"booted"`)
		assert.Contains(t, string(data), `"mode":"web"`)
	})
}
