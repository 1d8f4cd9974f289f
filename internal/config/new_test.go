package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/atlanticdynamic/kindling/internal/config/errz"
	"github.com/atlanticdynamic/kindling/internal/config/loader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewConfigMergesFilesInOrder(t *testing.T) {
	dir := t.TempDir()
	base := writeFile(t, dir, "app.toml", `
project_name = "Acme"
timezone = "${KINDLING_TEST_TZ:America/Toronto}"

[routes.templates.home]
template = "home"

[routes.actions.contact]
methods = ["POST"]
`)
	local := writeFile(t, dir, "local.yaml", `
dev_mode: true
routes:
  templates:
    about: {}
`)
	extra := writeFile(t, dir, "extra.json", `{"project_name": "Acme Local"}`)

	cfg, err := NewConfig(base, local, extra)
	require.NoError(t, err)

	assert.Equal(t, "Acme Local", cfg.ProjectName)
	assert.Equal(t, "America/Toronto", cfg.Timezone)
	assert.True(t, cfg.DevMode)
	assert.Contains(t, cfg.Routes.Templates, "home")
	assert.Contains(t, cfg.Routes.Templates, "about")
	assert.Equal(t, []string{"POST"}, cfg.Routes.Actions["contact"].Methods)
}

func TestNewConfigEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "app.toml", `timezone = "UTC"`)

	t.Setenv("KINDLING_TIMEZONE", "Asia/Tokyo")
	t.Setenv("KINDLING_DEV_MODE", "true")
	t.Setenv("KINDLING_BASE_PATH", dir)

	cfg, err := NewConfig(path)
	require.NoError(t, err)

	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Equal(t, "Asia/Tokyo", cfg.Timezone)
	assert.True(t, cfg.DevMode)
	assert.Equal(t, resolved+string(filepath.Separator), cfg.BasePath)
}

func TestNewConfigErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := NewConfig(filepath.Join(dir, "missing.toml"))
		require.Error(t, err)
		assert.ErrorIs(t, err, errz.ErrFailedToLoadConfig)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		path := writeFile(t, dir, "app.ini", "timezone=UTC")
		_, err := NewConfig(path)
		require.Error(t, err)
		assert.ErrorIs(t, err, errz.ErrUnsupportedFormat)
	})

	t.Run("undefined variable", func(t *testing.T) {
		path := writeFile(t, dir, "vars.toml", `base_url = "${KINDLING_TEST_UNDEFINED_URL}"`)
		_, err := NewConfig(path)
		require.Error(t, err)
		assert.ErrorIs(t, err, errz.ErrFailedToLoadConfig)
	})

	t.Run("wrong type", func(t *testing.T) {
		_, err := NewConfigFromBytes([]byte(`dev_mode = "yes"`), loader.FormatTOML)
		require.Error(t, err)
		assert.ErrorIs(t, err, errz.ErrInvalidType)
	})

	t.Run("load skips validation", func(t *testing.T) {
		path := writeFile(t, dir, "mars.toml", `timezone = "Mars/Olympus"`)
		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "Mars/Olympus", cfg.Timezone)
		assert.Error(t, cfg.Validate())

		_, err = NewConfig(path)
		assert.ErrorIs(t, err, errz.ErrFailedToValidateConfig)
	})

	t.Run("script code keeps references", func(t *testing.T) {
		path := writeFile(t, dir, "script.toml", `
[routes.actions.greet]
controller = "script"
[routes.actions.greet.action_data]
code = '"hi ${name} ${KINDLING_TEST_NOT_SET}"'
`)
		cfg, err := NewConfig(path)
		require.NoError(t, err)
		assert.Equal(t, `"hi ${name} ${KINDLING_TEST_NOT_SET}"`, cfg.Routes.Actions["greet"].ActionData["code"])
	})

	t.Run("invalid config", func(t *testing.T) {
		_, err := NewConfigFromBytes([]byte(`timezone = "Nowhere/Special"`), loader.FormatTOML)
		require.Error(t, err)
		assert.ErrorIs(t, err, errz.ErrFailedToValidateConfig)
	})
}
