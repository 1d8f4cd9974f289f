// Package config holds the typed application configuration and the rules for
// merging untyped configuration trees into it.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/atlanticdynamic/kindling/internal/config/errz"
)

// ServiceName is the container service holding the *AppConfig.
const ServiceName = "config"

// Defaults
const (
	DefaultTimezone        = "UTC"
	DefaultDatabaseIdent   = "default"
	DefaultPublicDirectory = "www"
)

// AppConfig is the typed application configuration.
type AppConfig struct {
	ProjectName string
	BaseURL     string
	// BasePath and PublicPath are absolute and always end with a separator.
	BasePath   string
	PublicPath string
	Timezone   string
	DevMode    bool

	Routes      RoutesConfig
	Routables   []RoutableConfig
	Modules     map[string]ModuleConfig
	Middlewares map[string]MiddlewareConfig
	Cache       CacheConfig
	Logger      LoggerConfig
	View        ViewConfig
	Translator  TranslatorConfig

	Databases       map[string]DatabaseConfig
	DefaultDatabase string

	// Extra keeps unrecognized top level keys for modules and providers.
	Extra map[string]any
}

// New returns a configuration with every default applied. The base path is the
// current working directory.
func New() *AppConfig {
	cfg := &AppConfig{
		Timezone:        DefaultTimezone,
		DefaultDatabase: DefaultDatabaseIdent,
		Cache:           NewCacheConfig(),
		Logger:          NewLoggerConfig(),
		Modules:         map[string]ModuleConfig{},
		Middlewares:     map[string]MiddlewareConfig{},
		Databases:       map[string]DatabaseConfig{},
		Extra:           map[string]any{},
	}
	if wd, err := os.Getwd(); err == nil {
		cfg.BasePath = normalizeDir(wd)
	}
	return cfg
}

// DisplayName returns the project name, or the base URL when no name is set.
func (c *AppConfig) DisplayName() string {
	if c.ProjectName != "" {
		return c.ProjectName
	}
	return c.BaseURL
}

// SetBasePath stores path as an absolute directory with a trailing separator.
func (c *AppConfig) SetBasePath(path string) error {
	if path == "" {
		return fmt.Errorf("%w: base path must not be empty", errz.ErrInvalidValue)
	}
	c.BasePath = normalizeDir(path)
	return nil
}

// SetPublicPath stores path as an absolute directory with a trailing separator.
// Relative paths resolve against the base path.
func (c *AppConfig) SetPublicPath(path string) error {
	if path == "" {
		c.PublicPath = ""
		return nil
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.BasePath, path)
	}
	c.PublicPath = normalizeDir(path)
	return nil
}

// PublicDir returns the public path, defaulting to BasePath + "www/".
func (c *AppConfig) PublicDir() string {
	if c.PublicPath != "" {
		return c.PublicPath
	}
	return c.BasePath + DefaultPublicDirectory + string(filepath.Separator)
}

// ResolvePath resolves path against the base path unless it is already absolute.
func (c *AppConfig) ResolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.BasePath, path)
}

// AddDatabase registers or replaces a named database connection.
func (c *AppConfig) AddDatabase(ident string, db DatabaseConfig) {
	if c.Databases == nil {
		c.Databases = make(map[string]DatabaseConfig)
	}
	c.Databases[ident] = db
}

// Database returns the config of a named connection.
func (c *AppConfig) Database(ident string) (DatabaseConfig, error) {
	db, ok := c.Databases[ident]
	if !ok {
		return DatabaseConfig{}, fmt.Errorf(
			"%w: No database configuration matches %q.", errz.ErrDatabaseNotFound, ident,
		)
	}
	return db, nil
}

// DefaultDatabaseConfig returns the config of the default connection.
func (c *AppConfig) DefaultDatabaseConfig() (DatabaseConfig, error) {
	if c.DefaultDatabase == "" {
		return DatabaseConfig{}, fmt.Errorf("%w: Default database is not set.", errz.ErrDefaultDatabaseNotSet)
	}
	return c.Database(c.DefaultDatabase)
}

// ActiveLanguages returns the idents of enabled languages, sorted.
func (c *AppConfig) ActiveLanguages() []string {
	var out []string
	for ident, lang := range c.Translator.Locales.Languages {
		if lang.IsActive() {
			out = append(out, ident)
		}
	}
	slices.Sort(out)
	return out
}

// normalizeDir makes path absolute, resolves symlinks where possible and adds a
// trailing separator.
func normalizeDir(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	}
	sep := string(filepath.Separator)
	return strings.TrimRight(path, sep) + sep
}
