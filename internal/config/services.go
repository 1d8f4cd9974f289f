package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/atlanticdynamic/kindling/internal/config/errz"
)

// Cache driver types
const (
	CacheTypeMemory = "memory"
	CacheTypeRedis  = "redis"
)

// CacheTypes lists the supported cache drivers in their default preference order.
var CacheTypes = []string{CacheTypeRedis, CacheTypeMemory}

// CacheConfig configures the cache service.
type CacheConfig struct {
	Active bool `mapstructure:"active"`
	// Types is tried in order; the first supported driver wins.
	Types      []string            `mapstructure:"types"`
	DefaultTTL int                 `mapstructure:"default_ttl"`
	Prefix     string              `mapstructure:"prefix"`
	Size       int                 `mapstructure:"size"`
	Servers    []CacheServerConfig `mapstructure:"servers"`
}

// CacheServerConfig is one remote cache endpoint.
type CacheServerConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns host:port, defaulting to localhost:6379.
func (s CacheServerConfig) Addr() string {
	host, port := s.Host, s.Port
	if host == "" {
		host = "localhost"
	}
	if port == 0 {
		port = 6379
	}
	return fmt.Sprintf("%s:%d", host, port)
}

// NewCacheConfig returns an active in-memory cache config.
func NewCacheConfig() CacheConfig {
	return CacheConfig{
		Active: true,
		Types:  []string{CacheTypeMemory},
		Size:   1024,
	}
}

func (c *CacheConfig) validate() error {
	var errs []error
	for _, t := range c.Types {
		if !slices.Contains(CacheTypes, t) {
			errs = append(errs, fmt.Errorf("%w: cache type %q", errz.ErrUnknownDriver, t))
		}
	}
	if c.Size < 0 {
		errs = append(errs, fmt.Errorf("%w: cache size must not be negative", errz.ErrInvalidValue))
	}
	return errors.Join(errs...)
}

// Logger formats
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

var logLevels = []string{"trace", "debug", "info", "warn", "warning", "error"}

// LoggerConfig configures the application logger.
type LoggerConfig struct {
	Active bool   `mapstructure:"active"`
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	// Output is "stderr", "stdout" or a file path.
	Output string `mapstructure:"output"`
}

// NewLoggerConfig returns the default logger config: info level text on stderr.
func NewLoggerConfig() LoggerConfig {
	return LoggerConfig{
		Active: true,
		Level:  "info",
		Format: LogFormatText,
		Output: "stderr",
	}
}

func (l *LoggerConfig) validate() error {
	var errs []error
	if l.Level != "" && !slices.Contains(logLevels, strings.ToLower(l.Level)) {
		errs = append(errs, fmt.Errorf("%w: log level %q", errz.ErrInvalidValue, l.Level))
	}
	switch l.Format {
	case "", LogFormatText, LogFormatJSON:
	default:
		errs = append(errs, fmt.Errorf("%w: log format %q", errz.ErrInvalidValue, l.Format))
	}
	return errors.Join(errs...)
}

// ViewConfig configures template rendering.
type ViewConfig struct {
	DefaultEngine     string   `mapstructure:"default_engine"`
	DefaultController string   `mapstructure:"default_controller"`
	Paths             []string `mapstructure:"paths"`
	Extension         string   `mapstructure:"extension"`
}

// TemplateExtension returns the template file extension, ".html" by default.
func (v ViewConfig) TemplateExtension() string {
	if v.Extension == "" {
		return ".html"
	}
	return "." + strings.TrimLeft(v.Extension, ".")
}

// TranslatorConfig configures languages and message catalogs.
type TranslatorConfig struct {
	Locales      LocalesConfig      `mapstructure:"locales"`
	Translations TranslationsConfig `mapstructure:"translations"`
}

// LocalesConfig lists the available languages.
type LocalesConfig struct {
	Languages         map[string]LanguageConfig `mapstructure:"languages"`
	DefaultLanguage   string                    `mapstructure:"default_language"`
	FallbackLanguages []string                  `mapstructure:"fallback_languages"`
}

// LanguageConfig describes one language. A missing Active flag means active.
type LanguageConfig struct {
	Active *bool  `mapstructure:"active"`
	Name   string `mapstructure:"name"`
	Locale string `mapstructure:"locale"`
}

// IsActive reports whether the language is enabled.
func (l LanguageConfig) IsActive() bool {
	return l.Active == nil || *l.Active
}

// TranslationsConfig holds inline messages (ident -> lang -> text) and catalog paths.
type TranslationsConfig struct {
	Messages map[string]map[string]string `mapstructure:"messages"`
	Paths    []string                     `mapstructure:"paths"`
}

// DatabaseConfig is one named database connection.
type DatabaseConfig struct {
	// Type is the driver: "postgres" or "sqlite".
	Type     string            `mapstructure:"type"`
	DSN      string            `mapstructure:"dsn"`
	Hostname string            `mapstructure:"hostname"`
	Port     int               `mapstructure:"port"`
	Database string            `mapstructure:"database"`
	Username string            `mapstructure:"username"`
	Password string            `mapstructure:"password"`
	Options  map[string]string `mapstructure:"options"`
}

// Database driver types
const (
	DatabaseTypePostgres = "postgres"
	DatabaseTypeSQLite   = "sqlite"
)

func (d *DatabaseConfig) validate() error {
	switch d.Type {
	case DatabaseTypePostgres:
		if d.DSN == "" && d.Database == "" {
			return fmt.Errorf("%w: postgres needs a dsn or a database name", errz.ErrMissingRequiredField)
		}
	case DatabaseTypeSQLite:
		if d.DSN == "" && d.Database == "" {
			return fmt.Errorf("%w: sqlite needs a dsn or a database file", errz.ErrMissingRequiredField)
		}
	case "":
		return fmt.Errorf("%w: database type", errz.ErrMissingRequiredField)
	default:
		return fmt.Errorf("%w: database type %q", errz.ErrUnknownDriver, d.Type)
	}
	return nil
}
