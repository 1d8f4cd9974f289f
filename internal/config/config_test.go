package config

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/atlanticdynamic/kindling/internal/config/errz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	t.Parallel()

	cfg := New()
	assert.Empty(t, cfg.ProjectName)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, "default", cfg.DefaultDatabase)
	assert.False(t, cfg.DevMode)
	assert.True(t, strings.HasSuffix(cfg.BasePath, string(filepath.Separator)))
	assert.Equal(t, cfg.BasePath+"www"+string(filepath.Separator), cfg.PublicDir())
	assert.True(t, cfg.Routes.IsEmpty())
	assert.Empty(t, cfg.Routables)
	assert.Empty(t, cfg.Modules)
	assert.True(t, cfg.Cache.Active)
	assert.Equal(t, []string{CacheTypeMemory}, cfg.Cache.Types)
	assert.Equal(t, "info", cfg.Logger.Level)
	require.NoError(t, cfg.Validate())
}

func TestSetRejectsWrongTypes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key     string
		value   any
		message string
	}{
		{key: "timezone", value: 42, message: "Timezone must be a string."},
		{key: "project_name", value: []string{"x"}, message: "Project name must be a string"},
		{key: "base_path", value: true, message: "Base path must be a string"},
		{key: "public_path", value: 1.5, message: "Public path must be a string"},
		{key: "dev_mode", value: "yes", message: "Dev mode must be a boolean"},
		{key: "default_database", value: 3, message: "Default database must be a string"},
		{key: "routes", value: "nope", message: "Routes must be a table"},
		{key: "modules", value: []any{}, message: "Modules must be a table"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Parallel()
			err := New().Set(tt.key, tt.value)
			require.Error(t, err)
			assert.ErrorIs(t, err, errz.ErrInvalidType)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestSetScalars(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := New()
	require.NoError(t, cfg.Merge(map[string]any{
		"project_name": "Acme",
		"base_url":     "https://acme.test",
		"base_path":    dir,
		"public_path":  "public",
		"timezone":     "America/Montreal",
		"dev_mode":     true,
	}))

	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	sep := string(filepath.Separator)

	assert.Equal(t, "Acme", cfg.DisplayName())
	assert.Equal(t, resolved+sep, cfg.BasePath)
	assert.Equal(t, filepath.Join(resolved, "public")+sep, cfg.PublicDir())
	assert.Equal(t, "America/Montreal", cfg.Timezone)
	assert.True(t, cfg.DevMode)

	require.NoError(t, cfg.Set("project_name", nil))
	assert.Equal(t, "https://acme.test", cfg.DisplayName(), "falls back to the base URL")
}

func TestSetUnknownKeyIsKept(t *testing.T) {
	t.Parallel()

	cfg := New()
	require.NoError(t, cfg.Set("newsletter", map[string]any{"list": "weekly"}))
	assert.Equal(t, map[string]any{"list": "weekly"}, cfg.Extra["newsletter"])
}

func TestRoutesMergePerIdent(t *testing.T) {
	t.Parallel()

	cfg := New()
	require.NoError(t, cfg.Set("routes", map[string]any{
		"templates": map[string]any{
			"home":  map[string]any{"template": "pages/home"},
			"about": map[string]any{},
		},
		"actions": map[string]any{
			"contact": map[string]any{"methods": []any{"post", "put"}},
		},
	}))
	require.NoError(t, cfg.Set("routes", map[string]any{
		"templates": map[string]any{
			"home": map[string]any{"template": "pages/landing", "cache": true, "cache_ttl": 60},
		},
		"scripts": map[string]any{
			"cache/clear": map[string]any{"controller": "cache-clear"},
		},
	}))

	require.Len(t, cfg.Routes.Templates, 2)
	assert.Equal(t, "pages/landing", cfg.Routes.Templates["home"].Template)
	assert.True(t, cfg.Routes.Templates["home"].Cache)
	assert.Equal(t, 60, cfg.Routes.Templates["home"].CacheTTL)
	assert.Contains(t, cfg.Routes.Templates, "about")
	assert.Equal(t, []string{"POST", "PUT"}, cfg.Routes.Actions["contact"].Methods)
	assert.Equal(t, "cache-clear", cfg.Routes.Scripts["cache/clear"].Controller)
}

func TestRoutesMergeRejectsBadMethod(t *testing.T) {
	t.Parallel()

	err := New().Set("routes", map[string]any{
		"actions": map[string]any{
			"contact": map[string]any{"methods": "POST,FETCH"},
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, errz.ErrInvalidMethod)
	assert.Contains(t, err.Error(), `Invalid method "FETCH". Must be a valid HTTP method.`)
}

func TestRoutesMergeRejectsWrongFieldType(t *testing.T) {
	t.Parallel()

	err := New().Set("routes", map[string]any{
		"templates": map[string]any{
			"home": map[string]any{"cache": "sometimes"},
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, errz.ErrInvalidType)
}

func TestModulesReplace(t *testing.T) {
	t.Parallel()

	cfg := New()
	require.NoError(t, cfg.Set("modules", map[string]any{
		"blog": map[string]any{
			"routes": map[string]any{
				"templates": map[string]any{"blog": map[string]any{}},
			},
			"middlewares": map[string]any{"headers": map[string]any{"priority": 5}},
			"page_size":   10,
		},
	}))
	require.NoError(t, cfg.Set("modules", map[string]any{"shop": nil}))

	assert.NotContains(t, cfg.Modules, "blog")
	assert.Contains(t, cfg.Modules, "shop")

	require.NoError(t, cfg.Set("modules", map[string]any{
		"blog": map[string]any{
			"middlewares": map[string]any{"headers": map[string]any{"priority": 5}},
			"page_size":   10,
		},
	}))
	blog := cfg.Modules["blog"]
	assert.Equal(t, 5, blog.Middlewares["headers"].Priority)
	assert.Equal(t, 10, blog.Data["page_size"])
}

func TestRoutablesOrder(t *testing.T) {
	t.Parallel()

	t.Run("list keeps order", func(t *testing.T) {
		t.Parallel()
		cfg := New()
		require.NoError(t, cfg.Set("routables", []any{
			map[string]any{"type": "static", "dir": "public"},
			map[string]any{"type": "pages"},
		}))
		require.Len(t, cfg.Routables, 2)
		assert.Equal(t, "static", cfg.Routables[0].Type)
		assert.Equal(t, "public", cfg.Routables[0].Options["dir"])
		assert.Equal(t, "pages", cfg.Routables[1].Type)
	})

	t.Run("table sorts by priority then type", func(t *testing.T) {
		t.Parallel()
		cfg := New()
		require.NoError(t, cfg.Set("routables", map[string]any{
			"static": map[string]any{"priority": 10},
			"pages":  map[string]any{"priority": 1},
			"alias":  map[string]any{"priority": 10},
		}))
		var types []string
		for _, r := range cfg.Routables {
			types = append(types, r.Type)
		}
		assert.Equal(t, []string{"pages", "alias", "static"}, types)
	})

	t.Run("wrong shape", func(t *testing.T) {
		t.Parallel()
		assert.Error(t, New().Set("routables", "static"))
	})
}

func TestServiceSubconfigs(t *testing.T) {
	t.Parallel()

	cfg := New()
	require.NoError(t, cfg.Merge(map[string]any{
		"cache": map[string]any{
			"types":   []any{"redis", "memory"},
			"prefix":  "acme:",
			"servers": []any{map[string]any{"host": "cache.local", "port": 6380}},
		},
		"logger": map[string]any{"level": "debug", "format": "json"},
		"view":   map[string]any{"default_engine": "templ", "paths": "templates,views"},
		"translator": map[string]any{
			"locales": map[string]any{
				"languages": map[string]any{
					"en": map[string]any{},
					"fr": map[string]any{"active": false},
				},
			},
		},
		"locales": map[string]any{
			"languages": map[string]any{"es": map[string]any{"name": "Español"}},
		},
	}))

	assert.True(t, cfg.Cache.Active, "defaults are kept under the decoded keys")
	assert.Equal(t, []string{"redis", "memory"}, cfg.Cache.Types)
	assert.Equal(t, "cache.local:6380", cfg.Cache.Servers[0].Addr())
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, LogFormatJSON, cfg.Logger.Format)
	assert.Equal(t, "stderr", cfg.Logger.Output)
	assert.Equal(t, []string{"templates", "views"}, cfg.View.Paths)
	assert.Equal(t, ".html", cfg.View.TemplateExtension())
	assert.Equal(t, []string{"en", "es"}, cfg.ActiveLanguages())
}

func TestDatabases(t *testing.T) {
	t.Parallel()

	cfg := New()
	_, err := cfg.DefaultDatabaseConfig()
	require.Error(t, err)
	assert.ErrorIs(t, err, errz.ErrDatabaseNotFound)

	require.NoError(t, cfg.Set("databases", map[string]any{
		"default": map[string]any{"type": "sqlite", "database": "var/app.db"},
	}))
	cfg.AddDatabase("reporting", DatabaseConfig{Type: DatabaseTypePostgres, Database: "reports"})

	db, err := cfg.DefaultDatabaseConfig()
	require.NoError(t, err)
	assert.Equal(t, "var/app.db", db.Database)

	_, err = cfg.Database("missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `No database configuration matches "missing".`)

	cfg.DefaultDatabase = ""
	_, err = cfg.DefaultDatabaseConfig()
	require.Error(t, err)
	assert.ErrorIs(t, err, errz.ErrDefaultDatabaseNotSet)
	assert.Contains(t, err.Error(), "Default database is not set.")
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cfg := New()
	cfg.Timezone = "Mars/Olympus_Mons"
	cfg.Routes.Templates = map[string]TemplateRouteConfig{
		"old": {RedirectMode: 200, Redirect: "/new"},
	}
	cfg.Routables = []RoutableConfig{{}}
	cfg.Cache.Types = []string{"memcached"}
	cfg.Logger.Format = "xml"
	cfg.Databases = map[string]DatabaseConfig{"reports": {Type: "oracle"}}

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, errz.ErrInvalidValue)
	assert.ErrorIs(t, err, errz.ErrInvalidRedirectMode)
	assert.ErrorIs(t, err, errz.ErrEmptyID)
	assert.ErrorIs(t, err, errz.ErrUnknownDriver)
	assert.ErrorIs(t, err, errz.ErrDatabaseNotFound, "default database must exist when databases are set")
}

func TestString(t *testing.T) {
	t.Parallel()

	cfg := New()
	cfg.ProjectName = "Acme"
	require.NoError(t, cfg.Set("routes", map[string]any{
		"templates": map[string]any{"old": map[string]any{"redirect": "/new"}},
		"actions":   map[string]any{"contact": map[string]any{"route": "/api/contact"}},
	}))
	cfg.Routables = []RoutableConfig{{Type: "static"}}

	out := cfg.String()
	assert.Contains(t, out, "Acme")
	assert.Contains(t, out, "/old")
	assert.Contains(t, out, "/new (301)")
	assert.Contains(t, out, "/api/contact")
	assert.Contains(t, out, "static")
}
