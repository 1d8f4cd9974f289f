package app

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlanticdynamic/kindling/internal/config"
	"github.com/atlanticdynamic/kindling/internal/config/errz"
	"github.com/atlanticdynamic/kindling/internal/module"
	"github.com/atlanticdynamic/kindling/internal/routes"
	"github.com/atlanticdynamic/kindling/internal/script"
	"github.com/atlanticdynamic/kindling/internal/testutil"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
}

// newSite builds a config tree over a temp base path holding one view and
// one public file.
func newSite(t *testing.T, extra map[string]any) *config.AppConfig {
	t.Helper()
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "views", "home.html"), "<h1>{{.title}}</h1>")
	writeFile(t, filepath.Join(base, "www", "robots.txt"), "User-agent: *")

	tree := map[string]any{
		"base_path":    base,
		"project_name": "Kindling Test",
		"routes": map[string]any{
			"templates": map[string]any{
				"home": map[string]any{"template_data": map[string]any{"title": "Welcome"}},
			},
			"actions": map[string]any{
				"ping": map[string]any{"controller": "echo", "action_data": map[string]any{"pong": true}},
			},
			"scripts": map[string]any{
				"hello": map[string]any{"controller": "echo", "script_data": map[string]any{"greeting": "hi"}},
			},
		},
		"routables": []any{map[string]any{"type": "static"}},
		"middlewares": map[string]any{
			"headers": map[string]any{"set": map[string]any{"X-Frame-Options": "DENY"}},
		},
	}
	for k, v := range extra {
		tree[k] = v
	}
	cfg, err := config.NewConfigFromTree(tree)
	require.NoError(t, err)
	return cfg
}

func newTestApp(t *testing.T, cfg *config.AppConfig, opts ...Option) (*App, *testutil.LogBuffer) {
	t.Helper()
	buf := &testutil.LogBuffer{}
	h := slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	a, err := New(cfg, append([]Option{WithLogHandler(h)}, opts...)...)
	require.NoError(t, err)
	return a, buf
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := New(nil)
	require.Error(t, err)

	a, err := New(config.New())
	require.NoError(t, err)
	assert.NotEqual(t, a.ID().String(), "")
	assert.Equal(t, routes.ModeWeb, a.Mode())
	assert.False(t, a.IsSetup())
	assert.Nil(t, a.Handler())
}

func TestSetupOnce(t *testing.T) {
	t.Parallel()

	a, _ := newTestApp(t, newSite(t, nil))
	require.NoError(t, a.Setup(t.Context()))
	assert.True(t, a.IsSetup())
	require.ErrorIs(t, a.Setup(t.Context()), ErrAlreadySetup)
}

func TestSetupWeb(t *testing.T) {
	t.Parallel()

	a, logs := newTestApp(t, newSite(t, map[string]any{"timezone": "Europe/Paris"}))
	require.NoError(t, a.Setup(t.Context()))
	h := a.Handler()
	require.NotNil(t, h)

	t.Run("template route", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/home")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "<h1>Welcome</h1>", rec.Body.String())
		assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	})

	t.Run("action route", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/ping")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"pong":true}`, rec.Body.String())
	})

	t.Run("static routable", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/robots.txt")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "User-agent: *", rec.Body.String())
	})

	t.Run("not found", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/missing")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	})

	t.Run("script routes are not registered", func(t *testing.T) {
		for _, info := range a.Routes() {
			assert.NotEqual(t, routes.KindScript, info.Kind)
		}
	})

	t.Run("route order", func(t *testing.T) {
		var kinds []string
		for _, info := range a.Routes() {
			kinds = append(kinds, info.Kind)
		}
		assert.Equal(t, []string{routes.KindTemplate, routes.KindAction, KindRoutable}, kinds)
	})

	t.Run("timezone", func(t *testing.T) {
		require.NotNil(t, a.Location())
		assert.Equal(t, "Europe/Paris", a.Location().String())
	})

	t.Run("boot logs are replayed", func(t *testing.T) {
		out := logs.String()
		assert.Contains(t, out, "Kindling app created")
		assert.Contains(t, out, "Kindling app init logger")
		assert.Less(t, strings.Index(out, "Kindling app created"), strings.Index(out, "Kindling app init logger"))
	})
}

func TestSetupModules(t *testing.T) {
	t.Parallel()

	cfg := newSite(t, map[string]any{
		"modules": map[string]any{
			"api": map[string]any{
				"type": "generic",
				"routes": map[string]any{
					"actions": map[string]any{
						"api/status": map[string]any{"controller": "echo", "methods": []any{"get"}, "action_data": map[string]any{"ok": 1}},
					},
				},
			},
		},
	})
	a, _ := newTestApp(t, cfg)
	require.NoError(t, a.Setup(t.Context()))

	rec := do(t, a.Handler(), http.MethodGet, "/api/status")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":1}`, rec.Body.String())
}

func TestSetupCustomModule(t *testing.T) {
	t.Parallel()

	cfg := newSite(t, map[string]any{"modules": map[string]any{"blog": map[string]any{}}})
	called := false
	a, _ := newTestApp(t, cfg, WithModules(map[string]module.Constructor{
		"blog": func(ident string, deps module.Deps) (module.Module, error) {
			called = true
			return module.NewBase(ident, deps.Logger), nil
		},
	}))
	require.NoError(t, a.Setup(t.Context()))
	assert.True(t, called)
}

func TestSetupErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		extra map[string]any
		err   error
	}{
		{
			name:  "unknown module",
			extra: map[string]any{"modules": map[string]any{"nope": map[string]any{}}},
			err:   errz.ErrUnknownModule,
		},
		{
			name:  "unknown middleware",
			extra: map[string]any{"middlewares": map[string]any{"nope": map[string]any{}}},
			err:   errz.ErrUnknownMiddleware,
		},
		{
			name: "unknown controller",
			extra: map[string]any{"routes": map[string]any{
				"actions": map[string]any{"x": map[string]any{"controller": "nope"}},
			}},
			err: errz.ErrUnknownController,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a, _ := newTestApp(t, newSite(t, tt.extra))
			require.ErrorIs(t, a.Setup(t.Context()), tt.err)
			assert.False(t, a.IsSetup())

			routesBefore := len(a.Routes())
			retry := a.Setup(t.Context())
			require.ErrorIs(t, retry, ErrSetupFailed)
			require.ErrorIs(t, retry, tt.err)
			assert.Len(t, a.Routes(), routesBefore)
			assert.False(t, a.IsSetup())
		})
	}
}

func TestRunScript(t *testing.T) {
	t.Parallel()

	a, _ := newTestApp(t, newSite(t, nil))
	var stdout bytes.Buffer
	err := a.RunScript(t.Context(), "/hello", nil, script.Stdio{Stdout: &stdout, Stderr: io.Discard})
	require.NoError(t, err)
	assert.Equal(t, routes.ModeCLI, a.Mode())
	assert.JSONEq(t, `{"greeting":"hi"}`, stdout.String())

	for _, info := range a.Routes() {
		assert.Equal(t, routes.KindScript, info.Kind)
	}
	assert.Nil(t, a.Handler())

	err = a.RunScript(t.Context(), "/missing", nil, script.Stdio{Stdout: io.Discard})
	require.ErrorIs(t, err, routes.ErrScriptNotFound)
}

func TestModeMismatch(t *testing.T) {
	t.Parallel()

	a, _ := newTestApp(t, newSite(t, nil))
	require.NoError(t, a.Setup(t.Context()))
	err := a.RunScript(t.Context(), "/hello", nil, script.Stdio{})
	require.ErrorIs(t, err, ErrWrongMode)

	c, _ := newTestApp(t, newSite(t, nil), WithMode(routes.ModeCLI))
	require.ErrorIs(t, c.Run(t.Context()), ErrWrongMode)
}

func TestRun(t *testing.T) {
	t.Parallel()

	addr := testutil.FreeAddr(t)
	a, _ := newTestApp(t, newSite(t, nil), WithAddress(addr))

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Post("http://"+addr+"/ping", "application/json", nil)
		if err != nil {
			return false
		}
		defer func() { _ = resp.Body.Close() }()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("app did not stop")
	}
}
