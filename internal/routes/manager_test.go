package routes

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/a-h/templ"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlanticdynamic/kindling/internal/action"
	"github.com/atlanticdynamic/kindling/internal/cache"
	"github.com/atlanticdynamic/kindling/internal/config"
	"github.com/atlanticdynamic/kindling/internal/config/errz"
	"github.com/atlanticdynamic/kindling/internal/script"
	"github.com/atlanticdynamic/kindling/internal/template"
	"github.com/atlanticdynamic/kindling/internal/view"
)

// page renders "<ident>:<title>:<id>" from the view data.
func page(data map[string]any) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, "%v:%v:%v", data["template_ident"], data["title"], data["id"])
		return err
	})
}

func newRenderer() *view.Renderer {
	r := view.NewRenderer("templ")
	r.AddEngine("templ", view.NewTemplEngine(map[string]view.Component{
		"home":       page,
		"users/show": page,
	}))
	return r
}

func newDeps(router *mux.Router) Deps {
	return Deps{
		Router:    router,
		Logger:    slog.New(slog.DiscardHandler),
		View:      config.ViewConfig{DefaultEngine: "templ"},
		Renderer:  newRenderer(),
		Actions:   action.NewRegistry(),
		Templates: template.NewRegistry(),
		Scripts:   script.NewRegistry(),
	}
}

func serve(router http.Handler, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func TestSetupRoutesWeb(t *testing.T) {
	t.Parallel()

	cfg := config.RoutesConfig{
		Templates: map[string]config.TemplateRouteConfig{
			"/home": {
				TemplateData: map[string]any{"title": "Welcome"},
			},
			"user": {
				RouteConfig: config.RouteConfig{Route: "users/{id}"},
				Template:    "users/show",
			},
		},
		Actions: map[string]config.ActionRouteConfig{
			"ping": {
				RouteConfig: config.RouteConfig{Controller: "echo"},
				ActionData:  map[string]any{"pong": true},
			},
			"widgets/{id}": {
				RouteConfig: config.RouteConfig{Controller: "echo", Methods: []string{"PUT"}},
			},
		},
		Scripts: map[string]config.ScriptRouteConfig{
			"skipped": {},
		},
	}

	router := mux.NewRouter()
	m := NewManager(cfg, newDeps(router))
	require.NoError(t, m.SetupRoutes(ModeWeb))

	infos := m.Routes()
	require.Len(t, infos, 4)
	assert.Equal(t, Info{Kind: KindTemplate, Ident: "home", Path: "/home", Methods: []string{"GET"}, Controller: "generic"}, infos[0])
	assert.Equal(t, "/users/{id}", infos[1].Path)
	assert.Equal(t, Info{Kind: KindAction, Ident: "ping", Path: "/ping", Methods: []string{"POST"}, Controller: "echo"}, infos[2])
	assert.Equal(t, []string{"PUT"}, infos[3].Methods)

	normalized := m.Config()
	assert.Equal(t, "home", normalized.Templates["/home"].Ident)
	assert.Equal(t, "/home", normalized.Templates["/home"].Route)
	assert.Empty(t, cfg.Templates["/home"].Ident)

	t.Run("template", func(t *testing.T) {
		w := serve(router, http.MethodGet, "/home")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
		assert.Equal(t, "home:Welcome:<nil>", w.Body.String())
	})

	t.Run("template path vars", func(t *testing.T) {
		w := serve(router, http.MethodGet, "/users/42")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "users/show:<nil>:42", w.Body.String())
	})

	t.Run("wrong method", func(t *testing.T) {
		w := serve(router, http.MethodPost, "/home")
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})

	t.Run("action", func(t *testing.T) {
		w := serve(router, http.MethodPost, "/ping")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"pong": true}`, w.Body.String())
	})

	t.Run("action path vars", func(t *testing.T) {
		w := serve(router, http.MethodPut, "/widgets/7")
		assert.JSONEq(t, `{"id": "7"}`, w.Body.String())
	})

	t.Run("named routes", func(t *testing.T) {
		u, err := router.Get("user").URL("id", "9")
		require.NoError(t, err)
		assert.Equal(t, "/users/9", u.String())
	})
}

func TestSetupRoutesErrors(t *testing.T) {
	t.Parallel()

	t.Run("unknown action controller", func(t *testing.T) {
		t.Parallel()
		m := NewManager(config.RoutesConfig{
			Actions: map[string]config.ActionRouteConfig{"save": {}},
		}, newDeps(mux.NewRouter()))
		err := m.SetupRoutes(ModeWeb)
		require.ErrorIs(t, err, errz.ErrUnknownController)
	})

	t.Run("unknown script controller", func(t *testing.T) {
		t.Parallel()
		m := NewManager(config.RoutesConfig{
			Scripts: map[string]config.ScriptRouteConfig{"migrate": {}},
		}, newDeps(mux.NewRouter()))
		require.ErrorIs(t, m.SetupRoutes(ModeCLI), errz.ErrUnknownController)
	})

	t.Run("unknown mode", func(t *testing.T) {
		t.Parallel()
		m := NewManager(config.RoutesConfig{}, newDeps(mux.NewRouter()))
		require.Error(t, m.SetupRoutes("batch"))
	})

	t.Run("no router", func(t *testing.T) {
		t.Parallel()
		require.Error(t, NewManager(config.RoutesConfig{}, Deps{}).SetupRoutes(ModeWeb))
	})
}

func TestTemplateControllerFallback(t *testing.T) {
	t.Parallel()

	custom := template.NewRegistry()
	custom.Set("site", func(deps template.Deps) (template.Template, error) {
		g, err := template.NewGeneric(deps)
		if err != nil {
			return nil, err
		}
		return &titled{Template: g}, nil
	})

	deps := newDeps(mux.NewRouter())
	deps.Templates = custom
	deps.View.DefaultController = "site"

	m := NewManager(config.RoutesConfig{
		Templates: map[string]config.TemplateRouteConfig{
			"home":  {RouteConfig: config.RouteConfig{Controller: "missing"}},
			"other": {RouteConfig: config.RouteConfig{Controller: "generic"}, Template: "home"},
		},
	}, deps)
	require.NoError(t, m.SetupRoutes(ModeWeb))

	assert.Equal(t, "site", m.Routes()[0].Controller)
	assert.Equal(t, "generic", m.Routes()[1].Controller)

	w := serve(deps.Router, http.MethodGet, "/home")
	assert.Equal(t, "home:From site:<nil>", w.Body.String())
}

type titled struct {
	template.Template
}

func (t *titled) ViewData() map[string]any {
	data := t.Template.ViewData()
	data["title"] = "From site"
	return data
}

func TestTemplateRedirect(t *testing.T) {
	t.Parallel()

	router := mux.NewRouter()
	m := NewManager(config.RoutesConfig{
		Templates: map[string]config.TemplateRouteConfig{
			"old":      {Redirect: "new/place"},
			"temp":     {Redirect: "/elsewhere", RedirectMode: http.StatusFound},
			"external": {Redirect: "https://example.com/x"},
		},
	}, newDeps(router))
	require.NoError(t, m.SetupRoutes(ModeWeb))

	w := serve(router, http.MethodGet, "/old?ref=a")
	assert.Equal(t, http.StatusMovedPermanently, w.Code)
	assert.Equal(t, "/new/place?ref=a", w.Header().Get("Location"))

	w = serve(router, http.MethodGet, "/temp")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/elsewhere", w.Header().Get("Location"))

	w = serve(router, http.MethodGet, "/external")
	assert.Equal(t, "https://example.com/x", w.Header().Get("Location"))
}

func TestTemplateCache(t *testing.T) {
	t.Parallel()

	calls := 0
	renderer := view.NewRenderer("templ")
	renderer.AddEngine("templ", view.NewTemplEngine(map[string]view.Component{
		"home": func(map[string]any) templ.Component {
			return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
				calls++
				_, err := fmt.Fprintf(w, "render %d", calls)
				return err
			})
		},
	}))

	pool, err := cache.NewMemoryPool(8, "")
	require.NoError(t, err)

	router := mux.NewRouter()
	deps := newDeps(router)
	deps.Renderer = renderer
	deps.Cache = pool

	m := NewManager(config.RoutesConfig{
		Templates: map[string]config.TemplateRouteConfig{
			"home":     {Cache: true, CacheTTL: 60},
			"nocache":  {Template: "home"},
			"/missing": {Template: "nope"},
		},
	}, deps)
	require.NoError(t, m.SetupRoutes(ModeWeb))

	assert.Equal(t, "render 1", serve(router, http.MethodGet, "/home").Body.String())
	assert.Equal(t, "render 1", serve(router, http.MethodGet, "/home").Body.String())
	cached, ok, err := pool.Get(t.Context(), "template/home")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "render 1", string(cached))

	assert.Equal(t, "render 2", serve(router, http.MethodGet, "/nocache").Body.String())
	assert.Equal(t, "render 3", serve(router, http.MethodGet, "/nocache").Body.String())

	w := serve(router, http.MethodGet, "/missing")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

type failingAction struct {
	write bool
}

func (f *failingAction) SetData(map[string]any) error { return nil }

func (f *failingAction) HandleHTTP(_ context.Context, w http.ResponseWriter, _ *http.Request) error {
	if f.write {
		w.WriteHeader(http.StatusTeapot)
	}
	return errors.New("boom")
}

func TestActionErrors(t *testing.T) {
	t.Parallel()

	reg := action.NewRegistry()
	reg.Set("fail", func(action.Deps) (action.Action, error) { return &failingAction{}, nil })
	reg.Set("fail-late", func(action.Deps) (action.Action, error) { return &failingAction{write: true}, nil })
	reg.Set("broken", func(action.Deps) (action.Action, error) { return nil, errors.New("no") })

	router := mux.NewRouter()
	deps := newDeps(router)
	deps.Actions = reg
	m := NewManager(config.RoutesConfig{
		Actions: map[string]config.ActionRouteConfig{
			"fail":      {},
			"fail-late": {},
			"broken":    {},
		},
	}, deps)
	require.NoError(t, m.SetupRoutes(ModeWeb))

	assert.Equal(t, http.StatusInternalServerError, serve(router, http.MethodPost, "/fail").Code)
	assert.Equal(t, http.StatusTeapot, serve(router, http.MethodPost, "/fail-late").Code)
	assert.Equal(t, http.StatusInternalServerError, serve(router, http.MethodPost, "/broken").Code)
}

func TestScriptDispatch(t *testing.T) {
	t.Parallel()

	router := mux.NewRouter()
	m := NewManager(config.RoutesConfig{
		Scripts: map[string]config.ScriptRouteConfig{
			"echo": {ScriptData: map[string]any{"greeting": "hi"}},
			"jobs/{name}": {
				RouteConfig: config.RouteConfig{Controller: "echo"},
			},
			"nightly": {
				RouteConfig: config.RouteConfig{Controller: "echo", Methods: []string{http.MethodPost}},
				ScriptData:  map[string]any{"when": "night"},
			},
		},
		Templates: map[string]config.TemplateRouteConfig{"home": {}},
	}, newDeps(router))
	require.NoError(t, m.SetupRoutes(ModeCLI))
	require.Len(t, m.Routes(), 3)
	assert.Equal(t, KindScript, m.Routes()[0].Kind)

	var out bytes.Buffer
	require.NoError(t, Dispatch(t.Context(), router, "echo", nil, script.Stdio{Stdout: &out}))
	assert.JSONEq(t, `{"greeting": "hi"}`, out.String())

	out.Reset()
	require.NoError(t, Dispatch(t.Context(), router, "/jobs/cleanup", nil, script.Stdio{Stdout: &out}))
	assert.JSONEq(t, `{"name": "cleanup"}`, out.String())

	out.Reset()
	require.NoError(t, Dispatch(t.Context(), router, "nightly", nil, script.Stdio{Stdout: &out}))
	assert.JSONEq(t, `{"when": "night"}`, out.String())

	err := Dispatch(t.Context(), router, "home", nil, script.Stdio{Stdout: &out})
	require.ErrorIs(t, err, ErrScriptNotFound)

	w := serve(router, http.MethodGet, "/echo")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
