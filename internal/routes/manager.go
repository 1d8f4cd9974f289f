// Package routes registers the configured template, action and script routes
// on a gorilla/mux router.
package routes

import (
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"slices"
	"strings"

	"github.com/gorilla/mux"

	"github.com/atlanticdynamic/kindling/internal/action"
	"github.com/atlanticdynamic/kindling/internal/cache"
	"github.com/atlanticdynamic/kindling/internal/config"
	"github.com/atlanticdynamic/kindling/internal/container"
	"github.com/atlanticdynamic/kindling/internal/registry"
	"github.com/atlanticdynamic/kindling/internal/script"
	"github.com/atlanticdynamic/kindling/internal/template"
	"github.com/atlanticdynamic/kindling/internal/view"
)

// Mode selects which route kinds are registered.
type Mode string

const (
	// ModeWeb registers template and action routes.
	ModeWeb Mode = "web"
	// ModeCLI registers script routes.
	ModeCLI Mode = "cli"
)

// Route kinds
const (
	KindTemplate = "template"
	KindAction   = "action"
	KindScript   = "script"
)

// Deps is everything a Manager needs to build routes.
type Deps struct {
	Router    *mux.Router
	Logger    *slog.Logger
	Container container.Resolver
	View      config.ViewConfig
	Renderer  *view.Renderer
	// Cache may be nil, which disables template caching.
	Cache     cache.Pool
	Actions   *registry.Registry[action.Constructor]
	Templates *registry.Registry[template.Constructor]
	Scripts   *registry.Registry[script.Constructor]
}

// Info describes one registered route.
type Info struct {
	Kind       string
	Ident      string
	Path       string
	Methods    []string
	Controller string
}

// Manager registers the routes of one RoutesConfig.
type Manager struct {
	cfg    config.RoutesConfig
	deps   Deps
	logger *slog.Logger
	routes []Info
}

// NewManager creates a manager. It copies cfg; normalized idents and paths are
// visible through Config after SetupRoutes.
func NewManager(cfg config.RoutesConfig, deps Deps) *Manager {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		cfg: config.RoutesConfig{
			Templates: maps.Clone(cfg.Templates),
			Actions:   maps.Clone(cfg.Actions),
			Scripts:   maps.Clone(cfg.Scripts),
		},
		deps:   deps,
		logger: logger,
	}
}

// Config returns the routes config with normalized idents and paths.
func (m *Manager) Config() config.RoutesConfig {
	return m.cfg
}

// Routes returns the registered routes in registration order.
func (m *Manager) Routes() []Info {
	return slices.Clone(m.routes)
}

// SetupRoutes registers scripts in ModeCLI, and templates then actions in
// ModeWeb. Idents are registered in sorted order.
func (m *Manager) SetupRoutes(mode Mode) error {
	if m.deps.Router == nil {
		return fmt.Errorf("routes: no router")
	}
	switch mode {
	case ModeCLI:
		return m.setupScripts()
	case ModeWeb:
		if err := m.setupTemplates(); err != nil {
			return err
		}
		return m.setupActions()
	default:
		return fmt.Errorf("routes: unknown mode %q", mode)
	}
}

// normalize applies the ident and route defaults and returns the path.
func normalize(key string, rc *config.RouteConfig, defaultMethod string) string {
	ident := strings.TrimLeft(key, "/")
	if rc.Ident == "" {
		rc.Ident = ident
	}
	if rc.Route == "" {
		rc.Route = "/" + ident
	}
	if len(rc.Methods) == 0 {
		rc.Methods = []string{defaultMethod}
	}
	return rc.Path()
}

func (m *Manager) handle(kind string, rc config.RouteConfig, path, controller string, h http.Handler) {
	m.deps.Router.Handle(path, h).Methods(rc.Methods...).Name(rc.Ident)
	m.routes = append(m.routes, Info{
		Kind:       kind,
		Ident:      rc.Ident,
		Path:       path,
		Methods:    slices.Clone(rc.Methods),
		Controller: controller,
	})
}

func (m *Manager) setupTemplates() error {
	if len(m.cfg.Templates) == 0 {
		return nil
	}
	if m.deps.Renderer == nil {
		return fmt.Errorf("routes: template routes need a renderer")
	}
	for _, key := range slices.Sorted(maps.Keys(m.cfg.Templates)) {
		rc := m.cfg.Templates[key]
		path := normalize(key, &rc.RouteConfig, http.MethodGet)
		m.cfg.Templates[key] = rc

		controller, ctor, err := m.templateController(rc.Controller)
		if err != nil {
			return fmt.Errorf("template route %q: %w", rc.Ident, err)
		}
		m.handle(KindTemplate, rc.RouteConfig, path, controller, &TemplateRoute{
			cfg:           rc,
			engine:        rc.EngineType(m.deps.View),
			newController: ctor,
			deps:          template.Deps{Logger: m.logger, Container: m.deps.Container},
			renderer:      m.deps.Renderer,
			cache:         m.deps.Cache,
			logger:        m.logger,
		})
	}
	return nil
}

// templateController resolves the route controller, then the view default
// controller, then the generic controller.
func (m *Manager) templateController(ident string) (string, template.Constructor, error) {
	reg := m.deps.Templates
	if reg == nil {
		reg = template.NewRegistry()
	}
	for _, candidate := range []string{ident, m.deps.View.DefaultController, template.ControllerGeneric} {
		if candidate == "" {
			continue
		}
		if ctor, ok := reg.Get(candidate); ok {
			return candidate, ctor, nil
		}
	}
	_, err := reg.Resolve(template.ControllerGeneric)
	return "", nil, err
}

func (m *Manager) setupActions() error {
	reg := m.deps.Actions
	if reg == nil {
		reg = action.NewRegistry()
	}
	for _, key := range slices.Sorted(maps.Keys(m.cfg.Actions)) {
		rc := m.cfg.Actions[key]
		path := normalize(key, &rc.RouteConfig, http.MethodPost)
		m.cfg.Actions[key] = rc

		controller := rc.ControllerIdent()
		ctor, err := reg.Resolve(controller)
		if err != nil {
			return fmt.Errorf("action route %q: %w", rc.Ident, err)
		}
		m.handle(KindAction, rc.RouteConfig, path, controller, &ActionRoute{
			cfg:       rc,
			newAction: ctor,
			deps:      action.Deps{Logger: m.logger, Container: m.deps.Container},
			logger:    m.logger,
		})
	}
	return nil
}

func (m *Manager) setupScripts() error {
	reg := m.deps.Scripts
	if reg == nil {
		reg = script.NewRegistry()
	}
	for _, key := range slices.Sorted(maps.Keys(m.cfg.Scripts)) {
		rc := m.cfg.Scripts[key]
		path := normalize(key, &rc.RouteConfig, http.MethodGet)
		m.cfg.Scripts[key] = rc

		controller := rc.ControllerIdent()
		ctor, err := reg.Resolve(controller)
		if err != nil {
			return fmt.Errorf("script route %q: %w", rc.Ident, err)
		}
		m.handle(KindScript, rc.RouteConfig, path, controller, &ScriptRoute{
			cfg:       rc,
			newScript: ctor,
			deps:      script.Deps{Logger: m.logger, Container: m.deps.Container},
			logger:    m.logger,
		})
	}
	return nil
}

// withVars returns a copy of data with the path vars added on top.
func withVars(data map[string]any, vars map[string]string) map[string]any {
	out := make(map[string]any, len(data)+len(vars))
	maps.Copy(out, data)
	for k, v := range vars {
		out[k] = v
	}
	return out
}
