// Package middleware builds the request middleware chain from configuration.
package middleware

import (
	"cmp"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/gorilla/mux"
	"github.com/robbyt/go-supervisor/runnables/httpserver"

	"github.com/atlanticdynamic/kindling/internal/config"
	"github.com/atlanticdynamic/kindling/internal/config/errz"
	"github.com/atlanticdynamic/kindling/internal/container"
	"github.com/atlanticdynamic/kindling/internal/registry"
)

// Instance is one built middleware. Middleware may return nil for instances
// that only act inside the router.
type Instance interface {
	Middleware() httpserver.HandlerFunc
}

// RouterMiddleware is implemented by instances that run after route matching.
type RouterMiddleware interface {
	RouterMiddleware() mux.MiddlewareFunc
}

// RouteRegistrar is implemented by instances that serve their own endpoints.
type RouteRegistrar interface {
	RegisterRoutes(router *mux.Router)
}

// Deps are handed to every constructor.
type Deps struct {
	Logger    *slog.Logger
	Container container.Resolver
}

// Constructor creates a middleware from its config entry.
type Constructor func(ident string, cfg config.MiddlewareConfig, deps Deps) (Instance, error)

// Built-in middleware types
const (
	TypeLogger      = "logger"
	TypeHeaders     = "headers"
	TypeMaintenance = "maintenance"
	TypeMetrics     = "metrics"
)

// NewRegistry returns a registry holding the built-in middlewares.
func NewRegistry() *registry.Registry[Constructor] {
	r := registry.New[Constructor]("middleware", errz.ErrUnknownMiddleware)
	r.Set(TypeLogger, NewLogger)
	r.Set(TypeHeaders, NewHeaders)
	r.Set(TypeMaintenance, NewMaintenance)
	r.Set(TypeMetrics, NewMetrics)
	return r
}

// Entry is one active middleware in chain order.
type Entry struct {
	Ident    string
	Type     string
	Priority int
	Instance Instance
}

// Manager collects middleware config entries and builds them in order.
type Manager struct {
	reg     *registry.Registry[Constructor]
	deps    Deps
	configs map[string]config.MiddlewareConfig
	entries []Entry
}

// NewManager creates a manager. A nil registry uses NewRegistry.
func NewManager(reg *registry.Registry[Constructor], deps Deps) *Manager {
	if reg == nil {
		reg = NewRegistry()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Manager{reg: reg, deps: deps, configs: map[string]config.MiddlewareConfig{}}
}

// Add adds or replaces the entry called ident.
func (m *Manager) Add(ident string, cfg config.MiddlewareConfig) {
	m.configs[ident] = cfg
}

// AddAll adds every entry of cfgs.
func (m *Manager) AddAll(cfgs map[string]config.MiddlewareConfig) {
	maps.Copy(m.configs, cfgs)
}

// typeOf returns the "type" option, defaulting to the ident.
func typeOf(ident string, cfg config.MiddlewareConfig) (string, error) {
	raw, ok := cfg.Options["type"]
	if !ok {
		return ident, nil
	}
	typ, ok := raw.(string)
	if !ok || typ == "" {
		return "", fmt.Errorf("%w: middleware %q type must be a string", errz.ErrInvalidType, ident)
	}
	return typ, nil
}

// Build creates the active middlewares sorted by priority, then ident.
func (m *Manager) Build() ([]Entry, error) {
	idents := slices.Collect(maps.Keys(m.configs))
	slices.SortFunc(idents, func(a, b string) int {
		return cmp.Or(cmp.Compare(m.configs[a].Priority, m.configs[b].Priority), cmp.Compare(a, b))
	})

	entries := make([]Entry, 0, len(idents))
	for _, ident := range idents {
		cfg := m.configs[ident]
		if !cfg.IsActive() {
			continue
		}
		typ, err := typeOf(ident, cfg)
		if err != nil {
			return nil, err
		}
		ctor, err := m.reg.Resolve(typ)
		if err != nil {
			return nil, fmt.Errorf("middleware %q: %w", ident, err)
		}
		inst, err := ctor(ident, cfg, Deps{
			Logger:    m.deps.Logger.With("middleware", ident),
			Container: m.deps.Container,
		})
		if err != nil {
			return nil, fmt.Errorf("middleware %q: %w", ident, err)
		}
		m.deps.Logger.Debug("Loaded middleware", "ident", ident, "type", typ, "priority", cfg.Priority)
		entries = append(entries, Entry{Ident: ident, Type: typ, Priority: cfg.Priority, Instance: inst})
	}
	m.entries = entries
	return slices.Clone(entries), nil
}

// Entries returns the entries of the last Build.
func (m *Manager) Entries() []Entry {
	return slices.Clone(m.entries)
}

// Chain returns the go-supervisor handler funcs of the last Build.
func (m *Manager) Chain() []httpserver.HandlerFunc {
	var out []httpserver.HandlerFunc
	for _, e := range m.entries {
		if mw := e.Instance.Middleware(); mw != nil {
			out = append(out, mw)
		}
	}
	return out
}

// Apply registers the router middlewares and endpoints of the last Build.
func (m *Manager) Apply(router *mux.Router) {
	for _, e := range m.entries {
		if rr, ok := e.Instance.(RouteRegistrar); ok {
			rr.RegisterRoutes(router)
		}
		if rm, ok := e.Instance.(RouterMiddleware); ok {
			router.Use(rm.RouterMiddleware())
		}
	}
}
