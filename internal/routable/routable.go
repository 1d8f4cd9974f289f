// Package routable implements the catch-all chain that serves requests no
// configured route matched.
package routable

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/atlanticdynamic/kindling/internal/config"
	"github.com/atlanticdynamic/kindling/internal/config/errz"
	"github.com/atlanticdynamic/kindling/internal/container"
	"github.com/atlanticdynamic/kindling/internal/registry"
)

// CatchAllName is the mux route name of the catch-all route.
const CatchAllName = "catchall"

// CatchAllPath matches every path.
const CatchAllPath = "/{" + CatchAllName + ":.*}"

// Routable claims a request path or passes.
type Routable interface {
	RouteHandler(path string, r *http.Request) (http.Handler, bool)
}

// Func adapts a function to Routable.
type Func func(path string, r *http.Request) (http.Handler, bool)

func (f Func) RouteHandler(path string, r *http.Request) (http.Handler, bool) {
	return f(path, r)
}

// Deps are handed to every constructor.
type Deps struct {
	Logger    *slog.Logger
	Container container.Resolver
	Config    *config.AppConfig
}

// Constructor creates a routable from its config entry.
type Constructor func(cfg config.RoutableConfig, deps Deps) (Routable, error)

// Built-in routable types
const TypeStatic = "static"

// NewRegistry returns a registry holding the built-in routables.
func NewRegistry() *registry.Registry[Constructor] {
	r := registry.New[Constructor]("routable", errz.ErrUnknownRoutable)
	r.Set(TypeStatic, NewStatic)
	return r
}

// Chain asks each routable in order and serves the first match. Unmatched
// requests go to the not-found handler.
type Chain struct {
	routables []Routable
	notFound  http.Handler
	logger    *slog.Logger
}

// NewChain creates a chain. A nil notFound uses http.NotFoundHandler.
func NewChain(notFound http.Handler, logger *slog.Logger, routables ...Routable) *Chain {
	if notFound == nil {
		notFound = http.NotFoundHandler()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Chain{routables: routables, notFound: notFound, logger: logger}
}

// Add appends a routable to the end of the chain.
func (c *Chain) Add(r Routable) {
	c.routables = append(c.routables, r)
}

// Len returns the number of routables.
func (c *Chain) Len() int {
	return len(c.routables)
}

func (c *Chain) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if v, ok := mux.Vars(r)[CatchAllName]; ok {
		path = "/" + v
	}
	for i, rt := range c.routables {
		if h, ok := rt.RouteHandler(path, r); ok {
			c.logger.Debug("Routable matched", "path", path, "index", i)
			h.ServeHTTP(w, r)
			return
		}
	}
	c.notFound.ServeHTTP(w, r)
}

// Build creates the routables of entries in order.
func Build(entries []config.RoutableConfig, reg *registry.Registry[Constructor], deps Deps) ([]Routable, error) {
	out := make([]Routable, 0, len(entries))
	for _, entry := range entries {
		ctor, err := reg.Resolve(entry.Type)
		if err != nil {
			return nil, err
		}
		rt, err := ctor(entry, deps)
		if err != nil {
			return nil, err
		}
		out = append(out, rt)
	}
	return out, nil
}
