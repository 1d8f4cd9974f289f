// Package template holds the controllers that build view data for template
// routes.
package template

import (
	"log/slog"
	"maps"

	"github.com/atlanticdynamic/kindling/internal/config"
	"github.com/atlanticdynamic/kindling/internal/config/errz"
	"github.com/atlanticdynamic/kindling/internal/container"
	"github.com/atlanticdynamic/kindling/internal/registry"
)

// Template is the controller of one template render. A new instance is
// created for every request.
type Template interface {
	// SetData receives the route template_data merged with the path vars.
	SetData(data map[string]any) error
	// SetViewData records which template and engine render the controller.
	SetViewData(ident, engine string)
	// ViewData returns the data handed to the engine.
	ViewData() map[string]any
}

// Deps are handed to every constructor.
type Deps struct {
	Logger    *slog.Logger
	Container container.Resolver
}

// Constructor creates a template controller.
type Constructor func(deps Deps) (Template, error)

// ControllerGeneric is the controller used when no other one applies.
const ControllerGeneric = "generic"

// NewRegistry returns a registry holding the generic controller.
func NewRegistry() *registry.Registry[Constructor] {
	r := registry.New[Constructor]("template", errz.ErrUnknownController)
	r.Set(ControllerGeneric, NewGeneric)
	return r
}

// Generic exposes its data together with a few application values.
type Generic struct {
	cfg    *config.AppConfig
	data   map[string]any
	ident  string
	engine string
}

// NewGeneric is the Constructor of the generic controller.
func NewGeneric(deps Deps) (Template, error) {
	g := &Generic{data: map[string]any{}}
	if deps.Container != nil {
		if cfg, err := container.Resolve[*config.AppConfig](deps.Container, config.ServiceName); err == nil {
			g.cfg = cfg
		}
	}
	return g, nil
}

func (g *Generic) SetData(data map[string]any) error {
	g.data = maps.Clone(data)
	if g.data == nil {
		g.data = map[string]any{}
	}
	return nil
}

func (g *Generic) SetViewData(ident, engine string) {
	g.ident = ident
	g.engine = engine
}

func (g *Generic) ViewData() map[string]any {
	out := maps.Clone(g.data)
	out["template_ident"] = g.ident
	out["engine_type"] = g.engine
	if g.cfg != nil {
		out["project_name"] = g.cfg.DisplayName()
		out["dev_mode"] = g.cfg.DevMode
		out["base_url"] = g.cfg.BaseURL
	}
	return out
}
