// Package module composes bundles of routes and middlewares into the app.
package module

import (
	"context"
	"fmt"
	"log/slog"
	"maps"

	"github.com/atlanticdynamic/kindling/internal/config"
	"github.com/atlanticdynamic/kindling/internal/config/errz"
	"github.com/atlanticdynamic/kindling/internal/container"
	"github.com/atlanticdynamic/kindling/internal/middleware"
	"github.com/atlanticdynamic/kindling/internal/registry"
	"github.com/atlanticdynamic/kindling/internal/routes"
)

// Host is the part of the app a module may extend.
type Host interface {
	Mode() routes.Mode
	Middlewares() *middleware.Manager
	RouteDeps() routes.Deps
	AddRoutes(infos ...routes.Info)
}

// Module is set up once per boot and then discarded.
type Module interface {
	Ident() string
	// Config returns the module defaults. The app config is merged into it
	// before Setup.
	Config() *config.ModuleConfig
	Setup(ctx context.Context, host Host) error
}

// Deps are handed to every constructor.
type Deps struct {
	Logger    *slog.Logger
	Container container.Resolver
}

// Constructor creates the module called ident.
type Constructor func(ident string, deps Deps) (Module, error)

// TypeGeneric is a module that only contributes its configured routes and
// middlewares.
const TypeGeneric = "generic"

// NewRegistry returns a registry holding the generic module.
func NewRegistry() *registry.Registry[Constructor] {
	r := registry.New[Constructor]("module", errz.ErrUnknownModule)
	r.Set(TypeGeneric, func(ident string, deps Deps) (Module, error) {
		return NewBase(ident, deps.Logger), nil
	})
	return r
}

// MergeConfig merges src into dst: routes and middlewares per ident, data per key.
func MergeConfig(dst *config.ModuleConfig, src config.ModuleConfig) {
	dst.Routes.Templates = mergeMap(dst.Routes.Templates, src.Routes.Templates)
	dst.Routes.Actions = mergeMap(dst.Routes.Actions, src.Routes.Actions)
	dst.Routes.Scripts = mergeMap(dst.Routes.Scripts, src.Routes.Scripts)
	dst.Middlewares = mergeMap(dst.Middlewares, src.Middlewares)
	dst.Data = mergeMap(dst.Data, src.Data)
}

func mergeMap[V any](dst, src map[string]V) map[string]V {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]V, len(src))
	}
	maps.Copy(dst, src)
	return dst
}

// moduleType returns the "type" data key, defaulting to the ident.
func moduleType(ident string, cfg config.ModuleConfig) (string, error) {
	raw, ok := cfg.Data["type"]
	if !ok {
		return ident, nil
	}
	typ, ok := raw.(string)
	if !ok || typ == "" {
		return "", fmt.Errorf("%w: module %q type must be a string", errz.ErrInvalidType, ident)
	}
	return typ, nil
}
