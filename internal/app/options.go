package app

import (
	"log/slog"

	"github.com/atlanticdynamic/kindling/internal/action"
	"github.com/atlanticdynamic/kindling/internal/container"
	"github.com/atlanticdynamic/kindling/internal/middleware"
	"github.com/atlanticdynamic/kindling/internal/module"
	"github.com/atlanticdynamic/kindling/internal/routable"
	"github.com/atlanticdynamic/kindling/internal/routes"
	"github.com/atlanticdynamic/kindling/internal/script"
	"github.com/atlanticdynamic/kindling/internal/server"
	"github.com/atlanticdynamic/kindling/internal/template"
	"github.com/atlanticdynamic/kindling/internal/view"
)

// Option configures an App.
type Option func(*App)

// WithLogger uses logger instead of the one built from config.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		if logger != nil {
			a.logHandler = logger.Handler()
		}
	}
}

// WithLogHandler uses h instead of the handler built from config.
func WithLogHandler(h slog.Handler) Option {
	return func(a *App) {
		a.logHandler = h
	}
}

// WithActions adds action controllers.
func WithActions(ctors map[string]action.Constructor) Option {
	return func(a *App) {
		for ident, ctor := range ctors {
			a.actions.Set(ident, ctor)
		}
	}
}

// WithTemplates adds template controllers.
func WithTemplates(ctors map[string]template.Constructor) Option {
	return func(a *App) {
		for ident, ctor := range ctors {
			a.templates.Set(ident, ctor)
		}
	}
}

// WithScripts adds scripts.
func WithScripts(ctors map[string]script.Constructor) Option {
	return func(a *App) {
		for ident, ctor := range ctors {
			a.scripts.Set(ident, ctor)
		}
	}
}

// WithModules adds module types.
func WithModules(ctors map[string]module.Constructor) Option {
	return func(a *App) {
		for ident, ctor := range ctors {
			a.modules.Set(ident, ctor)
		}
	}
}

// WithRoutables adds routable types.
func WithRoutables(ctors map[string]routable.Constructor) Option {
	return func(a *App) {
		for ident, ctor := range ctors {
			a.routables.Set(ident, ctor)
		}
	}
}

// WithMiddlewares adds middleware types.
func WithMiddlewares(ctors map[string]middleware.Constructor) Option {
	return func(a *App) {
		for ident, ctor := range ctors {
			a.middlewares.Set(ident, ctor)
		}
	}
}

// WithTemplComponents registers components on the templ engine.
func WithTemplComponents(components map[string]view.Component) Option {
	return func(a *App) {
		for ident, c := range components {
			a.components[ident] = c
		}
	}
}

// WithProviders registers extra providers after the built-in ones.
func WithProviders(providers ...container.ServiceProvider) Option {
	return func(a *App) {
		a.extraProviders = append(a.extraProviders, providers...)
	}
}

// WithMode sets the mode used by Setup.
func WithMode(mode routes.Mode) Option {
	return func(a *App) {
		a.mode = mode
	}
}

// WithAddress sets the listen address used by Run.
func WithAddress(addr string) Option {
	return func(a *App) {
		a.address = addr
	}
}

// WithTimeouts sets the HTTP server timeouts used by Run.
func WithTimeouts(t server.Timeouts) Option {
	return func(a *App) {
		a.timeouts = t
	}
}
