package middleware

import (
	"fmt"
	"slices"
	"strings"

	"github.com/robbyt/go-supervisor/runnables/httpserver"

	"github.com/atlanticdynamic/kindling/internal/config"
	"github.com/atlanticdynamic/kindling/internal/config/errz"
	"github.com/atlanticdynamic/kindling/internal/container"
	"github.com/atlanticdynamic/kindling/internal/handler"
	"github.com/atlanticdynamic/kindling/internal/translator"
)

// Maintenance answers every request with the shutdown page, except for
// paths under one of the allow prefixes.
type Maintenance struct {
	allow    []string
	shutdown *handler.Shutdown
}

// NewMaintenance is the Constructor of the maintenance middleware. It uses
// the "translator" service when the container has one.
func NewMaintenance(ident string, cfg config.MiddlewareConfig, deps Deps) (Instance, error) {
	allow, err := stringList(cfg.Options["allow"])
	if err != nil {
		return nil, fmt.Errorf("%w: %s allow: %w", errz.ErrInvalidType, ident, err)
	}

	var tr *translator.Translator
	if deps.Container != nil {
		if t, err := container.Resolve[*translator.Translator](deps.Container, translator.ServiceName); err == nil {
			tr = t
		} else {
			deps.Logger.Debug("Maintenance page uses built-in messages", "reason", err)
		}
	}

	shutdown, err := handler.NewShutdown(tr)
	if err != nil {
		return nil, err
	}
	return &Maintenance{allow: allow, shutdown: shutdown}, nil
}

// Middleware returns the middleware function
func (m *Maintenance) Middleware() httpserver.HandlerFunc {
	return func(rp *httpserver.RequestProcessor) {
		r := rp.Request()
		if slices.ContainsFunc(m.allow, func(p string) bool { return strings.HasPrefix(r.URL.Path, p) }) {
			rp.Next()
			return
		}
		m.shutdown.ServeHTTP(rp.Writer(), r)
	}
}
