// Package action holds the controllers behind action routes.
package action

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/atlanticdynamic/kindling/internal/config/errz"
	"github.com/atlanticdynamic/kindling/internal/container"
	"github.com/atlanticdynamic/kindling/internal/registry"
)

// Action handles one request of an action route. A new instance is created
// for every request.
type Action interface {
	// SetData receives the route action_data merged with the path vars.
	SetData(data map[string]any) error
	HandleHTTP(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

// Deps are handed to every constructor.
type Deps struct {
	Logger    *slog.Logger
	Container container.Resolver
}

// Constructor creates an action.
type Constructor func(deps Deps) (Action, error)

// Built-in controller idents
const (
	ControllerEcho   = "echo"
	ControllerScript = "script"
)

// NewRegistry returns a registry holding the built-in actions.
func NewRegistry() *registry.Registry[Constructor] {
	r := registry.New[Constructor]("action", errz.ErrUnknownController)
	r.Set(ControllerEcho, NewEcho)
	r.Set(ControllerScript, NewScriptConstructor())
	return r
}
