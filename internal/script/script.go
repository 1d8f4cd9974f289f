// Package script holds the command line scripts dispatched by script routes.
package script

import (
	"context"
	"errors"
	"log/slog"

	"github.com/atlanticdynamic/kindling/internal/config/errz"
	"github.com/atlanticdynamic/kindling/internal/container"
	"github.com/atlanticdynamic/kindling/internal/registry"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidChoice   = errors.New("invalid choice")
)

// Script is one command line task.
type Script interface {
	Ident() string
	Description() string
	// Arguments lists the accepted flags in declaration order.
	Arguments() []NamedArgument
	// SetData receives the route script_data merged with the path vars.
	SetData(data map[string]any) error
	Run(ctx context.Context, inv *Invocation) error
}

// Deps are handed to every constructor.
type Deps struct {
	Logger    *slog.Logger
	Container container.Resolver
}

// Constructor creates a script.
type Constructor func(deps Deps) (Script, error)

// Built-in script idents
const (
	ScriptEcho = "echo"
	ScriptEval = "eval"
)

// NewRegistry returns a registry holding the built-in scripts.
func NewRegistry() *registry.Registry[Constructor] {
	r := registry.New[Constructor]("script", errz.ErrUnknownController)
	r.Set(ScriptEcho, NewEcho)
	r.Set(ScriptEval, NewEval)
	return r
}
