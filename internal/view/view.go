// Package view renders templates through named engines.
package view

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/atlanticdynamic/kindling/internal/config/errz"
)

// ErrTemplateNotFound is returned when an engine has no template for an ident.
var ErrTemplateNotFound = errors.New("template not found")

// Engine renders one template ident with data.
type Engine interface {
	Render(ctx context.Context, w io.Writer, ident string, data map[string]any) error
}

// Renderer dispatches to engines by name.
type Renderer struct {
	engines       map[string]Engine
	defaultEngine string
}

// NewRenderer creates a renderer whose empty engine name means defaultEngine.
func NewRenderer(defaultEngine string) *Renderer {
	return &Renderer{
		engines:       make(map[string]Engine),
		defaultEngine: defaultEngine,
	}
}

// AddEngine registers or replaces the engine called name.
func (r *Renderer) AddEngine(name string, e Engine) {
	r.engines[name] = e
}

// Engines returns the registered engine names.
func (r *Renderer) Engines() []string {
	return slices.Sorted(maps.Keys(r.engines))
}

// Engine returns the engine called name.
func (r *Renderer) Engine(name string) (Engine, error) {
	if name == "" {
		name = r.defaultEngine
	}
	e, ok := r.engines[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errz.ErrUnknownEngine, name)
	}
	return e, nil
}

// Render writes the template ident rendered by engine to w.
func (r *Renderer) Render(ctx context.Context, w io.Writer, engine, ident string, data map[string]any) error {
	e, err := r.Engine(engine)
	if err != nil {
		return err
	}
	return e.Render(ctx, w, ident, data)
}

// RenderBytes renders into a buffer so nothing is written on failure.
func (r *Renderer) RenderBytes(ctx context.Context, engine, ident string, data map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Render(ctx, &buf, engine, ident, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
