package view

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/a-h/templ"
)

// Component builds a templ component from template data.
type Component func(data map[string]any) templ.Component

// TemplEngine renders registered templ components by ident.
type TemplEngine struct {
	components map[string]Component
}

// NewTemplEngine creates an engine over the given components.
func NewTemplEngine(components map[string]Component) *TemplEngine {
	e := &TemplEngine{components: make(map[string]Component, len(components))}
	maps.Copy(e.components, components)
	return e
}

// Idents returns the registered component idents.
func (e *TemplEngine) Idents() []string {
	return slices.Sorted(maps.Keys(e.components))
}

func (e *TemplEngine) Render(ctx context.Context, w io.Writer, ident string, data map[string]any) error {
	build, ok := e.components[ident]
	if !ok {
		return fmt.Errorf("%w: %q", ErrTemplateNotFound, ident)
	}
	if err := build(data).Render(ctx, w); err != nil {
		return fmt.Errorf("failed to render component %q: %w", ident, err)
	}
	return nil
}
