package view

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// HTMLEngine renders html/template files found under a list of directories.
// Ident "pages/home" with extension ".html" maps to <dir>/pages/home.html.
type HTMLEngine struct {
	paths     []string
	extension string
	cache     bool

	mu        sync.Mutex
	templates map[string]*template.Template
	funcs     template.FuncMap
}

// HTMLOption configures an HTMLEngine.
type HTMLOption func(*HTMLEngine)

// WithoutCache re-parses templates on every render.
func WithoutCache() HTMLOption {
	return func(e *HTMLEngine) {
		e.cache = false
	}
}

// WithFuncs adds template functions.
func WithFuncs(funcs template.FuncMap) HTMLOption {
	return func(e *HTMLEngine) {
		for k, v := range funcs {
			e.funcs[k] = v
		}
	}
}

// NewHTMLEngine creates an engine. Paths are searched in order.
func NewHTMLEngine(paths []string, extension string, opts ...HTMLOption) *HTMLEngine {
	e := &HTMLEngine{
		paths:     paths,
		extension: extension,
		cache:     true,
		templates: make(map[string]*template.Template),
		funcs:     template.FuncMap{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *HTMLEngine) Render(_ context.Context, w io.Writer, ident string, data map[string]any) error {
	tmpl, err := e.lookup(ident)
	if err != nil {
		return err
	}
	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render template %q: %w", ident, err)
	}
	return nil
}

func (e *HTMLEngine) lookup(ident string) (*template.Template, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if tmpl, ok := e.templates[ident]; ok {
		return tmpl, nil
	}
	path, err := e.find(ident)
	if err != nil {
		return nil, err
	}
	tmpl, err := template.New(filepath.Base(path)).Funcs(e.funcs).ParseFiles(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %q: %w", ident, err)
	}
	if e.cache {
		e.templates[ident] = tmpl
	}
	return tmpl, nil
}

func (e *HTMLEngine) find(ident string) (string, error) {
	clean := filepath.Clean("/" + strings.TrimSpace(ident))
	name := strings.TrimPrefix(clean, "/") + e.extension
	for _, dir := range e.paths {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrTemplateNotFound, ident)
}
