// Package registry maps string idents to constructors. Route controllers, modules,
// routables and middlewares are all resolved through one of these at setup time.
package registry

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
)

var (
	ErrEmptyIdent    = errors.New("empty ident")
	ErrDuplicate     = errors.New("already registered")
	ErrNotRegistered = errors.New("not registered")
)

// Registry is a concurrency safe ident -> T map.
type Registry[T any] struct {
	kind     string
	notFound error
	mu       sync.RWMutex
	items    map[string]T
}

// New creates a registry. kind names the entries in errors, and notFound, when
// not nil, is wrapped by Resolve alongside ErrNotRegistered.
func New[T any](kind string, notFound error) *Registry[T] {
	return &Registry[T]{
		kind:     kind,
		notFound: notFound,
		items:    make(map[string]T),
	}
}

// Register adds an entry, failing on an empty or duplicate ident.
func (r *Registry[T]) Register(ident string, item T) error {
	if ident == "" {
		return fmt.Errorf("%w: %s", ErrEmptyIdent, r.kind)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.items[ident]; exists {
		return fmt.Errorf("%w: %s %q", ErrDuplicate, r.kind, ident)
	}
	r.items[ident] = item
	return nil
}

// Set adds or replaces an entry.
func (r *Registry[T]) Set(ident string, item T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[ident] = item
}

// Get returns the entry for ident.
func (r *Registry[T]) Get(ident string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[ident]
	return item, ok
}

// Resolve returns the entry for ident or a descriptive error.
func (r *Registry[T]) Resolve(ident string) (T, error) {
	item, ok := r.Get(ident)
	if ok {
		return item, nil
	}
	if r.notFound != nil {
		return item, fmt.Errorf("%w: %w: %s %q", r.notFound, ErrNotRegistered, r.kind, ident)
	}
	return item, fmt.Errorf("%w: %s %q", ErrNotRegistered, r.kind, ident)
}

// Has reports whether ident is registered.
func (r *Registry[T]) Has(ident string) bool {
	_, ok := r.Get(ident)
	return ok
}

// Idents returns every registered ident, sorted.
func (r *Registry[T]) Idents() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.items))
}

// Len returns the number of entries.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// Merge copies every entry of other into r, replacing entries with the same ident.
func (r *Registry[T]) Merge(other *Registry[T]) {
	if other == nil || other == r {
		return
	}
	other.mu.RLock()
	snapshot := maps.Clone(other.items)
	other.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	maps.Copy(r.items, snapshot)
}
