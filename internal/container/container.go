// Package container is a small lazy service container. Services are registered as
// factories and built on first use; each service is built at most once.
package container

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

var (
	ErrServiceNotFound    = errors.New("service not found")
	ErrCircularDependency = errors.New("circular dependency")
	ErrAlreadyResolved    = errors.New("service already resolved")
	ErrWrongType          = errors.New("service has unexpected type")
)

// Resolver looks up services. Factories receive a Resolver that tracks the
// current resolution chain so cycles fail instead of deadlocking.
type Resolver interface {
	Get(name string) (any, error)
}

// Factory builds one service.
type Factory func(r Resolver) (any, error)

// ServiceProvider registers a group of related services.
type ServiceProvider interface {
	Register(c *Container) error
}

type entry struct {
	mu      sync.Mutex
	factory Factory
	value   any
	done    bool
}

// Container holds service factories and their memoized results.
type Container struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

var _ Resolver = (*Container)(nil)

// New returns an empty container.
func New() *Container {
	return &Container{entries: make(map[string]*entry)}
}

// Set registers a factory under name, replacing any previous registration.
func (c *Container) Set(name string, factory Factory) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[name] = &entry{factory: factory}
}

// Value registers an already built service.
func (c *Container) Value(name string, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[name] = &entry{value: v, done: true}
}

// Extend wraps the factory of an unresolved service. fn receives the value built
// by the previous factory and returns the replacement.
func (c *Container) Extend(name string, fn func(v any, r Resolver) (any, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrServiceNotFound, name)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.done {
		return fmt.Errorf("%w: %s", ErrAlreadyResolved, name)
	}

	inner := e.factory
	c.entries[name] = &entry{factory: func(r Resolver) (any, error) {
		v, err := inner(r)
		if err != nil {
			return nil, err
		}
		return fn(v, r)
	}}
	return nil
}

// Has reports whether name is registered.
func (c *Container) Has(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[name]
	return ok
}

// Keys returns the registered service names, sorted.
func (c *Container) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Sorted(maps.Keys(c.entries))
}

// Register runs each provider in order, stopping at the first error.
func (c *Container) Register(providers ...ServiceProvider) error {
	for _, p := range providers {
		if err := p.Register(c); err != nil {
			return fmt.Errorf("register %T: %w", p, err)
		}
	}
	return nil
}

// Get resolves name, building it on first use.
func (c *Container) Get(name string) (any, error) {
	return c.resolve(name, []string{name})
}

func (c *Container) resolve(name string, chain []string) (any, error) {
	c.mu.RLock()
	e, ok := c.entries[name]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrServiceNotFound, name)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.done {
		return e.value, nil
	}

	v, err := e.factory(&chainResolver{c: c, chain: chain})
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", name, err)
	}
	e.value, e.done = v, true
	return v, nil
}

type chainResolver struct {
	c     *Container
	chain []string
}

func (r *chainResolver) Get(name string) (any, error) {
	if slices.Contains(r.chain, name) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrCircularDependency, strings.Join(r.chain, " -> "), name)
	}
	return r.c.resolve(name, append(slices.Clone(r.chain), name))
}

// Resolve gets name from r and asserts its type.
func Resolve[T any](r Resolver, name string) (T, error) {
	var zero T
	v, err := r.Get(name)
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s is %T, want %T", ErrWrongType, name, v, zero)
	}
	return typed, nil
}
