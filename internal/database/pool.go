// Package database manages the named sql connections of an application.
// Connections are opened lazily on first use.
package database

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/atlanticdynamic/kindling/internal/config"
	"github.com/atlanticdynamic/kindling/internal/config/errz"
)

// Opener opens a sql handle. sqlx.Open is the default.
type Opener func(driver, dsn string) (*sqlx.DB, error)

// Pool hands out one shared handle per configured database.
type Pool struct {
	mu           sync.Mutex
	configs      map[string]config.DatabaseConfig
	defaultIdent string
	resolve      func(string) string
	open         Opener
	conns        map[string]*sqlx.DB
}

// Option configures a Pool.
type Option func(*Pool)

// WithOpener replaces the function used to open connections.
func WithOpener(open Opener) Option {
	return func(p *Pool) {
		p.open = open
	}
}

// NewPool creates a pool over the databases of cfg.
func NewPool(cfg *config.AppConfig, opts ...Option) *Pool {
	p := &Pool{
		configs:      maps.Clone(cfg.Databases),
		defaultIdent: cfg.DefaultDatabase,
		resolve:      cfg.ResolvePath,
		open:         sqlx.Open,
		conns:        make(map[string]*sqlx.DB),
	}
	if p.configs == nil {
		p.configs = map[string]config.DatabaseConfig{}
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Idents returns the configured database names in sorted order.
func (p *Pool) Idents() []string {
	return slices.Sorted(maps.Keys(p.configs))
}

// Get returns the handle for ident, opening it on first use.
func (p *Pool) Get(ident string) (*sqlx.DB, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if db, ok := p.conns[ident]; ok {
		return db, nil
	}
	cfg, ok := p.configs[ident]
	if !ok {
		return nil, fmt.Errorf("%w: No database configuration matches %q.", errz.ErrDatabaseNotFound, ident)
	}
	driver, dsn, err := DataSource(cfg, p.resolve)
	if err != nil {
		return nil, err
	}
	db, err := p.open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %q: %w", ident, err)
	}
	p.conns[ident] = db
	return db, nil
}

// Default returns the handle of the default database.
func (p *Pool) Default() (*sqlx.DB, error) {
	if p.defaultIdent == "" {
		return nil, fmt.Errorf("%w: Default database is not set.", errz.ErrDefaultDatabaseNotSet)
	}
	return p.Get(p.defaultIdent)
}

// Close closes every opened handle.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	for ident, db := range p.conns {
		if err := db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %q: %w", ident, err))
		}
	}
	clear(p.conns)
	return errors.Join(errs...)
}
