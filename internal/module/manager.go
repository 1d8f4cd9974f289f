package module

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/atlanticdynamic/kindling/internal/config"
	"github.com/atlanticdynamic/kindling/internal/registry"
)

// Manager creates and sets up the configured modules.
type Manager struct {
	reg     *registry.Registry[Constructor]
	deps    Deps
	modules map[string]config.ModuleConfig
	done    []string
}

// NewManager creates a manager. A nil registry uses NewRegistry.
func NewManager(reg *registry.Registry[Constructor], deps Deps) *Manager {
	if reg == nil {
		reg = NewRegistry()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Manager{reg: reg, deps: deps, modules: map[string]config.ModuleConfig{}}
}

// SetModules replaces the module map.
func (m *Manager) SetModules(modules map[string]config.ModuleConfig) {
	m.modules = maps.Clone(modules)
	if m.modules == nil {
		m.modules = map[string]config.ModuleConfig{}
	}
}

// AddModule adds or replaces one module.
func (m *Manager) AddModule(ident string, cfg config.ModuleConfig) {
	m.modules[ident] = cfg
}

// Modules returns the idents that were set up, in order.
func (m *Manager) Modules() []string {
	return slices.Clone(m.done)
}

// SetupModules sets up every module in ident order.
func (m *Manager) SetupModules(ctx context.Context, host Host) error {
	for _, ident := range slices.Sorted(maps.Keys(m.modules)) {
		if err := m.setup(ctx, host, ident, m.modules[ident]); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) setup(ctx context.Context, host Host, ident string, cfg config.ModuleConfig) error {
	typ, err := moduleType(ident, cfg)
	if err != nil {
		return err
	}
	ctor, err := m.reg.Resolve(typ)
	if err != nil {
		return fmt.Errorf("module %q: %w", ident, err)
	}
	mod, err := ctor(ident, m.deps)
	if err != nil {
		return fmt.Errorf("module %q: %w", ident, err)
	}
	MergeConfig(mod.Config(), cfg)
	if err := mod.Setup(ctx, host); err != nil {
		return fmt.Errorf("module %q setup: %w", ident, err)
	}
	m.deps.Logger.Debug("Loaded module", "ident", ident, "type", typ)
	m.done = append(m.done, ident)
	return nil
}
