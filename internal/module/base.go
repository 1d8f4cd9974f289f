package module

import (
	"context"
	"log/slog"

	"github.com/atlanticdynamic/kindling/internal/config"
	"github.com/atlanticdynamic/kindling/internal/routes"
)

// Base registers the module's middlewares and routes. Modules embed it and
// call its Setup from their own.
type Base struct {
	ident  string
	cfg    config.ModuleConfig
	logger *slog.Logger
}

// NewBase creates a module with an empty config.
func NewBase(ident string, logger *slog.Logger) *Base {
	if logger == nil {
		logger = slog.Default()
	}
	return &Base{ident: ident, logger: logger.With("module", ident)}
}

func (b *Base) Ident() string { return b.ident }

func (b *Base) Config() *config.ModuleConfig { return &b.cfg }

func (b *Base) Logger() *slog.Logger { return b.logger }

// Setup runs SetupMiddlewares then SetupRoutes.
func (b *Base) Setup(ctx context.Context, host Host) error {
	b.SetupMiddlewares(host)
	return b.SetupRoutes(ctx, host)
}

// SetupMiddlewares adds the module middlewares to the host chain.
func (b *Base) SetupMiddlewares(host Host) {
	if len(b.cfg.Middlewares) == 0 {
		return
	}
	host.Middlewares().AddAll(b.cfg.Middlewares)
}

// SetupRoutes registers the module routes through a new route manager.
func (b *Base) SetupRoutes(_ context.Context, host Host) error {
	if b.cfg.Routes.IsEmpty() {
		return nil
	}
	deps := host.RouteDeps()
	deps.Logger = b.logger
	mgr := routes.NewManager(b.cfg.Routes, deps)
	if err := mgr.SetupRoutes(host.Mode()); err != nil {
		return err
	}
	host.AddRoutes(mgr.Routes()...)
	return nil
}
