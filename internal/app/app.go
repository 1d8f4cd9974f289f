// Package app wires configuration, services, routes and modules into a
// runnable application.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/gorilla/mux"
	"github.com/robbyt/go-loglater"
	"github.com/robbyt/go-supervisor/runnables/httpserver"
	"github.com/robbyt/go-supervisor/supervisor"

	"github.com/atlanticdynamic/kindling/internal/action"
	"github.com/atlanticdynamic/kindling/internal/cache"
	"github.com/atlanticdynamic/kindling/internal/config"
	"github.com/atlanticdynamic/kindling/internal/config/errz"
	"github.com/atlanticdynamic/kindling/internal/container"
	"github.com/atlanticdynamic/kindling/internal/handler"
	"github.com/atlanticdynamic/kindling/internal/middleware"
	"github.com/atlanticdynamic/kindling/internal/module"
	"github.com/atlanticdynamic/kindling/internal/providers"
	"github.com/atlanticdynamic/kindling/internal/registry"
	"github.com/atlanticdynamic/kindling/internal/routable"
	"github.com/atlanticdynamic/kindling/internal/routes"
	"github.com/atlanticdynamic/kindling/internal/script"
	"github.com/atlanticdynamic/kindling/internal/server"
	"github.com/atlanticdynamic/kindling/internal/template"
	"github.com/atlanticdynamic/kindling/internal/view"
)

var (
	ErrAlreadySetup = errors.New("app is already set up")
	ErrNotSetup     = errors.New("app is not set up")
	ErrWrongMode    = errors.New("app was set up in another mode")
	ErrSetupFailed  = errors.New("app setup failed earlier")
)

// KindRoutable marks the catch-all route in Routes.
const KindRoutable = "routable"

// DefaultAddress is the listen address of Run.
const DefaultAddress = ":8080"

var _ module.Host = (*App)(nil)

// App is one configured application. It is built with New and set up once.
type App struct {
	cfg  *config.AppConfig
	id   uuid.UUID
	mode routes.Mode

	container      *container.Container
	extraProviders []container.ServiceProvider
	providers      []container.ServiceProvider
	logHandler     slog.Handler
	components     map[string]view.Component

	boot   *loglater.LogCollector
	logger *slog.Logger

	actions     *registry.Registry[action.Constructor]
	templates   *registry.Registry[template.Constructor]
	scripts     *registry.Registry[script.Constructor]
	modules     *registry.Registry[module.Constructor]
	routables   *registry.Registry[routable.Constructor]
	middlewares *registry.Registry[middleware.Constructor]

	router      *mux.Router
	mwManager   *middleware.Manager
	routeDeps   routes.Deps
	routes      []routes.Info
	httpHandler http.Handler
	location    *time.Location

	address  string
	timeouts server.Timeouts

	mu       sync.Mutex
	setup    bool
	setupErr error
}

// New creates an app over cfg. Nothing is built until Setup.
func New(cfg *config.AppConfig, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: nil config")
	}
	id, err := uuid.NewV6()
	if err != nil {
		return nil, fmt.Errorf("app: failed to create boot id: %w", err)
	}

	boot := loglater.NewLogCollector(nil)
	a := &App{
		cfg:         cfg,
		id:          id,
		mode:        routes.ModeWeb,
		container:   container.New(),
		components:  map[string]view.Component{},
		boot:        boot,
		logger:      slog.New(boot).With("boot_id", id.String()),
		actions:     action.NewRegistry(),
		templates:   template.NewRegistry(),
		scripts:     script.NewRegistry(),
		modules:     module.NewRegistry(),
		routables:   routable.NewRegistry(),
		middlewares: middleware.NewRegistry(),
		router:      mux.NewRouter(),
		address:     DefaultAddress,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger.Info("Kindling app created", "mode", a.mode, "base_path", cfg.BasePath)
	return a, nil
}

func (a *App) ID() uuid.UUID { return a.id }

func (a *App) Config() *config.AppConfig { return a.cfg }

func (a *App) Container() *container.Container { return a.container }

func (a *App) Logger() *slog.Logger { return a.logger }

func (a *App) Router() *mux.Router { return a.router }

func (a *App) Mode() routes.Mode { return a.mode }

// Location is the configured timezone, set during Setup.
func (a *App) Location() *time.Location { return a.location }

func (a *App) Middlewares() *middleware.Manager { return a.mwManager }

func (a *App) RouteDeps() routes.Deps { return a.routeDeps }

func (a *App) AddRoutes(infos ...routes.Info) {
	a.routes = append(a.routes, infos...)
}

// Routes returns every registered route in registration order.
func (a *App) Routes() []routes.Info {
	return slices.Clone(a.routes)
}

// IsSetup reports whether Setup has completed.
func (a *App) IsSetup() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.setup
}

// Setup builds services, routes, modules and the catch-all chain. It may
// only be called once. After a failed Setup the app is unusable and every
// later call returns ErrSetupFailed.
func (a *App) Setup(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.setup {
		return ErrAlreadySetup
	}
	if a.setupErr != nil {
		return fmt.Errorf("%w: %w", ErrSetupFailed, a.setupErr)
	}

	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"providers", a.setupProviders},
		{"logger", a.setupLogger},
		{"middlewares", a.setupMiddlewares},
		{"routes", a.setupRoutes},
		{"modules", a.setupModules},
		{"middleware chain", a.buildMiddlewares},
		{"routables", a.setupRoutables},
		{"timezone", a.setupTimezone},
	}
	for _, step := range steps {
		if err := step.fn(ctx); err != nil {
			a.setupErr = fmt.Errorf("failed to set up %s: %w", step.name, err)
			if cerr := a.Close(); cerr != nil {
				a.logger.Warn("Failed to close services", "error", cerr)
			}
			return a.setupErr
		}
	}
	a.setup = true
	a.logger.Info("Kindling app ready", "mode", a.mode, "routes", len(a.routes))
	return nil
}

func (a *App) setupProviders(context.Context) error {
	a.providers = providers.Defaults(a.cfg)
	for _, p := range a.providers {
		switch p := p.(type) {
		case *providers.LoggerProvider:
			p.Handler = a.logHandler
		case *providers.ViewProvider:
			p.Components = a.components
		}
	}
	a.providers = append(a.providers, a.extraProviders...)
	return a.container.Register(a.providers...)
}

func (a *App) setupLogger(context.Context) error {
	logger, err := container.Resolve[*slog.Logger](a.container, providers.ServiceLogger)
	if err != nil {
		return err
	}
	if err := a.boot.PlayLogs(logger.Handler()); err != nil {
		return fmt.Errorf("failed to replay boot logs: %w", err)
	}
	a.logger = logger.With("boot_id", a.id.String())
	a.logger.Debug("Kindling app init logger")
	return nil
}

func (a *App) setupMiddlewares(context.Context) error {
	a.mwManager = middleware.NewManager(a.middlewares, middleware.Deps{
		Logger:    a.logger,
		Container: a.container,
	})
	a.mwManager.AddAll(a.cfg.Middlewares)
	return nil
}

func (a *App) setupRoutes(context.Context) error {
	viewCfg, err := container.Resolve[config.ViewConfig](a.container, providers.ServiceViewConfig)
	if err != nil {
		return err
	}
	renderer, err := container.Resolve[*view.Renderer](a.container, providers.ServiceView)
	if err != nil {
		return err
	}
	pool, err := container.Resolve[cache.Pool](a.container, providers.ServiceCache)
	if err != nil {
		return err
	}

	a.routeDeps = routes.Deps{
		Router:    a.router,
		Logger:    a.logger,
		Container: a.container,
		View:      viewCfg,
		Renderer:  renderer,
		Cache:     pool,
		Actions:   a.actions,
		Templates: a.templates,
		Scripts:   a.scripts,
	}
	mgr := routes.NewManager(a.cfg.Routes, a.routeDeps)
	if err := mgr.SetupRoutes(a.mode); err != nil {
		return err
	}
	a.AddRoutes(mgr.Routes()...)
	return nil
}

func (a *App) setupModules(ctx context.Context) error {
	mgr := module.NewManager(a.modules, module.Deps{Logger: a.logger, Container: a.container})
	mgr.SetModules(a.cfg.Modules)
	return mgr.SetupModules(ctx, a)
}

// buildMiddlewares runs after modules so their entries join the chain.
func (a *App) buildMiddlewares(context.Context) error {
	if a.mode != routes.ModeWeb {
		return nil
	}
	if _, err := a.mwManager.Build(); err != nil {
		return err
	}
	a.mwManager.Apply(a.router)
	return nil
}

func (a *App) setupRoutables(context.Context) error {
	if a.mode != routes.ModeWeb {
		return nil
	}
	list, err := routable.Build(a.cfg.Routables, a.routables, routable.Deps{
		Logger:    a.logger,
		Container: a.container,
		Config:    a.cfg,
	})
	if err != nil {
		return err
	}
	notFound := handler.NotFound()
	chain := routable.NewChain(notFound, a.logger, list...)
	a.router.Handle(routable.CatchAllPath, chain).Methods(http.MethodGet).Name(routable.CatchAllName)
	a.router.NotFoundHandler = notFound
	a.AddRoutes(routes.Info{
		Kind:    KindRoutable,
		Ident:   routable.CatchAllName,
		Path:    routable.CatchAllPath,
		Methods: []string{http.MethodGet},
	})

	route, err := httpserver.NewRouteFromHandlerFunc("kindling", "/", a.router.ServeHTTP, a.mwManager.Chain()...)
	if err != nil {
		return err
	}
	a.httpHandler = route
	return nil
}

func (a *App) setupTimezone(context.Context) error {
	loc, err := time.LoadLocation(a.cfg.Timezone)
	if err != nil {
		return fmt.Errorf("%w: timezone %q: %w", errz.ErrInvalidValue, a.cfg.Timezone, err)
	}
	a.location = loc
	return nil
}

// Handler returns the router wrapped in the middleware chain. It is nil
// before a web mode Setup.
func (a *App) Handler() http.Handler {
	return a.httpHandler
}

// Run sets the app up if needed and serves HTTP until ctx is done.
func (a *App) Run(ctx context.Context) error {
	if !a.IsSetup() {
		if err := a.Setup(ctx); err != nil {
			return err
		}
	}
	if a.mode != routes.ModeWeb {
		return fmt.Errorf("%w: %s", ErrWrongMode, a.mode)
	}
	defer func() {
		if err := a.Close(); err != nil {
			a.logger.Warn("Failed to close services", "error", err)
		}
	}()

	if a.httpHandler == nil {
		return ErrNotSetup
	}
	srv, err := server.New(a.address, a.httpHandler, a.timeouts, a.logger)
	if err != nil {
		return err
	}
	go func() {
		if err := srv.WaitReady(ctx); err == nil {
			a.logger.Info("Kindling app listening", "address", srv.Addr())
		}
	}()
	super, err := supervisor.New(
		supervisor.WithRunnables(srv),
		supervisor.WithLogHandler(a.logger.Handler()),
		supervisor.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to create supervisor: %w", err)
	}
	return super.Run()
}

// RunScript sets the app up in CLI mode if needed and runs the script route
// matching path.
func (a *App) RunScript(ctx context.Context, path string, args []string, stdio script.Stdio) error {
	if !a.IsSetup() {
		a.mode = routes.ModeCLI
		if err := a.Setup(ctx); err != nil {
			return err
		}
	}
	if a.mode != routes.ModeCLI {
		return fmt.Errorf("%w: %s", ErrWrongMode, a.mode)
	}
	return routes.Dispatch(ctx, a.router, path, args, stdio)
}

// Close releases the resources opened by the providers.
func (a *App) Close() error {
	var errs []error
	for _, p := range a.providers {
		if c, ok := p.(io.Closer); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}
