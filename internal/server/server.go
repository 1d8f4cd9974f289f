// Package server serves an application handler as a go-supervisor runnable.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/robbyt/go-supervisor/runnables/httpserver"
	"github.com/robbyt/go-supervisor/supervisor"
)

var (
	_ supervisor.Runnable  = (*Server)(nil)
	_ supervisor.Stateable = (*Server)(nil)
)

// StateRunning is the runner state once the listener accepts connections.
const StateRunning = "Running"

// Timeouts of the HTTP server. Zero values keep the go-supervisor defaults.
type Timeouts struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	DrainTimeout time.Duration
}

func (t Timeouts) options() []httpserver.ConfigOption {
	var opts []httpserver.ConfigOption
	if t.ReadTimeout > 0 {
		opts = append(opts, httpserver.WithReadTimeout(t.ReadTimeout))
	}
	if t.WriteTimeout > 0 {
		opts = append(opts, httpserver.WithWriteTimeout(t.WriteTimeout))
	}
	if t.IdleTimeout > 0 {
		opts = append(opts, httpserver.WithIdleTimeout(t.IdleTimeout))
	}
	if t.DrainTimeout > 0 {
		opts = append(opts, httpserver.WithDrainTimeout(t.DrainTimeout))
	}
	return opts
}

// stateRunner is what Server needs from httpserver.Runner.
type stateRunner interface {
	Run(ctx context.Context) error
	Stop()
	GetState() string
	GetStateChan(ctx context.Context) <-chan string
}

// Server answers every path on one address with a single handler.
type Server struct {
	addr   string
	logger *slog.Logger
	runner stateRunner
}

// New creates a server for h on addr. A go-supervisor route keeps its own
// middleware chain; any other handler is mounted at "/".
func New(addr string, h http.Handler, timeouts Timeouts, logger *slog.Logger) (*Server, error) {
	if h == nil {
		return nil, fmt.Errorf("server: nil handler")
	}
	if logger == nil {
		logger = slog.Default()
	}

	route, ok := h.(*httpserver.Route)
	if !ok {
		var err error
		if route, err = httpserver.NewRouteFromHandlerFunc("app", "/", h.ServeHTTP); err != nil {
			return nil, fmt.Errorf("failed to create route: %w", err)
		}
	}
	routes := []httpserver.Route{*route}
	opts := timeouts.options()

	r, err := httpserver.NewRunner(httpserver.WithConfigCallback(func() (*httpserver.Config, error) {
		return httpserver.NewConfig(addr, routes, opts...)
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP runner: %w", err)
	}
	return &Server{addr: addr, logger: logger.WithGroup("server"), runner: r}, nil
}

func (s *Server) String() string {
	return "Server[" + s.addr + "]"
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.addr
}

// Run serves until ctx is done or the listener fails.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("Starting HTTP server", "address", s.addr)
	return s.runner.Run(ctx)
}

func (s *Server) Stop() {
	s.logger.Info("Stopping HTTP server", "address", s.addr)
	s.runner.Stop()
}

func (s *Server) GetState() string {
	return s.runner.GetState()
}

func (s *Server) GetStateChan(ctx context.Context) <-chan string {
	return s.runner.GetStateChan(ctx)
}

// IsRunning reports whether the listener is up.
func (s *Server) IsRunning() bool {
	return s.runner.GetState() == StateRunning
}

// WaitReady blocks until the server is running or ctx is done.
func (s *Server) WaitReady(ctx context.Context) error {
	if s.IsRunning() {
		return nil
	}
	states := s.runner.GetStateChan(ctx)
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("server %s not ready: %w", s.addr, ctx.Err())
		case state, ok := <-states:
			if !ok {
				return fmt.Errorf("server %s not ready: %w", s.addr, context.Cause(ctx))
			}
			if state == StateRunning {
				return nil
			}
		}
	}
}
