package routes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/atlanticdynamic/kindling/internal/config"
	"github.com/atlanticdynamic/kindling/internal/script"
)

// ErrScriptNotFound is returned when no script route matches a path.
var ErrScriptNotFound = errors.New("no script route matches")

// ScriptRoute runs a script from the command line.
type ScriptRoute struct {
	cfg       config.ScriptRouteConfig
	newScript script.Constructor
	deps      script.Deps
	logger    *slog.Logger
}

// ServeHTTP refuses the request; script routes only run from the command line.
func (s *ScriptRoute) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	http.Error(w, "script routes run from the command line", http.StatusMethodNotAllowed)
}

// Run creates the script, hands it the script data merged with vars, then
// runs it with args.
func (s *ScriptRoute) Run(ctx context.Context, vars map[string]string, args []string, stdio script.Stdio) error {
	s.logger.Debug("Loaded script route", "ident", s.cfg.Ident, "controller", s.cfg.ControllerIdent())

	sc, err := s.newScript(s.deps)
	if err != nil {
		return err
	}
	if err := sc.SetData(withVars(s.cfg.ScriptData, vars)); err != nil {
		return err
	}
	return script.Execute(ctx, sc, args, stdio, s.logger)
}

// errMatched stops the route walk of Dispatch.
var errMatched = errors.New("matched")

// Dispatch matches path against the script routes of router and runs the
// first one registered that matches. Only the path is compared; each route
// is tried with its own first method.
func Dispatch(ctx context.Context, router *mux.Router, path string, args []string, stdio script.Stdio) error {
	path = "/" + strings.TrimLeft(path, "/")

	var (
		hit  *ScriptRoute
		vars map[string]string
	)
	err := router.Walk(func(r *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		sr, ok := r.GetHandler().(*ScriptRoute)
		if !ok {
			return nil
		}
		method := http.MethodGet
		if methods, err := r.GetMethods(); err == nil && len(methods) > 0 {
			method = methods[0]
		}
		req, err := http.NewRequestWithContext(ctx, method, path, nil)
		if err != nil {
			return fmt.Errorf("invalid script path %q: %w", path, err)
		}
		var match mux.RouteMatch
		if r.Match(req, &match) && match.MatchErr == nil {
			hit, vars = sr, match.Vars
			return errMatched
		}
		return nil
	})
	if err != nil && !errors.Is(err, errMatched) {
		return err
	}
	if hit == nil {
		return fmt.Errorf("%w: %q", ErrScriptNotFound, path)
	}
	return hit.Run(ctx, vars, args, stdio)
}
