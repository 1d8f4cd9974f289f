package routes

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/atlanticdynamic/kindling/internal/action"
	"github.com/atlanticdynamic/kindling/internal/config"
)

// ActionRoute runs a new action for every request.
type ActionRoute struct {
	cfg       config.ActionRouteConfig
	newAction action.Constructor
	deps      action.Deps
	logger    *slog.Logger
}

func (a *ActionRoute) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Loaded action route", "ident", a.cfg.Ident, "controller", a.cfg.ControllerIdent())

	tw := &trackingWriter{ResponseWriter: w}
	if err := a.serve(tw, r); err != nil {
		a.logger.Error("Action route failed", "ident", a.cfg.Ident, "error", err)
		if !tw.wrote {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	}
}

func (a *ActionRoute) serve(w http.ResponseWriter, r *http.Request) error {
	act, err := a.newAction(a.deps)
	if err != nil {
		return err
	}
	if err := act.SetData(withVars(a.cfg.ActionData, mux.Vars(r))); err != nil {
		return err
	}
	return act.HandleHTTP(r.Context(), w, r)
}

// trackingWriter records whether a response was started.
type trackingWriter struct {
	http.ResponseWriter
	wrote bool
}

func (t *trackingWriter) WriteHeader(status int) {
	t.wrote = true
	t.ResponseWriter.WriteHeader(status)
}

func (t *trackingWriter) Write(b []byte) (int, error) {
	t.wrote = true
	return t.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (t *trackingWriter) Unwrap() http.ResponseWriter {
	return t.ResponseWriter
}
