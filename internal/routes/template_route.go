package routes

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/atlanticdynamic/kindling/internal/cache"
	"github.com/atlanticdynamic/kindling/internal/config"
	"github.com/atlanticdynamic/kindling/internal/template"
	"github.com/atlanticdynamic/kindling/internal/view"
)

// TemplateRoute renders a template controller through a view engine.
type TemplateRoute struct {
	cfg           config.TemplateRouteConfig
	engine        string
	newController template.Constructor
	deps          template.Deps
	renderer      *view.Renderer
	cache         cache.Pool
	logger        *slog.Logger
}

// CacheKey returns the cache key of the rendered route.
func (t *TemplateRoute) CacheKey() string {
	return "template/" + t.cfg.Ident
}

func (t *TemplateRoute) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	t.logger.Debug("Loaded template route", "ident", t.cfg.Ident, "template", t.cfg.TemplateIdent())

	if t.cfg.Redirect != "" {
		w.Header().Set("Location", redirectLocation(r.URL, t.cfg.Redirect))
		w.WriteHeader(t.cfg.RedirectStatus())
		return
	}

	ctx := r.Context()
	useCache := t.cfg.Cache && t.cache != nil
	if useCache {
		body, ok, err := t.cache.Get(ctx, t.CacheKey())
		if err != nil {
			t.logger.Warn("Template cache lookup failed", "ident", t.cfg.Ident, "error", err)
		}
		if ok {
			writeHTML(w, body)
			return
		}
	}

	body, err := t.render(r)
	if err != nil {
		t.logger.Error("Template route failed", "ident", t.cfg.Ident, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if useCache {
		ttl := time.Duration(t.cfg.CacheTTL) * time.Second
		if err := t.cache.Set(ctx, t.CacheKey(), body, ttl); err != nil {
			t.logger.Warn("Template cache store failed", "ident", t.cfg.Ident, "error", err)
		}
	}
	writeHTML(w, body)
}

func (t *TemplateRoute) render(r *http.Request) ([]byte, error) {
	ctl, err := t.newController(t.deps)
	if err != nil {
		return nil, err
	}
	if err := ctl.SetData(withVars(t.cfg.TemplateData, mux.Vars(r))); err != nil {
		return nil, err
	}
	ident := t.cfg.TemplateIdent()
	ctl.SetViewData(ident, t.engine)
	return t.renderer.RenderBytes(r.Context(), t.engine, ident, ctl.ViewData())
}

func writeHTML(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// redirectLocation replaces the path of the request URL with target. A target
// carrying a scheme is used as is.
func redirectLocation(u *url.URL, target string) string {
	if strings.Contains(target, "://") {
		return target
	}
	out := *u
	out.Path = "/" + strings.TrimLeft(target, "/")
	out.RawPath = ""
	return out.String()
}
