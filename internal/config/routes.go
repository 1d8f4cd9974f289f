package config

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/atlanticdynamic/kindling/internal/config/errz"
)

// Default redirect status for template routes with a redirect target.
const DefaultRedirectMode = http.StatusMovedPermanently

// DefaultEngine is used when neither the route nor the view config names one.
const DefaultEngine = "html"

// AllowedMethods is the closed set of HTTP methods a route may answer.
var AllowedMethods = []string{
	http.MethodDelete,
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodOptions,
}

// RouteConfig is shared by every route kind.
type RouteConfig struct {
	Ident      string   `mapstructure:"ident"`
	Route      string   `mapstructure:"route"`
	Methods    []string `mapstructure:"methods"`
	Controller string   `mapstructure:"controller"`
	Group      string   `mapstructure:"group"`
}

// AddMethod upper-cases method and appends it. Duplicates are ignored.
func (r *RouteConfig) AddMethod(method string) error {
	m := strings.ToUpper(strings.TrimSpace(method))
	if !slices.Contains(AllowedMethods, m) {
		return fmt.Errorf(
			"%w: Invalid method %q. Must be a valid HTTP method.",
			errz.ErrInvalidMethod, method,
		)
	}
	if !slices.Contains(r.Methods, m) {
		r.Methods = append(r.Methods, m)
	}
	return nil
}

// SetMethods replaces the method list, validating every entry.
func (r *RouteConfig) SetMethods(methods []string) error {
	r.Methods = nil
	var errs []error
	for _, m := range methods {
		errs = append(errs, r.AddMethod(m))
	}
	return errors.Join(errs...)
}

// ControllerIdent returns the controller, falling back to the route ident.
func (r *RouteConfig) ControllerIdent() string {
	if r.Controller != "" {
		return r.Controller
	}
	return r.Ident
}

// Path returns "/" + route, or "/" + ident when no route is set.
func (r *RouteConfig) Path() string {
	if r.Route != "" {
		return "/" + strings.TrimLeft(r.Route, "/")
	}
	return "/" + strings.TrimLeft(r.Ident, "/")
}

func (r *RouteConfig) validate() error {
	if r.Ident == "" {
		return fmt.Errorf("%w: route ident", errz.ErrEmptyID)
	}
	var errs []error
	for _, m := range r.Methods {
		if !slices.Contains(AllowedMethods, m) {
			errs = append(errs, fmt.Errorf(
				"%w: Invalid method %q. Must be a valid HTTP method.", errz.ErrInvalidMethod, m,
			))
		}
	}
	return errors.Join(errs...)
}

// TemplateRouteConfig describes a route rendered through a template engine.
type TemplateRouteConfig struct {
	RouteConfig  `mapstructure:",squash"`
	Template     string         `mapstructure:"template"`
	Engine       string         `mapstructure:"engine"`
	TemplateData map[string]any `mapstructure:"template_data"`
	Redirect     string         `mapstructure:"redirect"`
	RedirectMode int            `mapstructure:"redirect_mode"`
	Cache        bool           `mapstructure:"cache"`
	// CacheTTL is in seconds; zero keeps the entry until evicted.
	CacheTTL int `mapstructure:"cache_ttl"`
}

// TemplateIdent returns the template to render, defaulting to the route ident.
func (t *TemplateRouteConfig) TemplateIdent() string {
	if t.Template != "" {
		return t.Template
	}
	return t.Ident
}

// EngineType returns the route engine, then the view default, then DefaultEngine.
func (t *TemplateRouteConfig) EngineType(view ViewConfig) string {
	switch {
	case t.Engine != "":
		return t.Engine
	case view.DefaultEngine != "":
		return view.DefaultEngine
	default:
		return DefaultEngine
	}
}

// SetRedirectMode accepts 3xx status codes only.
func (t *TemplateRouteConfig) SetRedirectMode(mode int) error {
	if mode < 300 || mode > 399 {
		return fmt.Errorf("%w: Invalid HTTP status for redirect mode: %d", errz.ErrInvalidRedirectMode, mode)
	}
	t.RedirectMode = mode
	return nil
}

// RedirectStatus returns the configured redirect mode or DefaultRedirectMode.
func (t *TemplateRouteConfig) RedirectStatus() int {
	if t.RedirectMode == 0 {
		return DefaultRedirectMode
	}
	return t.RedirectMode
}

func (t *TemplateRouteConfig) validate() error {
	errs := []error{t.RouteConfig.validate()}
	if t.RedirectMode != 0 && (t.RedirectMode < 300 || t.RedirectMode > 399) {
		errs = append(errs, fmt.Errorf(
			"%w: Invalid HTTP status for redirect mode: %d", errz.ErrInvalidRedirectMode, t.RedirectMode,
		))
	}
	if t.CacheTTL < 0 {
		errs = append(errs, fmt.Errorf("%w: cache_ttl must not be negative", errz.ErrInvalidValue))
	}
	return errors.Join(errs...)
}

// ActionRouteConfig describes a route served by an action controller.
type ActionRouteConfig struct {
	RouteConfig `mapstructure:",squash"`
	ActionData  map[string]any `mapstructure:"action_data"`
}

// ScriptRouteConfig describes a command-line script route.
type ScriptRouteConfig struct {
	RouteConfig `mapstructure:",squash"`
	ScriptData  map[string]any `mapstructure:"script_data"`
}

// RoutesConfig groups the three route maps, keyed by route ident.
type RoutesConfig struct {
	Templates map[string]TemplateRouteConfig `mapstructure:"templates"`
	Actions   map[string]ActionRouteConfig   `mapstructure:"actions"`
	Scripts   map[string]ScriptRouteConfig   `mapstructure:"scripts"`
}

// IsEmpty reports whether no route of any kind is configured.
func (rc *RoutesConfig) IsEmpty() bool {
	return len(rc.Templates) == 0 && len(rc.Actions) == 0 && len(rc.Scripts) == 0
}

// Merge decodes raw on top of the current maps. Idents present in raw replace
// the existing entry for that ident; other idents are kept.
func (rc *RoutesConfig) Merge(raw map[string]any) error {
	var incoming RoutesConfig
	if err := decode(raw, &incoming); err != nil {
		return fmt.Errorf("routes: %w", err)
	}

	var errs []error
	for ident, t := range incoming.Templates {
		errs = append(errs, normalizeMethods(&t.RouteConfig))
		rc.Templates = setEntry(rc.Templates, ident, t)
	}
	for ident, a := range incoming.Actions {
		errs = append(errs, normalizeMethods(&a.RouteConfig))
		rc.Actions = setEntry(rc.Actions, ident, a)
	}
	for ident, s := range incoming.Scripts {
		errs = append(errs, normalizeMethods(&s.RouteConfig))
		rc.Scripts = setEntry(rc.Scripts, ident, s)
	}
	return errors.Join(errs...)
}

// Validate checks every route of every kind.
func (rc *RoutesConfig) Validate() error {
	var errs []error
	for ident, t := range rc.Templates {
		t.Ident = fallbackIdent(t.Ident, ident)
		if err := t.validate(); err != nil {
			errs = append(errs, fmt.Errorf("template route %q: %w", ident, err))
		}
	}
	for ident, a := range rc.Actions {
		a.Ident = fallbackIdent(a.Ident, ident)
		if err := a.validate(); err != nil {
			errs = append(errs, fmt.Errorf("action route %q: %w", ident, err))
		}
	}
	for ident, s := range rc.Scripts {
		s.Ident = fallbackIdent(s.Ident, ident)
		if err := s.validate(); err != nil {
			errs = append(errs, fmt.Errorf("script route %q: %w", ident, err))
		}
	}
	return errors.Join(errs...)
}

func normalizeMethods(r *RouteConfig) error {
	if len(r.Methods) == 0 {
		return nil
	}
	return r.SetMethods(r.Methods)
}

func fallbackIdent(ident, key string) string {
	if ident != "" {
		return ident
	}
	return strings.TrimLeft(key, "/")
}

func setEntry[V any](m map[string]V, key string, v V) map[string]V {
	if m == nil {
		m = make(map[string]V)
	}
	m[key] = v
	return m
}
