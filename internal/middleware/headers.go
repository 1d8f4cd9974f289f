package middleware

import (
	"fmt"
	"net/http"

	"github.com/go-viper/mapstructure/v2"
	"github.com/robbyt/go-supervisor/runnables/httpserver"
	supervisorHeaders "github.com/robbyt/go-supervisor/runnables/httpserver/middleware/headers"

	"github.com/atlanticdynamic/kindling/internal/config"
	"github.com/atlanticdynamic/kindling/internal/config/errz"
)

// HeaderOps is one side of the headers middleware options.
type HeaderOps struct {
	Set    map[string]string `mapstructure:"set"`
	Add    map[string]string `mapstructure:"add"`
	Remove []string          `mapstructure:"remove"`
}

func (o HeaderOps) empty() bool {
	return len(o.Set) == 0 && len(o.Add) == 0 && len(o.Remove) == 0
}

// HeadersOptions configures the headers middleware. Top level set, add
// and remove apply to the response.
type HeadersOptions struct {
	Request  HeaderOps `mapstructure:"request"`
	Response HeaderOps `mapstructure:"response"`
	HeaderOps `mapstructure:",squash"`
}

// Headers rewrites request and response headers. Operations run in the order
// remove, set, add.
type Headers struct {
	middleware httpserver.HandlerFunc
}

// NewHeaders is the Constructor of the headers middleware.
func NewHeaders(ident string, cfg config.MiddlewareConfig, _ Deps) (Instance, error) {
	opts, err := decodeHeaders(cfg.Options)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errz.ErrInvalidValue, ident, err)
	}

	resp := opts.Response
	if !opts.HeaderOps.empty() {
		resp = mergeOps(resp, opts.HeaderOps)
	}

	var ops []supervisorHeaders.HeaderOperation
	if len(opts.Request.Remove) > 0 {
		ops = append(ops, supervisorHeaders.WithRemoveRequest(opts.Request.Remove...))
	}
	if len(opts.Request.Set) > 0 {
		ops = append(ops, supervisorHeaders.WithSetRequest(toHeader(opts.Request.Set)))
	}
	if len(opts.Request.Add) > 0 {
		ops = append(ops, supervisorHeaders.WithAddRequest(toHeader(opts.Request.Add)))
	}
	if len(resp.Remove) > 0 {
		ops = append(ops, supervisorHeaders.WithRemove(resp.Remove...))
	}
	if len(resp.Set) > 0 {
		ops = append(ops, supervisorHeaders.WithSet(toHeader(resp.Set)))
	}
	if len(resp.Add) > 0 {
		ops = append(ops, supervisorHeaders.WithAdd(toHeader(resp.Add)))
	}

	return &Headers{middleware: supervisorHeaders.NewWithOperations(ops...)}, nil
}

// Middleware returns the middleware function
func (h *Headers) Middleware() httpserver.HandlerFunc {
	return h.middleware
}

func decodeHeaders(options map[string]any) (HeadersOptions, error) {
	var out HeadersOptions
	in := make(map[string]any, len(options))
	for k, v := range options {
		if k == "type" {
			continue
		}
		in[k] = v
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &out,
		ErrorUnused: true,
		DecodeHook:  mapstructure.StringToSliceHookFunc(","),
	})
	if err != nil {
		return out, err
	}
	return out, dec.Decode(in)
}

func mergeOps(a, b HeaderOps) HeaderOps {
	out := HeaderOps{Set: map[string]string{}, Add: map[string]string{}}
	for _, ops := range []HeaderOps{a, b} {
		for k, v := range ops.Set {
			out.Set[k] = v
		}
		for k, v := range ops.Add {
			out.Add[k] = v
		}
		out.Remove = append(out.Remove, ops.Remove...)
	}
	return out
}

func toHeader(m map[string]string) http.Header {
	h := make(http.Header, len(m))
	for k, v := range m {
		h.Set(k, v)
	}
	return h
}
