package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robbyt/go-supervisor/runnables/httpserver"

	"github.com/atlanticdynamic/kindling/internal/config"
	"github.com/atlanticdynamic/kindling/internal/config/errz"
)

// UnmatchedRoute labels requests that no named route matched.
const UnmatchedRoute = "unmatched"

// Metrics records request counts and latencies per named route.
type Metrics struct {
	Registry *prometheus.Registry
	path     string
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics is the Constructor of the metrics middleware. The path option
// serves the exposition endpoint and namespace overrides "kindling".
func NewMetrics(ident string, cfg config.MiddlewareConfig, _ Deps) (Instance, error) {
	namespace := "kindling"
	if raw, ok := cfg.Options["namespace"]; ok {
		s, ok := raw.(string)
		if !ok || s == "" {
			return nil, fmt.Errorf("%w: %s namespace must be a string", errz.ErrInvalidType, ident)
		}
		namespace = s
	}
	path := ""
	if raw, ok := cfg.Options["path"]; ok {
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s path must be a string", errz.ErrInvalidType, ident)
		}
		path = s
	}

	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		path:     path,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route and method.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		}, []string{"route", "method"}),
	}
	m.Registry.MustRegister(m.requests, m.duration)
	return m, nil
}

// Middleware returns nil, metrics are recorded inside the router.
func (m *Metrics) Middleware() httpserver.HandlerFunc {
	return nil
}

// RegisterRoutes adds the exposition endpoint when a path is configured.
func (m *Metrics) RegisterRoutes(router *mux.Router) {
	if m.path == "" {
		return
	}
	router.Handle(m.path, promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})).
		Methods(http.MethodGet).
		Name("metrics")
}

// RouterMiddleware returns the recording middleware.
func (m *Metrics) RouterMiddleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			route := UnmatchedRoute
			if cur := mux.CurrentRoute(r); cur != nil && cur.GetName() != "" {
				route = cur.GetName()
			}
			m.requests.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()
			m.duration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
