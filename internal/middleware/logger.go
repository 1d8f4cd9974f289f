package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/robbyt/go-supervisor/runnables/httpserver"

	"github.com/atlanticdynamic/kindling/internal/config"
	"github.com/atlanticdynamic/kindling/internal/config/errz"
)

// RequestIDHeader carries the request id on requests and responses.
const RequestIDHeader = "X-Request-Id"

// lgr is implemented by slog.Logger
type lgr interface {
	LogAttrs(ctx context.Context, level slog.Level, msg string, attrs ...slog.Attr)
}

// Logger logs one line per request and tags requests with an id.
type Logger struct {
	logger    lgr
	skipPaths []string
	newID     func() (uuid.UUID, error)
}

// NewLogger is the Constructor of the logger middleware. The skip_paths
// option lists path prefixes that are not logged.
func NewLogger(ident string, cfg config.MiddlewareConfig, deps Deps) (Instance, error) {
	skip, err := stringList(cfg.Options["skip_paths"])
	if err != nil {
		return nil, fmt.Errorf("%w: %s skip_paths: %w", errz.ErrInvalidType, ident, err)
	}
	return &Logger{
		logger:    deps.Logger.WithGroup("http"),
		skipPaths: skip,
		newID:     uuid.NewV6,
	}, nil
}

func (l *Logger) shouldSkip(path string) bool {
	return slices.ContainsFunc(l.skipPaths, func(p string) bool { return strings.HasPrefix(path, p) })
}

// Middleware returns the middleware function
func (l *Logger) Middleware() httpserver.HandlerFunc {
	return func(rp *httpserver.RequestProcessor) {
		r := rp.Request()

		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			if u, err := l.newID(); err == nil {
				id = u.String()
				r.Header.Set(RequestIDHeader, id)
			}
		}
		if id != "" {
			rp.Writer().Header().Set(RequestIDHeader, id)
		}

		if l.shouldSkip(r.URL.Path) {
			rp.Next()
			return
		}

		start := time.Now()
		rp.Next()
		duration := time.Since(start)

		status := rp.Writer().Status()
		if status == 0 {
			status = http.StatusOK
		}
		l.logger.LogAttrs(r.Context(), levelFor(status), "HTTP request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
			slog.Int("size", rp.Writer().Size()),
			slog.Duration("duration", duration),
			slog.String("request_id", id),
			slog.String("remote", r.RemoteAddr),
		)
	}
}

// levelFor maps 5xx to error and 4xx to warn.
func levelFor(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

func stringList(raw any) ([]string, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{v}, nil
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected strings, got %T", item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected a list of strings, got %T", raw)
	}
}
