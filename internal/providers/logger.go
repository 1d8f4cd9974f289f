package providers

import (
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/atlanticdynamic/kindling/internal/config"
	"github.com/atlanticdynamic/kindling/internal/container"
	"github.com/atlanticdynamic/kindling/internal/logging"
)

// LoggerProvider registers the logger config and the application logger.
// Handler, when set, replaces the handler built from config.
type LoggerProvider struct {
	Config  *config.AppConfig
	Handler slog.Handler
	closers
}

func (p *LoggerProvider) Register(c *container.Container) error {
	c.Set(ServiceLoggerConfig, func(container.Resolver) (any, error) {
		cfg := p.Config.Logger
		cfg.Output = p.resolveOutput(cfg.Output)
		return cfg, nil
	})
	c.Set(ServiceLogger, func(r container.Resolver) (any, error) {
		if p.Handler != nil {
			return slog.New(p.Handler), nil
		}
		cfg, err := container.Resolve[config.LoggerConfig](r, ServiceLoggerConfig)
		if err != nil {
			return nil, err
		}
		h, closer, err := logging.NewHandler(cfg)
		if err != nil {
			return nil, err
		}
		p.add(closer)
		return slog.New(h), nil
	})
	return nil
}

// resolveOutput makes file outputs relative to the base path.
func (p *LoggerProvider) resolveOutput(output string) string {
	switch {
	case output == "", output == "stderr", output == "stdout":
		return output
	case strings.HasPrefix(output, "file://"):
		return "file://" + p.Config.ResolvePath(strings.TrimPrefix(output, "file://"))
	case strings.Contains(output, "://"), filepath.IsAbs(output):
		return output
	default:
		return p.Config.ResolvePath(output)
	}
}
