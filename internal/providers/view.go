package providers

import (
	"github.com/atlanticdynamic/kindling/internal/config"
	"github.com/atlanticdynamic/kindling/internal/container"
	"github.com/atlanticdynamic/kindling/internal/view"
)

// Engine names
const (
	EngineHTML  = "html"
	EngineTempl = "templ"
)

// DefaultViewPath is used when no view paths are configured.
const DefaultViewPath = "views"

// ViewProvider registers the renderer with the html and templ engines.
type ViewProvider struct {
	Config     *config.AppConfig
	Components map[string]view.Component
}

func (p *ViewProvider) Register(c *container.Container) error {
	c.Set(ServiceViewConfig, func(container.Resolver) (any, error) {
		cfg := p.Config.View
		if cfg.DefaultEngine == "" {
			cfg.DefaultEngine = EngineHTML
		}
		paths := cfg.Paths
		if len(paths) == 0 {
			paths = []string{DefaultViewPath}
		}
		cfg.Paths = make([]string, 0, len(paths))
		for _, path := range paths {
			cfg.Paths = append(cfg.Paths, p.Config.ResolvePath(path))
		}
		return cfg, nil
	})
	c.Set(ServiceView, func(r container.Resolver) (any, error) {
		cfg, err := container.Resolve[config.ViewConfig](r, ServiceViewConfig)
		if err != nil {
			return nil, err
		}
		var opts []view.HTMLOption
		if p.Config.DevMode {
			opts = append(opts, view.WithoutCache())
		}
		renderer := view.NewRenderer(cfg.DefaultEngine)
		renderer.AddEngine(EngineHTML, view.NewHTMLEngine(cfg.Paths, cfg.TemplateExtension(), opts...))
		renderer.AddEngine(EngineTempl, view.NewTemplEngine(p.Components))
		return renderer, nil
	})
	return nil
}
