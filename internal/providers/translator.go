package providers

import (
	"fmt"
	"maps"
	"slices"

	"github.com/atlanticdynamic/kindling/internal/config"
	"github.com/atlanticdynamic/kindling/internal/config/errz"
	"github.com/atlanticdynamic/kindling/internal/container"
	"github.com/atlanticdynamic/kindling/internal/handler"
	"github.com/atlanticdynamic/kindling/internal/translator"
)

// TranslatorProvider registers the locales, the inline message catalog and
// the translator.
type TranslatorProvider struct {
	Config *config.AppConfig
}

func (p *TranslatorProvider) Register(c *container.Container) error {
	c.Set(ServiceTranslatorConfig, func(container.Resolver) (any, error) {
		return p.Config.Translator, nil
	})
	c.Set(ServiceTranslatorLocales, func(container.Resolver) (any, error) {
		langs := p.Config.ActiveLanguages()
		if len(langs) == 0 {
			return nil, fmt.Errorf("%w: At least one language must be active (e.g., `lang => info`).", errz.ErrNoActiveLanguage)
		}
		return langs, nil
	})
	// lang -> ident -> text
	c.Set(ServiceTranslatorCatalog, func(r container.Resolver) (any, error) {
		cfg, err := container.Resolve[config.TranslatorConfig](r, ServiceTranslatorConfig)
		if err != nil {
			return nil, err
		}
		out := map[string]map[string]string{}
		for ident, byLang := range cfg.Translations.Messages {
			for lang, text := range byLang {
				if out[lang] == nil {
					out[lang] = map[string]string{}
				}
				out[lang][ident] = text
			}
		}
		return out, nil
	})
	c.Set(ServiceTranslator, func(r container.Resolver) (any, error) {
		cfg, err := container.Resolve[config.TranslatorConfig](r, ServiceTranslatorConfig)
		if err != nil {
			return nil, err
		}
		langs, err := container.Resolve[[]string](r, ServiceTranslatorLocales)
		if err != nil {
			return nil, err
		}
		catalog, err := container.Resolve[map[string]map[string]string](r, ServiceTranslatorCatalog)
		if err != nil {
			return nil, err
		}

		tr, err := translator.New(langs, cfg.Locales.DefaultLanguage, cfg.Locales.FallbackLanguages)
		if err != nil {
			return nil, err
		}
		for _, path := range cfg.Translations.Paths {
			if _, err := tr.LoadDir(p.Config.ResolvePath(path)); err != nil {
				return nil, err
			}
		}
		for _, lang := range slices.Sorted(maps.Keys(catalog)) {
			if !tr.HasLanguage(lang) {
				continue
			}
			if err := tr.AddMessages(lang, catalog[lang]); err != nil {
				return nil, err
			}
		}
		if err := handler.AddMaintenanceMessages(tr); err != nil {
			return nil, err
		}
		return tr, nil
	})
	return nil
}
