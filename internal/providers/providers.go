// Package providers registers the application services in the container.
package providers

import (
	"errors"
	"io"
	"sync"

	"github.com/atlanticdynamic/kindling/internal/config"
	"github.com/atlanticdynamic/kindling/internal/container"
	"github.com/atlanticdynamic/kindling/internal/translator"
)

// Service names
const (
	ServiceConfig            = config.ServiceName
	ServiceLoggerConfig      = "logger/config"
	ServiceLogger            = "logger"
	ServiceCacheConfig       = "cache/config"
	ServiceCacheDriver       = "cache/driver"
	ServiceCache             = "cache"
	ServiceTranslatorConfig  = "translator/config"
	ServiceTranslatorLocales = "translator/locales"
	ServiceTranslatorCatalog = "translator/catalog"
	ServiceTranslator        = translator.ServiceName
	ServiceDatabases         = "databases"
	ServiceDatabase          = "database"
	ServiceViewConfig        = "view/config"
	ServiceView              = "view"
)

// ConfigProvider registers the app config itself.
type ConfigProvider struct {
	Config *config.AppConfig
}

func (p *ConfigProvider) Register(c *container.Container) error {
	c.Value(ServiceConfig, p.Config)
	return nil
}

// Defaults returns the built-in providers in registration order.
func Defaults(cfg *config.AppConfig) []container.ServiceProvider {
	return []container.ServiceProvider{
		&ConfigProvider{Config: cfg},
		&LoggerProvider{Config: cfg},
		&CacheProvider{Config: cfg},
		&TranslatorProvider{Config: cfg},
		&DatabaseProvider{Config: cfg},
		&ViewProvider{Config: cfg},
	}
}

// closers collects resources opened by factories.
type closers struct {
	mu  sync.Mutex
	all []io.Closer
}

func (c *closers) add(cl io.Closer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.all = append(c.all, cl)
}

// Close closes everything in reverse order of opening.
func (c *closers) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var errs []error
	for i := len(c.all) - 1; i >= 0; i-- {
		errs = append(errs, c.all[i].Close())
	}
	c.all = nil
	return errors.Join(errs...)
}
