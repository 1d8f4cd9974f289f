package providers

import (
	"time"

	"github.com/atlanticdynamic/kindling/internal/cache"
	"github.com/atlanticdynamic/kindling/internal/config"
	"github.com/atlanticdynamic/kindling/internal/container"
)

// CacheProvider registers the cache config, the selected driver and the pool.
type CacheProvider struct {
	Config *config.AppConfig
	closers
}

// Driver returns the first supported entry of cfg.Types, or "" when the
// cache is inactive or nothing is supported.
func Driver(cfg config.CacheConfig) string {
	if !cfg.Active {
		return ""
	}
	for _, t := range cfg.Types {
		switch t {
		case config.CacheTypeMemory:
			return t
		case config.CacheTypeRedis:
			if len(cfg.Servers) > 0 {
				return t
			}
		}
	}
	return ""
}

func (p *CacheProvider) Register(c *container.Container) error {
	c.Set(ServiceCacheConfig, func(container.Resolver) (any, error) {
		return p.Config.Cache, nil
	})
	c.Set(ServiceCacheDriver, func(r container.Resolver) (any, error) {
		cfg, err := container.Resolve[config.CacheConfig](r, ServiceCacheConfig)
		if err != nil {
			return nil, err
		}
		return Driver(cfg), nil
	})
	c.Set(ServiceCache, func(r container.Resolver) (any, error) {
		cfg, err := container.Resolve[config.CacheConfig](r, ServiceCacheConfig)
		if err != nil {
			return nil, err
		}
		driver, err := container.Resolve[string](r, ServiceCacheDriver)
		if err != nil {
			return nil, err
		}

		var pool cache.Pool
		switch driver {
		case config.CacheTypeMemory:
			mem, err := cache.NewMemoryPool(cfg.Size, cfg.Prefix)
			if err != nil {
				return nil, err
			}
			pool = mem
		case config.CacheTypeRedis:
			srv := cfg.Servers[0]
			rp := cache.NewRedisPool(cache.RedisOptions{
				Addr:     srv.Addr(),
				Password: srv.Password,
				DB:       srv.DB,
				Prefix:   cfg.Prefix,
			})
			p.add(rp)
			pool = rp
		default:
			return cache.NoopPool{}, nil
		}
		return cache.WithDefaultTTL(pool, time.Duration(cfg.DefaultTTL)*time.Second), nil
	})
	return nil
}
