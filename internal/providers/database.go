package providers

import (
	"github.com/atlanticdynamic/kindling/internal/config"
	"github.com/atlanticdynamic/kindling/internal/container"
	"github.com/atlanticdynamic/kindling/internal/database"
)

// DatabaseProvider registers the connection pool and the default connection.
type DatabaseProvider struct {
	Config  *config.AppConfig
	Options []database.Option
	closers
}

func (p *DatabaseProvider) Register(c *container.Container) error {
	c.Set(ServiceDatabases, func(container.Resolver) (any, error) {
		pool := database.NewPool(p.Config, p.Options...)
		p.add(pool)
		return pool, nil
	})
	c.Set(ServiceDatabase, func(r container.Resolver) (any, error) {
		pool, err := container.Resolve[*database.Pool](r, ServiceDatabases)
		if err != nil {
			return nil, err
		}
		return pool.Default()
	})
	return nil
}
