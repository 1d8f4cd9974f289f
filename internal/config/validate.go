package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/atlanticdynamic/kindling/internal/config/errz"
)

// Validate checks the whole configuration and joins every problem found.
func (c *AppConfig) Validate() error {
	var errs []error

	if c.BasePath == "" {
		errs = append(errs, fmt.Errorf("%w: base_path", errz.ErrMissingRequiredField))
	}
	if c.Timezone != "" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			errs = append(errs, fmt.Errorf("%w: timezone %q: %w", errz.ErrInvalidValue, c.Timezone, err))
		}
	}

	if err := c.Routes.Validate(); err != nil {
		errs = append(errs, err)
	}
	for ident, m := range c.Modules {
		if err := m.Routes.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("module %q: %w", ident, err))
		}
	}
	for i, r := range c.Routables {
		if r.Type == "" {
			errs = append(errs, fmt.Errorf("%w: routables[%d] type", errz.ErrEmptyID, i))
		}
	}

	if err := c.Cache.validate(); err != nil {
		errs = append(errs, fmt.Errorf("cache: %w", err))
	}
	if err := c.Logger.validate(); err != nil {
		errs = append(errs, fmt.Errorf("logger: %w", err))
	}

	for ident, db := range c.Databases {
		if err := db.validate(); err != nil {
			errs = append(errs, fmt.Errorf("database %q: %w", ident, err))
		}
	}
	if len(c.Databases) > 0 {
		if _, err := c.DefaultDatabaseConfig(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
