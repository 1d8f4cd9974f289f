package config

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/atlanticdynamic/kindling/internal/config/errz"
)

// scalar keys are applied before nested ones so that paths are known when
// subtrees are decoded
var keyOrder = []string{
	"base_path", "public_path", "base_url", "project_name", "timezone", "dev_mode",
	"default_database",
}

// Merge applies every key of raw through Set and returns the collected errors.
func (c *AppConfig) Merge(raw map[string]any) error {
	keys := slices.Collect(maps.Keys(raw))
	slices.SortFunc(keys, func(a, b string) int {
		ia, ib := slices.Index(keyOrder, a), slices.Index(keyOrder, b)
		switch {
		case ia >= 0 && ib >= 0:
			return ia - ib
		case ia >= 0:
			return -1
		case ib >= 0:
			return 1
		default:
			if a < b {
				return -1
			}
			if a > b {
				return 1
			}
			return 0
		}
	})

	var errs []error
	for _, key := range keys {
		if err := c.Set(key, raw[key]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Set assigns one top level key. Values are type checked as they would be by a
// typed setter; unknown keys are kept in Extra.
func (c *AppConfig) Set(key string, value any) error {
	switch key {
	case "project_name":
		if value == nil {
			c.ProjectName = ""
			return nil
		}
		s, ok := value.(string)
		if !ok {
			return typeError("Project name must be a string", value)
		}
		c.ProjectName = s
	case "base_url":
		s, ok := value.(string)
		if !ok {
			return typeError("Base URL must be a string", value)
		}
		c.BaseURL = s
	case "base_path", "ROOT":
		s, ok := value.(string)
		if !ok {
			return typeError("Base path must be a string", value)
		}
		return c.SetBasePath(s)
	case "public_path":
		if value == nil {
			c.PublicPath = ""
			return nil
		}
		s, ok := value.(string)
		if !ok {
			return typeError("Public path must be a string", value)
		}
		return c.SetPublicPath(s)
	case "timezone":
		s, ok := value.(string)
		if !ok {
			return typeError("Timezone must be a string.", value)
		}
		c.Timezone = s
	case "dev_mode":
		b, ok := value.(bool)
		if !ok {
			return typeError("Dev mode must be a boolean", value)
		}
		c.DevMode = b
	case "default_database":
		s, ok := value.(string)
		if !ok {
			return typeError("Default database must be a string", value)
		}
		c.DefaultDatabase = s
	case "routes":
		m, ok := value.(map[string]any)
		if !ok {
			return typeError("Routes must be a table", value)
		}
		return c.Routes.Merge(m)
	case "routables":
		routables, err := decodeRoutables(value)
		if err != nil {
			return err
		}
		c.Routables = routables
	case "modules":
		m, ok := value.(map[string]any)
		if !ok {
			return typeError("Modules must be a table", value)
		}
		modules := make(map[string]ModuleConfig, len(m))
		for ident, sub := range m {
			var mc ModuleConfig
			if sub != nil {
				subMap, ok := sub.(map[string]any)
				if !ok {
					return typeError(fmt.Sprintf("Module %q config must be a table", ident), sub)
				}
				if err := mc.Merge(subMap); err != nil {
					return fmt.Errorf("module %q: %w", ident, err)
				}
			}
			modules[ident] = mc
		}
		c.Modules = modules
	case "middlewares":
		decoded, err := decodeMiddlewares(value)
		if err != nil {
			return err
		}
		if c.Middlewares == nil {
			c.Middlewares = make(map[string]MiddlewareConfig)
		}
		maps.Copy(c.Middlewares, decoded)
	case "cache":
		cache := NewCacheConfig()
		if err := decode(value, &cache); err != nil {
			return fmt.Errorf("cache: %w", err)
		}
		c.Cache = cache
	case "logger":
		logger := NewLoggerConfig()
		if err := decode(value, &logger); err != nil {
			return fmt.Errorf("logger: %w", err)
		}
		c.Logger = logger
	case "view":
		if err := decode(value, &c.View); err != nil {
			return fmt.Errorf("view: %w", err)
		}
	case "translator":
		if err := decode(value, &c.Translator); err != nil {
			return fmt.Errorf("translator: %w", err)
		}
	case "locales":
		if err := decode(value, &c.Translator.Locales); err != nil {
			return fmt.Errorf("locales: %w", err)
		}
	case "translations":
		if err := decode(value, &c.Translator.Translations); err != nil {
			return fmt.Errorf("translations: %w", err)
		}
	case "databases":
		var dbs map[string]DatabaseConfig
		if err := decode(value, &dbs); err != nil {
			return fmt.Errorf("databases: %w", err)
		}
		for ident, db := range dbs {
			c.AddDatabase(ident, db)
		}
	default:
		if c.Extra == nil {
			c.Extra = make(map[string]any)
		}
		c.Extra[key] = value
	}
	return nil
}

func typeError(msg string, value any) error {
	return fmt.Errorf("%w: %s (got %T)", errz.ErrInvalidType, msg, value)
}
