package config

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
)

// ModuleConfig is the config subtree of one module.
type ModuleConfig struct {
	Routes      RoutesConfig                `mapstructure:"routes"`
	Middlewares map[string]MiddlewareConfig `mapstructure:"middlewares"`
	// Data keeps every other key for the module itself.
	Data map[string]any `mapstructure:",remain"`
}

// Merge decodes raw on top of the module config. Routes merge per ident, middlewares
// per ident, and remaining keys replace existing keys.
func (m *ModuleConfig) Merge(raw map[string]any) error {
	rest := maps.Clone(raw)
	if routes, ok := rest["routes"]; ok {
		rm, ok := routes.(map[string]any)
		if !ok {
			return fmt.Errorf("module routes must be a table, got %T", routes)
		}
		if err := m.Routes.Merge(rm); err != nil {
			return err
		}
		delete(rest, "routes")
	}
	if mws, ok := rest["middlewares"]; ok {
		decoded, err := decodeMiddlewares(mws)
		if err != nil {
			return err
		}
		if m.Middlewares == nil {
			m.Middlewares = make(map[string]MiddlewareConfig)
		}
		maps.Copy(m.Middlewares, decoded)
		delete(rest, "middlewares")
	}
	if len(rest) > 0 {
		if m.Data == nil {
			m.Data = make(map[string]any)
		}
		maps.Copy(m.Data, rest)
	}
	return nil
}

// MiddlewareConfig enables and configures one middleware by ident.
type MiddlewareConfig struct {
	Active   *bool          `mapstructure:"active"`
	Priority int            `mapstructure:"priority"`
	Options  map[string]any `mapstructure:",remain"`
}

// IsActive reports whether the middleware is enabled; a missing flag means enabled.
func (m MiddlewareConfig) IsActive() bool {
	return m.Active == nil || *m.Active
}

// RoutableConfig is one entry of the ordered catch-all chain.
type RoutableConfig struct {
	Type     string         `mapstructure:"type"`
	Priority int            `mapstructure:"priority"`
	Options  map[string]any `mapstructure:",remain"`
}

func decodeMiddlewares(raw any) (map[string]MiddlewareConfig, error) {
	var out map[string]MiddlewareConfig
	if err := decode(raw, &out); err != nil {
		return nil, fmt.Errorf("middlewares: %w", err)
	}
	return out, nil
}

// decodeRoutables accepts an array of tables, kept in order, or a table keyed by
// type, ordered by priority then type.
func decodeRoutables(raw any) ([]RoutableConfig, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case []any, []map[string]any:
		var out []RoutableConfig
		if err := decode(v, &out); err != nil {
			return nil, fmt.Errorf("routables: %w", err)
		}
		return out, nil
	case map[string]any:
		out := make([]RoutableConfig, 0, len(v))
		for typ, entry := range v {
			var rc RoutableConfig
			if entry != nil {
				if err := decode(entry, &rc); err != nil {
					return nil, fmt.Errorf("routables.%s: %w", typ, err)
				}
			}
			if rc.Type == "" {
				rc.Type = typ
			}
			out = append(out, rc)
		}
		slices.SortStableFunc(out, func(a, b RoutableConfig) int {
			return cmp.Or(cmp.Compare(a.Priority, b.Priority), cmp.Compare(a.Type, b.Type))
		})
		return out, nil
	default:
		return nil, fmt.Errorf("routables must be a list or a table, got %T", raw)
	}
}
