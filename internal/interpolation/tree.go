package interpolation

import (
	"errors"
	"fmt"
)

// verbatimKeys hold script source that is never expanded.
var verbatimKeys = map[string]bool{"code": true}

// ExpandTree walks a decoded configuration tree and expands every string value in place.
// Map keys and values under a "code" key are never expanded. Errors carry the dotted path
// of the offending value.
func ExpandTree(tree map[string]any) error {
	return expandMap("", tree)
}

func expandMap(prefix string, m map[string]any) error {
	var errs []error
	for key, value := range m {
		if verbatimKeys[key] {
			continue
		}
		expanded, err := expandValue(joinPath(prefix, key), value)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		m[key] = expanded
	}
	return errors.Join(errs...)
}

func expandValue(path string, value any) (any, error) {
	switch v := value.(type) {
	case string:
		out, err := ExpandEnvVars(v)
		if err != nil {
			return v, fmt.Errorf("%s: %w", path, err)
		}
		return out, nil
	case map[string]any:
		return v, expandMap(path, v)
	case []any:
		var errs []error
		for i, item := range v {
			out, err := expandValue(fmt.Sprintf("%s[%d]", path, i), item)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			v[i] = out
		}
		return v, errors.Join(errs...)
	case []string:
		var errs []error
		for i, item := range v {
			out, err := ExpandEnvVars(item)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s[%d]: %w", path, i, err))
				continue
			}
			v[i] = out
		}
		return v, errors.Join(errs...)
	default:
		return value, nil
	}
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
