package evaluator

import (
	"fmt"
	"maps"
	"time"
)

// reserved keys of a script data map
const (
	keyLanguage = "language"
	keyCode     = "code"
	keyPath     = "path"
	keyTimeout  = "timeout"
)

// SourceFromData splits a route data map into the script source and the
// remaining data handed to the script. Relative paths go through resolve.
func SourceFromData(in map[string]any, resolve func(string) string) (Source, map[string]any, error) {
	rest := maps.Clone(in)
	if rest == nil {
		rest = map[string]any{}
	}

	var src Source
	var err error
	if src.Language, err = takeString(rest, keyLanguage); err != nil {
		return src, nil, err
	}
	if src.Code, err = takeString(rest, keyCode); err != nil {
		return src, nil, err
	}
	if src.Path, err = takeString(rest, keyPath); err != nil {
		return src, nil, err
	}
	if src.Path != "" && resolve != nil {
		src.Path = resolve(src.Path)
	}

	if raw, ok := rest[keyTimeout]; ok {
		delete(rest, keyTimeout)
		if src.Timeout, err = parseTimeout(raw); err != nil {
			return src, nil, err
		}
	}
	return src, rest, nil
}

func takeString(m map[string]any, key string) (string, error) {
	raw, ok := m[key]
	if !ok {
		return "", nil
	}
	delete(m, key)
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("script %s must be a string, got %T", key, raw)
	}
	return s, nil
}

// parseTimeout accepts a duration string or a number of seconds.
func parseTimeout(raw any) (time.Duration, error) {
	switch v := raw.(type) {
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid script timeout %q: %w", v, err)
		}
		return d, nil
	case int:
		return time.Duration(v) * time.Second, nil
	case int64:
		return time.Duration(v) * time.Second, nil
	case float64:
		return time.Duration(v * float64(time.Second)), nil
	default:
		return 0, fmt.Errorf("invalid script timeout type %T", raw)
	}
}
