package translator

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/atlanticdynamic/kindling/internal/config/loader"
)

// messageExtensions are the catalog file formats LoadDir reads.
var messageExtensions = []string{".toml", ".yaml", ".yml", ".json"}

// LoadDir loads every messages.<lang>.<ext> file in dir for the active
// languages. Nested tables become dotted keys. It returns the files loaded.
func (t *Translator) LoadDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read translations path %q: %w", dir, err)
	}

	var loaded []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		lang, ok := messageFileLang(entry.Name())
		if !ok || !t.HasLanguage(lang) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		tree, err := loader.LoadFile(path)
		if err != nil {
			return loaded, err
		}
		if err := t.AddMessages(lang, Flatten(tree)); err != nil {
			return loaded, fmt.Errorf("%s: %w", path, err)
		}
		loaded = append(loaded, path)
	}
	return loaded, nil
}

// messageFileLang extracts lang from "messages.<lang>.<ext>".
func messageFileLang(name string) (string, bool) {
	ext := filepath.Ext(name)
	if !slices.Contains(messageExtensions, strings.ToLower(ext)) {
		return "", false
	}
	parts := strings.Split(strings.TrimSuffix(name, ext), ".")
	if len(parts) != 2 || parts[0] != "messages" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// Flatten turns a nested message tree into dotted keys. Non-string leaves are
// formatted with %v.
func Flatten(tree map[string]any) map[string]string {
	out := map[string]string{}
	flattenInto(out, "", tree)
	return out
}

func flattenInto(out map[string]string, prefix string, tree map[string]any) {
	for _, k := range slices.Sorted(maps.Keys(tree)) {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch v := tree[k].(type) {
		case map[string]any:
			flattenInto(out, key, v)
		case string:
			out[key] = v
		case nil:
		default:
			out[key] = fmt.Sprint(v)
		}
	}
}
