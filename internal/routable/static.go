package routable

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/atlanticdynamic/kindling/internal/config"
	"github.com/atlanticdynamic/kindling/internal/config/errz"
)

// Static serves existing regular files below a directory.
type Static struct {
	dir   string
	index string
}

// NewStatic is the Constructor of the static routable. The dir option
// defaults to the public path and the index option names the file served for
// directories.
func NewStatic(cfg config.RoutableConfig, deps Deps) (Routable, error) {
	s := &Static{}
	if raw, ok := cfg.Options["dir"]; ok {
		dir, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("%w: static dir must be a string", errz.ErrInvalidType)
		}
		s.dir = dir
	}
	if raw, ok := cfg.Options["index"]; ok {
		index, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("%w: static index must be a string", errz.ErrInvalidType)
		}
		s.index = index
	}

	switch {
	case s.dir == "" && deps.Config != nil:
		s.dir = deps.Config.PublicDir()
	case s.dir != "" && deps.Config != nil:
		s.dir = deps.Config.ResolvePath(s.dir)
	case s.dir == "":
		return nil, fmt.Errorf("%w: static dir", errz.ErrMissingRequiredField)
	}
	return s, nil
}

// Dir returns the served directory.
func (s *Static) Dir() string {
	return s.dir
}

func (s *Static) RouteHandler(path string, _ *http.Request) (http.Handler, bool) {
	rel := filepath.FromSlash(strings.TrimPrefix(filepath.ToSlash(filepath.Clean("/"+path)), "/"))
	full := filepath.Join(s.dir, rel)

	info, err := os.Stat(full)
	if err != nil {
		return nil, false
	}
	if info.IsDir() {
		if s.index == "" {
			return nil, false
		}
		full = filepath.Join(full, s.index)
		if info, err = os.Stat(full); err != nil {
			return nil, false
		}
	}
	if !info.Mode().IsRegular() {
		return nil, false
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, full)
	}), true
}
