// Package evaluator compiles and runs risor or starlark scripts through
// go-polyscript.
package evaluator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/robbyt/go-polyscript/engines/risor"
	"github.com/robbyt/go-polyscript/engines/starlark"
	"github.com/robbyt/go-polyscript/platform"
	"github.com/robbyt/go-polyscript/platform/constants"
	"github.com/robbyt/go-polyscript/platform/data"
	"github.com/robbyt/go-polyscript/platform/script/loader"
)

var (
	ErrUnknownLanguage   = errors.New("unknown script language")
	ErrMissingSource     = errors.New("script needs code or a path")
	ErrBothCodeAndPath   = errors.New("script cannot have both code and a path")
	ErrCompilationFailed = errors.New("script compilation failed")
	ErrTimeout           = errors.New("script execution timed out")
)

// Script languages
const (
	LanguageRisor    = "risor"
	LanguageStarlark = "starlark"
)

// DefaultTimeout bounds a single evaluation.
const DefaultTimeout = 5 * time.Second

// Source describes one script.
type Source struct {
	Language string
	Code     string
	Path     string
	Timeout  time.Duration
}

// Evaluator is a compiled script. It is safe for concurrent use.
type Evaluator struct {
	language string
	timeout  time.Duration
	compiled platform.Evaluator
}

// Build compiles src. Logs from the engine go to handler.
func Build(src Source, handler slog.Handler) (*Evaluator, error) {
	switch {
	case src.Code != "" && src.Path != "":
		return nil, ErrBothCodeAndPath
	case src.Code == "" && src.Path == "":
		return nil, ErrMissingSource
	}

	var (
		ldr loader.Loader
		err error
	)
	if src.Code != "" {
		ldr, err = loader.NewFromString(src.Code)
	} else {
		// the disk loader only accepts absolute paths
		path, absErr := filepath.Abs(src.Path)
		if absErr != nil {
			return nil, fmt.Errorf("failed to resolve script path %q: %w", src.Path, absErr)
		}
		ldr, err = loader.NewFromDisk(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load script: %w", err)
	}

	var compiled platform.Evaluator
	switch src.Language {
	case LanguageRisor, "":
		src.Language = LanguageRisor
		compiled, err = risor.FromRisorLoader(handler, ldr)
	case LanguageStarlark:
		compiled, err = starlark.FromStarlarkLoader(handler, ldr)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownLanguage, src.Language)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCompilationFailed, src.Language, err)
	}

	timeout := src.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Evaluator{language: src.Language, timeout: timeout, compiled: compiled}, nil
}

// Language returns the script language.
func (e *Evaluator) Language() string {
	return e.language
}

// Input is what a script sees. Scripts read ctx.get("data"),
// ctx.get("request") and ctx.get("args").
type Input struct {
	Data    map[string]any
	Request *http.Request
	Args    []string
}

func (in Input) scriptData() map[string]any {
	d := in.Data
	if d == nil {
		d = map[string]any{}
	}
	out := map[string]any{"data": d}
	if in.Request != nil {
		out["request"] = in.Request
	}
	if in.Args != nil {
		args := make([]any, 0, len(in.Args))
		for _, a := range in.Args {
			args = append(args, a)
		}
		out["args"] = args
	}
	return out
}

// Eval runs the script with in and returns the script result converted to Go
// values.
func (e *Evaluator) Eval(ctx context.Context, in Input) (any, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	provider := data.NewContextProvider(constants.EvalData)
	ctx, err := provider.AddDataToContext(ctx, in.scriptData())
	if err != nil {
		return nil, fmt.Errorf("failed to add script data: %w", err)
	}

	result, err := e.compiled.Eval(ctx)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s: %w", ErrTimeout, e.timeout, err)
		}
		return nil, err
	}
	return result.Interface(), nil
}
