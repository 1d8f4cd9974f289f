package action

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/atlanticdynamic/kindling/internal/config"
	"github.com/atlanticdynamic/kindling/internal/container"
	"github.com/atlanticdynamic/kindling/internal/evaluator"
)

// compiledScripts shares compiled evaluators between the per-request
// instances created by one constructor.
type compiledScripts struct {
	mu   sync.Mutex
	byID map[evaluator.Source]*evaluator.Evaluator
}

func (c *compiledScripts) get(src evaluator.Source, h slog.Handler) (*evaluator.Evaluator, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ev, ok := c.byID[src]; ok {
		return ev, nil
	}
	ev, err := evaluator.Build(src, h)
	if err != nil {
		return nil, err
	}
	c.byID[src] = ev
	return ev, nil
}

// Script runs a risor or starlark script and writes its result.
type Script struct {
	logger   *slog.Logger
	compiled *compiledScripts
	resolve  func(string) string

	eval *evaluator.Evaluator
	data map[string]any
}

// NewScriptConstructor returns the Constructor of the script action. Scripts
// are compiled once per distinct source.
func NewScriptConstructor() Constructor {
	compiled := &compiledScripts{byID: map[evaluator.Source]*evaluator.Evaluator{}}
	return func(deps Deps) (Action, error) {
		logger := deps.Logger
		if logger == nil {
			logger = slog.Default()
		}
		s := &Script{
			logger:   logger.With("controller", ControllerScript),
			compiled: compiled,
		}
		if deps.Container != nil {
			if cfg, err := container.Resolve[*config.AppConfig](deps.Container, config.ServiceName); err == nil {
				s.resolve = cfg.ResolvePath
			}
		}
		return s, nil
	}
}

// SetData takes the script source from the language, code, path and timeout
// keys. Everything else is passed to the script.
func (s *Script) SetData(data map[string]any) error {
	src, rest, err := evaluator.SourceFromData(data, s.resolve)
	if err != nil {
		return err
	}
	ev, err := s.compiled.get(src, s.logger.Handler())
	if err != nil {
		return err
	}
	s.eval = ev
	s.data = rest
	return nil
}

func (s *Script) HandleHTTP(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if s.eval == nil {
		return errors.New("script action has no script")
	}

	start := time.Now()
	result, err := s.eval.Eval(ctx, evaluator.Input{Data: s.data, Request: r})
	duration := time.Since(start)
	if err != nil {
		s.logger.Error("Script execution failed", "error", err, "duration", duration)
		if errors.Is(err, evaluator.ErrTimeout) {
			http.Error(w, "Script Execution Timeout", http.StatusGatewayTimeout)
		}
		return err
	}
	s.logger.Debug("Script executed successfully", "duration", duration)

	if err := writeResult(w, result); err != nil {
		return fmt.Errorf("failed to write script result: %w", err)
	}
	return nil
}

func writeResult(w http.ResponseWriter, value any) error {
	switch v := value.(type) {
	case map[string]any:
		w.Header().Set("Content-Type", "application/json")
		return json.NewEncoder(w).Encode(v)
	case string:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, err := w.Write([]byte(v))
		return err
	case []byte:
		w.Header().Set("Content-Type", "application/octet-stream")
		_, err := w.Write(v)
		return err
	default:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, err := fmt.Fprintf(w, "%v", v)
		return err
	}
}
