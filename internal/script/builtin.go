package script

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/atlanticdynamic/kindling/internal/config"
	"github.com/atlanticdynamic/kindling/internal/container"
	"github.com/atlanticdynamic/kindling/internal/evaluator"
)

// Echo prints its data as JSON.
type Echo struct {
	Base
}

// NewEcho is the Constructor of the echo script.
func NewEcho(Deps) (Script, error) {
	return &Echo{Base: NewBase(ScriptEcho, "Print the script data as JSON")}, nil
}

func (e *Echo) Run(_ context.Context, inv *Invocation) error {
	return writeJSON(inv, e.Data())
}

// Eval runs risor or starlark code and prints the result as JSON.
type Eval struct {
	Base
	handler slog.Handler
	resolve func(string) string
}

// NewEval is the Constructor of the eval script.
func NewEval(deps Deps) (Script, error) {
	s := &Eval{Base: NewBase(ScriptEval, "Evaluate a risor or starlark script")}
	if err := s.AddArgument("code", Argument{
		Prefix:      "e",
		Description: "script code",
	}); err != nil {
		return nil, err
	}
	if err := s.AddArgument("language", Argument{
		Prefix:      "l",
		Description: "script language (risor or starlark)",
	}); err != nil {
		return nil, err
	}

	s.handler = slog.Default().Handler()
	if deps.Logger != nil {
		s.handler = deps.Logger.Handler()
	}
	if deps.Container != nil {
		if cfg, err := container.Resolve[*config.AppConfig](deps.Container, config.ServiceName); err == nil {
			s.resolve = cfg.ResolvePath
		}
	}
	return s, nil
}

func (s *Eval) Run(ctx context.Context, inv *Invocation) error {
	src, rest, err := evaluator.SourceFromData(s.Data(), s.resolve)
	if err != nil {
		return err
	}
	if inv.IsSet("language") {
		src.Language = inv.Command.String("language")
	}
	if inv.IsSet("code") || (src.Code == "" && src.Path == "") {
		if src.Code, err = s.ArgOrInput(inv, "code"); err != nil {
			return err
		}
		src.Path = ""
	}

	ev, err := evaluator.Build(src, s.handler)
	if err != nil {
		return err
	}

	args := inv.Args()
	if args == nil {
		args = []string{}
	}
	if s.Verbose() {
		inv.Logger.Debug("Evaluating script", "language", ev.Language())
	}
	result, err := ev.Eval(ctx, evaluator.Input{Data: rest, Args: args})
	if err != nil {
		return err
	}
	return writeJSON(inv, result)
}

func writeJSON(inv *Invocation, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(inv.Stdout, string(out))
	return err
}
