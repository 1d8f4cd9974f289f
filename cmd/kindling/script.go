package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/atlanticdynamic/kindling/internal/app"
	"github.com/atlanticdynamic/kindling/internal/routes"
	"github.com/atlanticdynamic/kindling/internal/script"
)

func newScriptCmd() *cli.Command {
	return &cli.Command{
		Name:      "script",
		Usage:     "Run a script route",
		ArgsUsage: "<route> [-- script flags]",
		Flags:     append([]cli.Flag{configFlag()}, logFlags()...),
		Action:    scriptAction,
	}
}

// scriptArgs splits the positional arguments into the route and the script
// arguments, dropping a leading "--".
func scriptArgs(args []string) (string, []string, error) {
	if len(args) == 0 {
		return "", nil, fmt.Errorf("script route required")
	}
	rest := args[1:]
	if len(rest) > 0 && rest[0] == "--" {
		rest = rest[1:]
	}
	return args[0], rest, nil
}

func scriptAction(ctx context.Context, cmd *cli.Command) error {
	path, args, err := scriptArgs(cmd.Args().Slice())
	if err != nil {
		return cli.Exit(err, 1)
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return cli.Exit(err, 1)
	}
	SetupLogger(cfg.Logger.Level, cfg.Logger.Format)

	a, err := app.New(cfg, app.WithMode(routes.ModeCLI))
	if err != nil {
		return cli.Exit(fmt.Errorf("failed to create app: %w", err), 1)
	}
	defer func() { _ = a.Close() }()

	root := cmd.Root()
	stdio := script.Stdio{Stdin: root.Reader, Stdout: root.Writer, Stderr: root.ErrWriter}
	if err := a.RunScript(ctx, path, args, stdio); err != nil {
		return cli.Exit(err, 1)
	}
	return nil
}
