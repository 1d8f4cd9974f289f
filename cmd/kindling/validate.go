package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/atlanticdynamic/kindling/internal/config"
)

func newValidateCmd() *cli.Command {
	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"lint"},
		Usage:   "Validate configuration files",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:    "tree",
				Aliases: []string{"t"},
				Usage:   "Show detailed tree view of the validated configuration",
			},
		},
		Action: validateAction,
	}
}

func validateAction(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	w := cmd.Root().Writer
	paths := cmd.StringSlice("config")
	fmt.Fprintf(w, "Configuration %s is valid\n", strings.Join(paths, ", "))

	if cmd.Bool("tree") {
		fmt.Fprintln(w, cfg)
		return nil
	}
	fmt.Fprintln(w, renderConfigSummary(paths, cfg))
	return nil
}

func renderConfigSummary(paths []string, cfg *config.AppConfig) string {
	var summary strings.Builder

	summary.WriteString("\nConfig Summary:\n")
	fmt.Fprintf(&summary, "- Files: %s\n", strings.Join(paths, ", "))
	fmt.Fprintf(&summary, "- Project: %s\n", cfg.DisplayName())
	fmt.Fprintf(&summary, "- Template routes: %d\n", len(cfg.Routes.Templates))
	fmt.Fprintf(&summary, "- Action routes: %d\n", len(cfg.Routes.Actions))
	fmt.Fprintf(&summary, "- Script routes: %d\n", len(cfg.Routes.Scripts))
	fmt.Fprintf(&summary, "- Modules: %d\n", len(cfg.Modules))
	fmt.Fprintf(&summary, "- Middlewares: %d\n", len(cfg.Middlewares))
	fmt.Fprintf(&summary, "- Routables: %d\n", len(cfg.Routables))
	fmt.Fprintf(&summary, "- Databases: %d\n", len(cfg.Databases))
	summary.WriteString("\nUse --tree for a more detailed view of the config.")

	return summary.String()
}
