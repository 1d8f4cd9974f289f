package main

import (
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/atlanticdynamic/kindling/internal/config"
)

func configFlag() cli.Flag {
	return &cli.StringSliceFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Configuration file, repeat to merge several (later files win)",
	}
}

func logFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Override the configured log level (trace, debug, info, warn, error)",
		},
		&cli.StringFlag{
			Name:  "log-format",
			Usage: "Override the configured log format (text, json)",
		},
	}
}

// loadConfig loads the --config files. Log flags, when set, win over the files
// and the result is validated after they are applied.
func loadConfig(cmd *cli.Command) (*config.AppConfig, error) {
	paths := cmd.StringSlice("config")
	if len(paths) == 0 {
		return nil, fmt.Errorf("config file path required (use the --config flag)")
	}
	cfg, err := config.LoadConfig(paths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.IsSet("log-level") {
		cfg.Logger.Level = cmd.String("log-level")
	}
	if cmd.IsSet("log-format") {
		cfg.Logger.Format = cmd.String("log-format")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return cfg, nil
}
