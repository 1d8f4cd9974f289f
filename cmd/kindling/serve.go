package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/atlanticdynamic/kindling/internal/app"
)

func newServeCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the HTTP server",
		Flags: append([]cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "listen",
				Aliases: []string{"l"},
				Usage:   "Address to listen on",
				Value:   app.DefaultAddress,
			},
		}, logFlags()...),
		Action: serveAction,
	}
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return cli.Exit(err, 1)
	}
	SetupLogger(cfg.Logger.Level, cfg.Logger.Format)

	a, err := app.New(cfg, app.WithAddress(cmd.String("listen")))
	if err != nil {
		return cli.Exit(fmt.Errorf("failed to create app: %w", err), 1)
	}
	if err := a.Run(ctx); err != nil {
		return cli.Exit(fmt.Errorf("failed to run server: %w", err), 1)
	}

	slog.Default().Info("Server shutdown complete")
	return nil
}
