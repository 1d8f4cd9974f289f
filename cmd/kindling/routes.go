package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/atlanticdynamic/kindling/internal/app"
	"github.com/atlanticdynamic/kindling/internal/fancy"
	"github.com/atlanticdynamic/kindling/internal/routes"
)

func newRoutesCmd() *cli.Command {
	return &cli.Command{
		Name:  "routes",
		Usage: "List the registered routes",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "scripts",
				Usage: "List the script routes instead of the web routes",
			},
		},
		Action: routesAction,
	}
}

func routesAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return cli.Exit(err, 1)
	}
	// setup logs stay quiet, the listing is the output
	cfg.Logger.Active = false

	mode := routes.ModeWeb
	if cmd.Bool("scripts") {
		mode = routes.ModeCLI
	}
	a, err := app.New(cfg, app.WithMode(mode))
	if err != nil {
		return cli.Exit(fmt.Errorf("failed to create app: %w", err), 1)
	}
	defer func() { _ = a.Close() }()
	if err := a.Setup(ctx); err != nil {
		return cli.Exit(err, 1)
	}

	_, err = fmt.Fprintln(cmd.Root().Writer, renderRoutes(cfg.DisplayName(), a.Routes()))
	return err
}

func renderRoutes(title string, infos []routes.Info) string {
	if title == "" {
		title = "kindling"
	}
	root := fancy.NewComponentTree(fancy.RootStyle.Render(title))
	byKind := map[string]*fancy.ComponentTree{}
	var order []string
	for _, info := range infos {
		node, ok := byKind[info.Kind]
		if !ok {
			node = fancy.NewComponentTree(fancy.HeaderStyle.Render(info.Kind))
			byKind[info.Kind] = node
			order = append(order, info.Kind)
		}
		line := fmt.Sprintf("%s %s %s", fancy.RouteText(info.Ident), strings.Join(info.Methods, ","), fancy.PathText(info.Path))
		if info.Controller != "" {
			line += " " + fancy.InfoStyle.Render("("+info.Controller+")")
		}
		node.AddChild(line)
	}
	for _, kind := range order {
		root.AddChild(byKind[kind].Tree())
	}
	return root.String()
}
