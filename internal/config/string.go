package config

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/atlanticdynamic/kindling/internal/fancy"
	"github.com/charmbracelet/lipgloss/tree"
)

// String renders the configuration as a tree for the validate command.
func (c *AppConfig) String() string {
	return c.Tree().String()
}

// Tree builds the configuration tree.
func (c *AppConfig) Tree() *tree.Tree {
	root := fancy.NewComponentTree(fancy.RootStyle.Render(c.titleText()))
	root.AddField("base_path", fancy.PathText(c.BasePath))
	root.AddField("public_path", fancy.PathText(c.PublicDir()))
	root.AddField("timezone", c.Timezone)
	root.AddField("dev_mode", c.DevMode)

	root.AddChild(routesTree("Routes", &c.Routes))

	if len(c.Modules) > 0 {
		mods := fancy.BranchNode("Modules", len(c.Modules))
		for _, ident := range sortedKeys(c.Modules) {
			m := c.Modules[ident]
			node := fancy.Tree().Root(fancy.ModuleText(ident))
			if !m.Routes.IsEmpty() {
				node.Child(routesTree("Routes", &m.Routes))
			}
			for _, mw := range sortedKeys(m.Middlewares) {
				node.Child(fancy.MiddlewareText(mw))
			}
			mods.Child(node)
		}
		root.AddChild(mods)
	}

	if len(c.Routables) > 0 {
		chain := fancy.BranchNode("Routables", len(c.Routables))
		for _, r := range c.Routables {
			chain.Child(fancy.RoutableText(r.Type))
		}
		root.AddChild(chain)
	}

	if len(c.Middlewares) > 0 {
		mws := fancy.BranchNode("Middlewares", len(c.Middlewares))
		for _, ident := range sortedKeys(c.Middlewares) {
			state := "active"
			if !c.Middlewares[ident].IsActive() {
				state = "inactive"
			}
			mws.Child(fmt.Sprintf("%s %s", fancy.MiddlewareText(ident), fancy.InfoStyle.Render(state)))
		}
		root.AddChild(mws)
	}

	services := fancy.Tree().Root(fancy.HeaderStyle.Render("Services"))
	services.Child(fmt.Sprintf("%s: active=%t types=%s", fancy.ServiceText("cache"),
		c.Cache.Active, strings.Join(c.Cache.Types, ",")))
	services.Child(fmt.Sprintf("%s: level=%s format=%s output=%s", fancy.ServiceText("logger"),
		c.Logger.Level, c.Logger.Format, c.Logger.Output))
	services.Child(fmt.Sprintf("%s: languages=%s", fancy.ServiceText("translator"),
		strings.Join(c.ActiveLanguages(), ",")))
	if len(c.Databases) > 0 {
		dbs := fancy.Tree().Root(fancy.ServiceText("databases"))
		for _, ident := range sortedKeys(c.Databases) {
			label := fmt.Sprintf("%s (%s)", ident, c.Databases[ident].Type)
			if ident == c.DefaultDatabase {
				label += fancy.InfoStyle.Render(" default")
			}
			dbs.Child(label)
		}
		services.Child(dbs)
	}
	root.AddChild(services)

	return root.Tree()
}

func (c *AppConfig) titleText() string {
	if name := c.DisplayName(); name != "" {
		return name
	}
	return "kindling"
}

func routesTree(title string, rc *RoutesConfig) *tree.Tree {
	total := len(rc.Templates) + len(rc.Actions) + len(rc.Scripts)
	node := fancy.BranchNode(title, total)
	for _, ident := range sortedKeys(rc.Templates) {
		t := rc.Templates[ident]
		t.Ident = fallbackIdent(t.Ident, ident)
		label := fmt.Sprintf("template %s", fancy.RouteText(t.Path()))
		if t.Redirect != "" {
			label += fancy.InfoStyle.Render(fmt.Sprintf(" -> %s (%d)", t.Redirect, t.RedirectStatus()))
		}
		node.Child(label)
	}
	for _, ident := range sortedKeys(rc.Actions) {
		a := rc.Actions[ident]
		a.Ident = fallbackIdent(a.Ident, ident)
		node.Child(fmt.Sprintf("action %s", fancy.RouteText(a.Path())))
	}
	for _, ident := range sortedKeys(rc.Scripts) {
		s := rc.Scripts[ident]
		s.Ident = fallbackIdent(s.Ident, ident)
		node.Child(fmt.Sprintf("script %s", fancy.RouteText(s.Path())))
	}
	return node
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
