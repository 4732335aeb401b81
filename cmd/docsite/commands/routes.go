package commands

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"git.home.luguber.info/inful/docsite/internal/build"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/routes"
)

// RoutesCmd groups the route table subcommands.
type RoutesCmd struct {
	Print  RoutesPrintCmd  `cmd:"" help:"Print the route tree"`
	Lookup RoutesLookupCmd `cmd:"" help:"Resolve a URL path the way the client router would"`
}

// TableSource selects where a route subcommand reads the table from.
type TableSource struct {
	File string `help:"Read a written route table instead of generating one" type:"path"`
}

func (s TableSource) load(g *Global, root *CLI) (*routes.Table, error) {
	if s.File != "" {
		return routes.ReadFile(s.File)
	}
	res, err := validator(g).Run(context.Background(), root.request(build.ModeValidate))
	if err != nil {
		return nil, err
	}
	return res.Table, nil
}

// RoutesPrintCmd implements 'routes print'.
type RoutesPrintCmd struct {
	TableSource `embed:""`
	Locale string `short:"l" help:"Only print this locale"`
	JSON   bool   `name:"json" help:"Print the serialized table"`
}

func (p *RoutesPrintCmd) Run(g *Global, root *CLI) error {
	table, err := p.load(g, root)
	if err != nil {
		return err
	}
	if p.JSON {
		data, err := table.Bytes()
		if err != nil {
			return err
		}
		_, err = g.out().Write(data)
		return err
	}

	found := false
	for i := range table.Locales {
		l := &table.Locales[i]
		if p.Locale != "" && l.Locale != p.Locale {
			continue
		}
		found = true
		printLocale(g.out(), l)
	}
	if !found && p.Locale != "" {
		return errors.NewError(errors.CategoryNotFound, "locale has no routes").
			WithContext("locale", p.Locale).Build()
	}
	return nil
}

func printLocale(w io.Writer, l *routes.LocaleRoutes) {
	_, _ = fmt.Fprintf(w, "%s (%s)\n", l.Locale, l.BaseURL)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	var visit func(nodes []*routes.RouteNode, depth int)
	visit = func(nodes []*routes.RouteNode, depth int) {
		for _, n := range nodes {
			_, _ = fmt.Fprintf(tw, "%s%s\t%s\t%s\n", strings.Repeat("  ", depth+1), n.Path, n.Component, n.DocID)
			visit(n.Routes, depth+1)
		}
	}
	visit(l.Routes, 0)
	_ = tw.Flush()
}

// RoutesLookupCmd implements 'routes lookup'.
type RoutesLookupCmd struct {
	TableSource `embed:""`
	Path string `arg:"" help:"URL path, e.g. /zh-CN/guide/getting-started"`
	JSON bool   `name:"json" help:"Print the match as JSON"`
}

func (c *RoutesLookupCmd) Run(g *Global, root *CLI) error {
	table, err := c.load(g, root)
	if err != nil {
		return err
	}
	m, ok := table.Lookup(c.Path)
	if !ok {
		return errors.NewError(errors.CategoryNotFound, "no route matches path").
			WithContext("path", c.Path).Build()
	}
	if c.JSON {
		return printJSON(g.out(), m)
	}
	_, _ = fmt.Fprintf(g.out(), "%s %s %s %s %s\n", m.Locale, m.Kind, m.Route.Path, m.Route.Component, m.Route.DocID)
	return nil
}
