package commands

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/docsite/internal/build"
	"git.home.luguber.info/inful/docsite/internal/drift"
)

// CheckCmd implements the 'check' command.
type CheckCmd struct {
	Table string `help:"Committed route table (defaults to routes.json in the output directory)" type:"path"`
}

func (c *CheckCmd) Run(g *Global, root *CLI) error {
	rep, err := drift.Check(context.Background(), validator(g), root.request(build.ModeValidate), c.Table)
	if err != nil {
		return err
	}
	out := g.out()
	switch {
	case rep.Missing:
		_, _ = fmt.Fprintf(out, "%s does not exist\n", rep.Path)
	case rep.Diff != "":
		_, _ = fmt.Fprint(out, rep.Diff)
	default:
		_, _ = fmt.Fprintf(out, "%s is up to date\n", rep.Path)
	}
	return rep.Err()
}
