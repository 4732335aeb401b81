package commands

import (
	"fmt"
	"path/filepath"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/scaffold"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force    bool `help:"Overwrite existing files"`
	NoSample bool `name:"no-sample" help:"Only write the configuration, no example docs"`
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	out := g.out()
	_, _ = fmt.Fprintln(out, "Initializing docsite project")
	_, _ = fmt.Fprintf(out, "Writing configuration to %s\n", root.Config)
	if err := config.Init(root.Config, i.Force); err != nil {
		_, _ = fmt.Fprintln(out, "Initialization failed")
		return err
	}
	if !i.NoSample {
		written, err := scaffold.Write(filepath.Dir(root.Config), i.Force)
		if err != nil {
			_, _ = fmt.Fprintln(out, "Initialization failed")
			return err
		}
		for _, f := range written {
			_, _ = fmt.Fprintf(out, "  created %s\n", f)
		}
	}
	_, _ = fmt.Fprintln(out, "initialized successfully")
	return nil
}
