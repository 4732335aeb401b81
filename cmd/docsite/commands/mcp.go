package commands

import (
	"context"

	"git.home.luguber.info/inful/docsite/internal/build"
	"git.home.luguber.info/inful/docsite/internal/mcpserver"
	"git.home.luguber.info/inful/docsite/internal/version"
)

// MCPCmd implements the 'mcp' command.
type MCPCmd struct{}

func (m *MCPCmd) Run(g *Global, root *CLI) error {
	res, err := validator(g).Run(context.Background(), root.request(build.ModeValidate))
	if err != nil {
		return err
	}
	return mcpserver.ServeStdio(mcpserver.NewServer(version.Version, mcpserver.Static(res)))
}
