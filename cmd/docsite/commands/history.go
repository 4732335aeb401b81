package commands

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/eventstore"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit int  `short:"n" help:"Number of builds to show" default:"10"`
	JSON  bool `name:"json" help:"Print the summaries as JSON"`
}

func (h *HistoryCmd) Run(g *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	store, err := eventstore.NewSQLiteStore(cfg.ResolvePath(cfg.Build.EventsDB))
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	builds, err := eventstore.History(context.Background(), store, h.Limit)
	if err != nil {
		return err
	}
	if h.JSON {
		return printJSON(g.out(), builds)
	}
	if len(builds) == 0 {
		_, _ = fmt.Fprintln(g.out(), "No builds recorded")
		return nil
	}

	tw := tabwriter.NewWriter(g.out(), 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "BUILD\tSTARTED\tSTATUS\tTRIGGER\tDURATION\tWARNINGS\tDETAIL")
	for _, b := range builds {
		detail := b.TableHash
		if b.Error != "" {
			detail = b.ErrorStage + ": " + b.Error
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			b.BuildID, b.StartedAt.Local().Format(time.DateTime), b.Status, b.Trigger,
			b.Duration.Round(time.Millisecond), b.Warnings, detail)
	}
	return tw.Flush()
}
