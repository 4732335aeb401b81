package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/docsite/internal/build"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/preview"
	"git.home.luguber.info/inful/docsite/internal/version"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Addr     string        `short:"a" help:"Listen address" default:"127.0.0.1:3000"`
	Drafts   bool          `help:"Include docs marked draft"`
	Schedule string        `help:"Cron expression for forced rebuilds (overrides build.schedule)"`
	Quiet    time.Duration `help:"How long source changes must settle before a rebuild" default:"300ms"`
}

func (s *ServeCmd) Run(g *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	_, be, err := openBackends(root.Config)
	if err != nil {
		return err
	}
	defer func() { _ = be.Close() }()

	reg := prom.NewRegistry()
	svc := be.service(g, metrics.NewPrometheusRecorder(reg))

	req := root.request(build.ModeBuild)
	req.IncludeDrafts = s.Drafts

	_, _ = fmt.Fprintf(g.out(), "Serving on http://%s (Ctrl+C to stop)\n", s.Addr)
	return preview.Run(ctx, svc, preview.Options{
		Addr:        s.Addr,
		Request:     req,
		QuietWindow: s.Quiet,
		Schedule:    s.Schedule,
		Metrics:     metrics.HTTPHandler(reg),
		Version:     version.Version,
		Logger:      g.logger(),
	})
}
