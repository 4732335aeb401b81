// Package preview keeps the build artifacts of a site fresh while its author
// edits it, and serves them over HTTP for local tooling.
package preview

import (
	"context"
	stdErrors "errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"git.home.luguber.info/inful/docsite/internal/build"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
)

// DefaultQuietWindow is how long the watcher waits for changes to settle.
const DefaultQuietWindow = 300 * time.Millisecond

// Builder runs one build. *build.Service implements it.
type Builder interface {
	Run(ctx context.Context, req build.Request) (*build.Result, error)
}

// Options configures Run.
type Options struct {
	// Addr is the listen address, e.g. "127.0.0.1:3000". Ignored when Listener is set.
	Addr     string
	Listener net.Listener
	Request  build.Request
	// QuietWindow defaults to DefaultQuietWindow.
	QuietWindow time.Duration
	// Schedule is a cron expression for periodic forced rebuilds. Empty
	// falls back to build.schedule of the site configuration.
	Schedule string
	// Metrics is mounted at /metrics when set.
	Metrics http.Handler
	Version string
	Logger  *slog.Logger
}

// Run builds the site, then watches its sources, rebuilds on change and on
// schedule, and serves the current artifacts until ctx is canceled.
//
// A failing initial build is served as unhealthy so the author can fix it in
// place; only a configuration that cannot be loaded at all aborts Run.
func Run(ctx context.Context, b Builder, opts Options) error {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.QuietWindow <= 0 {
		opts.QuietWindow = DefaultQuietWindow
	}
	log := opts.Logger

	srv := NewServer(b, opts)
	initialErr := srv.Rebuild(ctx, "initial")
	cfg := srv.Config()
	if cfg == nil {
		return initialErr
	}
	if initialErr != nil {
		log.Warn("Initial build failed; serving without artifacts until the next rebuild", logfields.Error(initialErr))
	}

	watcher, err := NewWatcher(cfg, opts.Request.ConfigPath, opts.QuietWindow, func() { srv.Request("watch") }, log)
	if err != nil {
		return err
	}

	expr := opts.Schedule
	if expr == "" {
		expr = cfg.Build.Schedule
	}
	var sched *Scheduler
	if expr != "" {
		sched, err = NewScheduler(expr, func() { srv.Request("schedule") }, log)
		if err != nil {
			_ = watcher.Close()
			return err
		}
	}

	ln := opts.Listener
	if ln == nil {
		ln, err = net.Listen("tcp", opts.Addr)
		if err != nil {
			_ = watcher.Close()
			if sched != nil {
				_ = sched.Stop()
			}
			return errors.WrapError(err, errors.CategoryRuntime, "failed to listen").
				WithContext("addr", opts.Addr).Build()
		}
	}
	httpServer := &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	serveErr := make(chan error, 1)

	wg.Add(3)
	go func() {
		defer wg.Done()
		srv.work(runCtx)
	}()
	go func() {
		defer wg.Done()
		if werr := watcher.Run(runCtx); werr != nil {
			log.Error("Source watcher stopped", logfields.Error(werr))
		}
	}()
	go func() {
		defer wg.Done()
		if serr := httpServer.Serve(ln); serr != nil && !stdErrors.Is(serr, http.ErrServerClosed) {
			serveErr <- serr
			cancel()
		}
	}()
	if sched != nil {
		sched.Start()
	}

	log.Info("Preview server listening", slog.String("addr", ln.Addr().String()))
	<-runCtx.Done()
	log.Info("Shutting down preview server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP server shutdown error", logfields.Error(err))
	}
	if sched != nil {
		if err := sched.Stop(); err != nil {
			log.Warn("Scheduler shutdown error", logfields.Error(err))
		}
	}
	wg.Wait()

	select {
	case err := <-serveErr:
		return errors.WrapError(err, errors.CategoryRuntime, "preview server failed").Build()
	default:
		return nil
	}
}
