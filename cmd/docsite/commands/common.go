package commands

import (
	stdErrors "errors"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docsite/internal/build"
	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/eventstore"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/notify"
	"git.home.luguber.info/inful/docsite/internal/storage"
	"git.home.luguber.info/inful/docsite/internal/version"
)

// LogLevelEnv overrides the log level when -v is not given.
const LogLevelEnv = "DOCSITE_LOG_LEVEL"

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
	// Out receives command output; nil means stdout.
	Out io.Writer
}

func (g *Global) out() io.Writer {
	if g == nil || g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

func (g *Global) logger() *slog.Logger {
	if g == nil || g.Logger == nil {
		return slog.Default()
	}
	return g.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Site configuration file" default:"docsite.yaml" env:"DOCSITE_CONFIG"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build    BuildCmd    `cmd:"" help:"Build the route table, search indexes and manifest"`
	Validate ValidateCmd `cmd:"" help:"Validate configuration, sidebars, routes and links without writing anything"`
	Check    CheckCmd    `cmd:"" help:"Fail when the committed route table differs from the generated one"`
	Init     InitCmd     `cmd:"" help:"Initialize a new site configuration"`
	Routes   RoutesCmd   `cmd:"" help:"Inspect the route table"`
	Serve    ServeCmd    `cmd:"" help:"Rebuild on change and serve the artifacts for local tooling"`
	History  HistoryCmd  `cmd:"" help:"Show recent builds from the event log"`
	MCP      MCPCmd      `cmd:"" name:"mcp" help:"Serve route and navigation tools over MCP on stdio"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLogLevel(c.Verbose)}))
	slog.SetDefault(logger)
	return nil
}

// parseLogLevel maps -v and DOCSITE_LOG_LEVEL to a level. -v wins.
func parseLogLevel(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	var level slog.Level
	if raw := strings.TrimSpace(os.Getenv(LogLevelEnv)); raw != "" {
		if err := level.UnmarshalText([]byte(raw)); err == nil {
			return level
		}
	}
	return slog.LevelInfo
}

// request returns a build request for the root configuration.
func (c *CLI) request(mode build.Mode) build.Request {
	return build.Request{ConfigPath: c.Config, Mode: mode, Trigger: "cli"}
}

// validator returns a service for builds that write nothing.
func validator(g *Global) *build.Service {
	return build.NewService(version.Version).WithLogger(g.logger())
}

// backends are the stores a writing build records into.
type backends struct {
	store     *storage.FSStore
	events    *eventstore.SQLiteStore
	publisher notify.Publisher
}

// openBackends opens the object store, the event log and the notification
// publisher configured for the site at configPath. An unreachable NATS
// server only disables notifications.
func openBackends(configPath string) (*config.SiteConfig, *backends, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	store, err := storage.NewFSStore(cfg.StateDir())
	if err != nil {
		return nil, nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to open object store").
			WithContext("path", cfg.StateDir()).Build()
	}
	events, err := eventstore.NewSQLiteStore(cfg.ResolvePath(cfg.Build.EventsDB))
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	publisher, err := notify.New(cfg.Notifications)
	if err != nil {
		slog.Warn("Build notifications disabled", slog.String("url", cfg.Notifications.NATSURL), logfields.Error(err))
		publisher = notify.NoopPublisher{}
	}
	return cfg, &backends{store: store, events: events, publisher: publisher}, nil
}

func (b *backends) service(g *Global, recorder metrics.Recorder) *build.Service {
	svc := build.NewService(version.Version).
		WithLogger(g.logger()).
		WithStore(b.store).
		WithEventStore(b.events).
		WithPublisher(b.publisher)
	if recorder != nil {
		svc = svc.WithRecorder(recorder)
	}
	return svc
}

func (b *backends) Close() error {
	var errs []error
	if err := b.publisher.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := b.events.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := b.store.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := stdErrors.Join(errs...); err != nil {
		slog.Warn("Failed to close backends", logfields.Error(err))
		return err
	}
	return nil
}
