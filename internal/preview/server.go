package preview

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"git.home.luguber.info/inful/docsite/internal/build"
	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
)

// snapshot is the immutable view the HTTP handlers read. A rebuild replaces
// it wholesale.
type snapshot struct {
	// result is the latest build that produced a route table.
	result *build.Result
	// config is the latest configuration that loaded.
	config    *config.SiteConfig
	lastErr   error
	lastBuild time.Time
	trigger   string
	builds    int
}

// Server owns the current build result and the handlers exposing it.
type Server struct {
	builder Builder
	req     build.Request
	version string
	logger  *slog.Logger
	errs    *errors.HTTPErrorAdapter
	metrics http.Handler
	started time.Time

	mu      sync.Mutex // serializes builds
	current atomic.Pointer[snapshot]
	pending chan string
}

// NewServer creates a Server. Nothing is built until Rebuild or Request.
func NewServer(b Builder, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		builder: b,
		req:     opts.Request,
		version: opts.Version,
		logger:  logger,
		errs:    errors.NewHTTPErrorAdapter(logger),
		metrics: opts.Metrics,
		started: time.Now(),
		pending: make(chan string, 1),
	}
	s.current.Store(&snapshot{})
	return s
}

// Rebuild runs a build now and publishes its result. A failed build keeps
// the previous artifacts and records the error for /healthz.
func (s *Server) Rebuild(ctx context.Context, trigger string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	req := s.req
	req.Trigger = trigger
	if trigger == "schedule" {
		req.Force = true
	}
	res, err := s.builder.Run(ctx, req)

	prev := s.current.Load()
	next := &snapshot{
		result:    prev.result,
		config:    prev.config,
		lastErr:   err,
		lastBuild: time.Now(),
		trigger:   trigger,
		builds:    prev.builds + 1,
	}
	if res != nil && res.Config != nil {
		next.config = res.Config
	}
	if err == nil && res != nil && res.Table != nil {
		next.result = res
	}
	s.current.Store(next)

	if err != nil {
		s.logger.Warn("Rebuild failed", slog.String("trigger", trigger), logfields.Error(err))
		return err
	}
	s.logger.Info("Rebuild finished", slog.String("trigger", trigger), slog.String("outcome", string(res.Outcome)))
	return nil
}

// Request asks the worker for a rebuild. While one is running at most one
// follow-up is queued; further requests fold into it.
func (s *Server) Request(trigger string) {
	select {
	case s.pending <- trigger:
	default:
	}
}

func (s *Server) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case trigger := <-s.pending:
			_ = s.Rebuild(ctx, trigger)
		}
	}
}

// Config returns the last configuration that loaded, or nil.
func (s *Server) Config() *config.SiteConfig {
	return s.current.Load().config
}

// Result returns the last build that produced a route table, or nil.
func (s *Server) Result() *build.Result {
	return s.current.Load().result
}

// Handler returns the HTTP routes wrapped in logging and panic recovery.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /routes.json", s.handleRouteTable)
	mux.HandleFunc("GET /api/routes", s.handleLookup)
	mux.HandleFunc("GET /api/nav", s.handleNavigation)
	mux.HandleFunc("GET /search/{locale}/{file}", s.handleSearchIndex)
	mux.HandleFunc("GET /api/search", s.handleSearch)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics)
	}
	return chain(s.logger, s.errs)(mux)
}
