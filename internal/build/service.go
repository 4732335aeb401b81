package build

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/content"
	"git.home.luguber.info/inful/docsite/internal/eventstore"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/manifest"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/notify"
	"git.home.luguber.info/inful/docsite/internal/routes"
	"git.home.luguber.info/inful/docsite/internal/search"
	"git.home.luguber.info/inful/docsite/internal/sidebar"
	"git.home.luguber.info/inful/docsite/internal/storage"
)

// Mode selects how far the pipeline runs.
type Mode string

const (
	// ModeBuild runs every stage and writes artifacts.
	ModeBuild Mode = "build"
	// ModeValidate stops after the search stage and writes nothing.
	ModeValidate Mode = "validate"
)

// Request contains the inputs of one build.
type Request struct {
	ConfigPath    string
	Mode          Mode
	IncludeDrafts bool
	// Force disables the unchanged-inputs skip.
	Force bool
	// Trigger is recorded in the event log: "cli", "watch" or "schedule".
	Trigger string
}

// Result is the outcome of a build together with the artifacts it derived.
// Artifact fields are nil when the build failed before producing them.
type Result struct {
	BuildID  string
	Outcome  Outcome
	Report   *Report
	Config   *config.SiteConfig
	Sidebars *sidebar.Sidebars
	Sets     map[string]*content.Set
	Table    *routes.Table
	Indexes  []*search.Index
	Manifest *manifest.BuildManifest
}

// Service runs builds. The zero value is not usable; use NewService.
type Service struct {
	version   string
	logger    *slog.Logger
	recorder  metrics.Recorder
	store     storage.ObjectStore
	events    eventstore.Store
	publisher notify.Publisher
}

// NewService creates a Service with noop metrics, no object store, no event
// log and no notifications.
func NewService(version string) *Service {
	return &Service{
		version:   version,
		logger:    slog.Default(),
		recorder:  metrics.NoopRecorder{},
		publisher: notify.NoopPublisher{},
	}
}

// WithLogger sets the logger.
func (s *Service) WithLogger(l *slog.Logger) *Service {
	s.logger = l
	return s
}

// WithRecorder sets the metrics recorder.
func (s *Service) WithRecorder(r metrics.Recorder) *Service {
	s.recorder = r
	return s
}

// WithStore records artifacts and manifests in an object store.
func (s *Service) WithStore(store storage.ObjectStore) *Service {
	s.store = store
	return s
}

// WithEventStore records build events.
func (s *Service) WithEventStore(events eventstore.Store) *Service {
	s.events = events
	return s
}

// WithPublisher publishes build completions.
func (s *Service) WithPublisher(p notify.Publisher) *Service {
	s.publisher = p
	return s
}

// Pipeline returns the stages for mode.
func (s *Service) Pipeline(mode Mode) []StageDef {
	writes := mode != ModeValidate
	return NewPipeline().
		Add(StageLoadConfig, s.stageLoadConfig).
		Add(StageLoadSidebar, s.stageLoadSidebar).
		Add(StageDiscoverContent, s.stageDiscoverContent).
		Add(StageValidateSidebar, s.stageValidateSidebar).
		Add(StageGenerateRoutes, s.stageGenerateRoutes).
		Add(StageValidateRoutes, s.stageValidateRoutes).
		Add(StageCheckLinks, s.stageCheckLinks).
		Add(StageBuildSearch, s.stageBuildSearch).
		AddIf(writes, StageWriteArtifacts, s.stageWriteArtifacts).
		SkipIf(s.skipUnchanged).
		AddIf(writes, StageRecordManifest, s.stageRecordManifest).
		SkipIf(s.skipUnchanged).
		Build()
}

// Run executes a build. The returned Result is never nil; err is the
// StageError of the failed or canceled stage.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	if req.Mode == "" {
		req.Mode = ModeBuild
	}
	if req.Trigger == "" {
		req.Trigger = "cli"
	}
	if req.ConfigPath == "" {
		req.ConfigPath = config.DefaultFileName
	}

	buildID := uuid.NewString()
	st := &State{
		Request: req,
		BuildID: buildID,
		Report:  newReport(buildID),
		Logger:  s.logger.With(logfields.BuildID(buildID)),
	}
	st.Logger.Info("Build started", slog.String("mode", string(req.Mode)), slog.String("trigger", req.Trigger))

	s.emit(ctx, st, func() (eventstore.Event, error) {
		return eventstore.NewBuildStarted(buildID, eventstore.BuildStarted{
			Version: s.version,
			Trigger: req.Trigger,
			Config:  req.ConfigPath,
		})
	})

	err := runStages(ctx, st, s.Pipeline(req.Mode), s)
	st.Report.finish(err)
	if st.Table != nil {
		st.Report.Pages = st.Table.PageCount()
	}

	s.recorder.ObserveBuildDuration(st.Report.Duration())
	s.recorder.IncBuildOutcome(string(st.Report.Outcome))
	s.complete(ctx, st, err)

	m := st.Manifest
	if st.Report.Outcome == OutcomeUnchanged {
		m = st.Previous
	}
	return &Result{
		BuildID:  buildID,
		Outcome:  st.Report.Outcome,
		Report:   st.Report,
		Config:   st.Config,
		Sidebars: st.Sidebars,
		Sets:     st.Sets,
		Table:    st.Table,
		Indexes:  st.Indexes,
		Manifest: m,
	}, err
}

// OnStageComplete implements StageObserver.
func (s *Service) OnStageComplete(st *State, stage StageName, d time.Duration, result StageResult) {
	s.recorder.ObserveStageDuration(string(stage), d)
	s.recorder.IncStageResult(string(stage), metricsResult(result))
	if result == StageResultCanceled {
		return
	}
	s.emit(context.Background(), st, func() (eventstore.Event, error) {
		return eventstore.NewStageCompleted(st.BuildID, eventstore.StageCompleted{
			Stage:      string(stage),
			DurationMS: d.Milliseconds(),
			Warnings:   st.Report.StageWarnings(stage),
			Skipped:    result == StageResultSkipped,
		})
	})
}

func (s *Service) complete(ctx context.Context, st *State, err error) {
	r := st.Report
	durationMS := r.Duration().Milliseconds()
	log := st.Logger.With(logfields.DurationMS(float64(durationMS)))

	if err != nil {
		category := ""
		if ce, ok := errors.AsClassified(err); ok {
			category = string(ce.Category())
		}
		log.Error("Build failed", logfields.Stage(string(r.FailedStage)), logfields.Error(err))
		s.emit(context.WithoutCancel(ctx), st, func() (eventstore.Event, error) {
			return eventstore.NewBuildFailed(st.BuildID, eventstore.BuildFailed{
				Stage:      string(r.FailedStage),
				Category:   category,
				Error:      err.Error(),
				DurationMS: durationMS,
				Canceled:   r.Outcome == OutcomeCanceled,
			})
		})
		return
	}

	log.Info("Build complete",
		slog.String("outcome", string(r.Outcome)),
		slog.Int("warnings", len(r.Warnings)),
		slog.Any("pages", r.Pages))

	if st.Request.Mode != ModeBuild {
		return
	}
	commit := ""
	if st.Git != nil {
		commit = st.Git.Commit
	}
	s.emit(ctx, st, func() (eventstore.Event, error) {
		return eventstore.NewBuildCompleted(st.BuildID, eventstore.BuildCompleted{
			Status:     string(r.Outcome),
			DurationMS: durationMS,
			Pages:      r.Pages,
			TableHash:  r.TableHash,
			Warnings:   len(r.Warnings),
			Commit:     commit,
			Manifest:   st.ManifestObject,
		})
	})

	routeCount := 0
	for _, n := range r.Pages {
		routeCount += n
	}
	pubErr := s.publisher.PublishBuildCompleted(ctx, notify.BuildCompleted{
		BuildID:   st.BuildID,
		Status:    string(r.Outcome),
		Pages:     r.Pages,
		Routes:    routeCount,
		TableHash: r.TableHash,
		Warnings:  len(r.Warnings),
	})
	if pubErr != nil {
		log.Warn("Failed to publish build notification", logfields.Error(pubErr))
	}
}

// emit appends an event when an event store is configured and the build
// writes. Event log failures never fail the build.
func (s *Service) emit(ctx context.Context, st *State, mk func() (eventstore.Event, error)) {
	if s.events == nil || st.Request.Mode != ModeBuild {
		return
	}
	event, err := mk()
	if err == nil {
		err = s.events.Append(ctx, event)
	}
	if err != nil {
		st.Logger.Warn("Failed to record build event", logfields.Error(err))
	}
}
