package preview

import (
	"log/slog"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

// Scheduler requests a full rebuild on a cron schedule.
type Scheduler struct {
	scheduler gocron.Scheduler
	logger    *slog.Logger
}

// NewScheduler registers run under the five-field cron expression expr.
func NewScheduler(expr string, run func(), logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryRuntime, "failed to create scheduler").Build()
	}
	_, err = s.NewJob(
		gocron.CronJob(expr, false),
		gocron.NewTask(run),
		gocron.WithName("scheduled-rebuild"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, errors.WrapError(err, errors.CategoryConfig, "invalid build schedule").
			WithContext("schedule", expr).Build()
	}
	return &Scheduler{scheduler: s, logger: logger}, nil
}

// Start begins firing jobs.
func (s *Scheduler) Start() {
	s.logger.Info("Starting rebuild scheduler")
	s.scheduler.Start()
}

// Stop waits for a running job and shuts the scheduler down.
func (s *Scheduler) Stop() error {
	s.logger.Info("Stopping rebuild scheduler")
	return s.scheduler.Shutdown()
}
