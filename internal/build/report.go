package build

import (
	stderrors "errors"
	"time"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

// Outcome is the final state of a build.
type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeFailed    Outcome = "failed"
	OutcomeCanceled  Outcome = "canceled"
)

// Warning is a non-fatal problem found during a build.
type Warning struct {
	Stage    StageName            `json:"stage"`
	Category errors.ErrorCategory `json:"category,omitempty"`
	Message  string               `json:"message"`
}

// Report collects timings, stage outcomes and warnings of one build.
type Report struct {
	BuildID        string                      `json:"build_id"`
	Start          time.Time                   `json:"start"`
	End            time.Time                   `json:"end"`
	Outcome        Outcome                     `json:"outcome"`
	StageDurations map[StageName]time.Duration `json:"stage_durations"`
	StageResults   map[StageName]StageResult   `json:"stage_results"`

	// Stages lists the stages that ran or were skipped, in order.
	Stages []StageName `json:"stages"`

	Warnings   []Warning `json:"warnings,omitempty"`
	SkipReason string    `json:"skip_reason,omitempty"`

	// FailedStage is set when the build failed or was canceled.
	FailedStage StageName `json:"failed_stage,omitempty"`

	Pages     map[string]int `json:"pages,omitempty"`
	TableHash string         `json:"table_hash,omitempty"`
	Files     []string       `json:"files,omitempty"`
}

func newReport(buildID string) *Report {
	return &Report{
		BuildID:        buildID,
		Start:          time.Now(),
		StageDurations: make(map[StageName]time.Duration),
		StageResults:   make(map[StageName]StageResult),
	}
}

// Duration is the wall-clock duration of the build.
func (r *Report) Duration() time.Duration {
	if r.End.IsZero() {
		return time.Since(r.Start)
	}
	return r.End.Sub(r.Start)
}

func (r *Report) record(stage StageName, result StageResult, d time.Duration) {
	r.Stages = append(r.Stages, stage)
	r.StageResults[stage] = result
	r.StageDurations[stage] = d
}

// addWarnings records one warning per joined error of err.
func (r *Report) addWarnings(stage StageName, err error) {
	var errs []error
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	} else if ce, ok := errors.AsClassified(err); ok && ce.Cause() != nil {
		if joined, ok := ce.Cause().(interface{ Unwrap() []error }); ok {
			errs = joined.Unwrap()
		}
	}
	if len(errs) == 0 {
		errs = []error{err}
	}
	for _, e := range errs {
		r.Warnings = append(r.Warnings, Warning{Stage: stage, Category: errors.GetCategory(e), Message: e.Error()})
	}
}

// StageWarnings returns the warnings recorded by one stage.
func (r *Report) StageWarnings(stage StageName) int {
	n := 0
	for _, w := range r.Warnings {
		if w.Stage == stage {
			n++
		}
	}
	return n
}

func (r *Report) finish(err error) {
	r.End = time.Now()
	var se *StageError
	switch {
	case err == nil && r.SkipReason != "":
		r.Outcome = OutcomeUnchanged
	case err == nil:
		r.Outcome = OutcomeSuccess
	case stderrors.As(err, &se) && se.Kind == StageErrorCanceled:
		r.Outcome = OutcomeCanceled
		r.FailedStage = se.Stage
	case stderrors.As(err, &se):
		r.Outcome = OutcomeFailed
		r.FailedStage = se.Stage
	default:
		r.Outcome = OutcomeFailed
	}
}
