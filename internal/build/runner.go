package build

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/metrics"
)

// StageObserver is notified after every stage; the event log and metrics hang off it.
type StageObserver interface {
	OnStageComplete(st *State, stage StageName, d time.Duration, result StageResult)
}

// runStages executes stages in order, recording timing and stopping on the
// first fatal or canceled stage.
func runStages(ctx context.Context, st *State, defs []StageDef, obs StageObserver) error {
	for _, def := range defs {
		if err := ctx.Err(); err != nil {
			se := newCanceledStageError(def.Name, err)
			st.Report.record(def.Name, StageResultCanceled, 0)
			obs.OnStageComplete(st, def.Name, 0, StageResultCanceled)
			return se
		}

		if def.SkipIf != nil {
			if skip, reason := def.SkipIf(st); skip {
				st.Logger.Info("Stage skipped", logfields.Stage(string(def.Name)), slog.String("reason", reason))
				st.Report.SkipReason = reason
				st.Report.record(def.Name, StageResultSkipped, 0)
				obs.OnStageComplete(st, def.Name, 0, StageResultSkipped)
				continue
			}
		}

		t0 := time.Now()
		err := def.Fn(ctx, st)
		dur := time.Since(t0)

		result, se := classify(ctx, def.Name, err)
		if result == StageResultWarning {
			st.Report.addWarnings(def.Name, se.Err)
		}
		st.Report.record(def.Name, result, dur)
		obs.OnStageComplete(st, def.Name, dur, result)

		st.Logger.Debug("Stage complete",
			logfields.Stage(string(def.Name)),
			logfields.DurationMS(float64(dur.Microseconds())/1000),
			slog.String("result", string(result)))

		if result == StageResultFatal || result == StageResultCanceled {
			return se
		}
	}
	return nil
}

// classify normalizes a stage's return value. Plain errors are fatal;
// context errors are cancellations.
func classify(ctx context.Context, stage StageName, err error) (StageResult, *StageError) {
	if err == nil {
		return StageResultSuccess, nil
	}
	var se *StageError
	if !stderrors.As(err, &se) {
		if ctx.Err() != nil && (stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded)) {
			se = newCanceledStageError(stage, err)
		} else {
			se = newFatalStageError(stage, err)
		}
	}
	switch se.Kind {
	case StageErrorWarning:
		return StageResultWarning, se
	case StageErrorCanceled:
		return StageResultCanceled, se
	default:
		return StageResultFatal, se
	}
}

func metricsResult(r StageResult) metrics.ResultLabel {
	switch r {
	case StageResultWarning:
		return metrics.ResultWarning
	case StageResultFatal:
		return metrics.ResultFatal
	case StageResultCanceled:
		return metrics.ResultCanceled
	case StageResultSkipped:
		return metrics.ResultSkipped
	default:
		return metrics.ResultSuccess
	}
}
