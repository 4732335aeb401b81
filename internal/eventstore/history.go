package eventstore

import (
	"context"
	"sort"
	"time"
)

// Build statuses of a summary.
const (
	StatusRunning   = "running"
	StatusFailed    = "failed"
	StatusCanceled  = "canceled"
	StatusSuccess   = "success"
	StatusUnchanged = "unchanged"
)

// BuildSummary is the read model of one build, folded from its events.
type BuildSummary struct {
	BuildID     string         `json:"build_id"`
	Status      string         `json:"status"`
	Trigger     string         `json:"trigger,omitempty"`
	Commit      string         `json:"commit,omitempty"`
	StartedAt   time.Time      `json:"started_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	Duration    time.Duration  `json:"duration"`
	Stages      int            `json:"stages"`
	Warnings    int            `json:"warnings"`
	Pages       map[string]int `json:"pages,omitempty"`
	TableHash   string         `json:"table_hash,omitempty"`
	ErrorStage  string         `json:"error_stage,omitempty"`
	Error       string         `json:"error,omitempty"`
}

// Summarize folds events into one summary per build, newest first.
// Events of unknown types are ignored.
func Summarize(events []Event) []BuildSummary {
	byID := make(map[string]*BuildSummary)
	var order []*BuildSummary

	for _, e := range events {
		if e.BuildID == "" {
			continue
		}
		s, ok := byID[e.BuildID]
		if !ok {
			s = &BuildSummary{BuildID: e.BuildID, Status: StatusRunning, StartedAt: e.Timestamp}
			byID[e.BuildID] = s
			order = append(order, s)
		}
		apply(s, e)
	}

	out := make([]BuildSummary, 0, len(order))
	for _, s := range order {
		out = append(out, *s)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	return out
}

func apply(s *BuildSummary, e Event) {
	switch e.Type {
	case TypeBuildStarted:
		var p BuildStarted
		if e.Decode(&p) == nil {
			s.Trigger = p.Trigger
		}
		s.StartedAt = e.Timestamp

	case TypeStageCompleted:
		var p StageCompleted
		if e.Decode(&p) == nil && !p.Skipped {
			s.Stages++
		}

	case TypeBuildCompleted:
		var p BuildCompleted
		if e.Decode(&p) == nil {
			s.Status = p.Status
			s.Warnings = p.Warnings
			s.Pages = p.Pages
			s.TableHash = p.TableHash
			s.Commit = p.Commit
			s.Duration = time.Duration(p.DurationMS) * time.Millisecond
		}
		if s.Status == "" {
			s.Status = StatusSuccess
		}
		done := e.Timestamp
		s.CompletedAt = &done

	case TypeBuildFailed:
		var p BuildFailed
		s.Status = StatusFailed
		if e.Decode(&p) == nil {
			s.ErrorStage = p.Stage
			s.Error = p.Error
			s.Duration = time.Duration(p.DurationMS) * time.Millisecond
			if p.Canceled {
				s.Status = StatusCanceled
			}
		}
		done := e.Timestamp
		s.CompletedAt = &done
	}
}

// History returns the most recent builds, newest first. limit <= 0 means all.
func History(ctx context.Context, store Store, limit int) ([]BuildSummary, error) {
	events, err := store.Range(ctx, time.Time{}, time.Now().Add(time.Hour))
	if err != nil {
		return nil, err
	}
	summaries := Summarize(events)
	if limit > 0 && len(summaries) > limit {
		summaries = summaries[:limit]
	}
	return summaries, nil
}
