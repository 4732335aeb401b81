// Package eventstore is the append-only build event log behind `docsite
// history`. Events are stored in SQLite and folded into BuildSummary read
// models.
package eventstore

import (
	"context"
	"time"
)

// Store persists and retrieves build events.
type Store interface {
	// Append adds an event. The store assigns ID and, when unset, Timestamp.
	Append(ctx context.Context, event Event) error

	// ByBuild returns all events of one build in append order.
	ByBuild(ctx context.Context, buildID string) ([]Event, error)

	// Range returns events with start <= timestamp <= end in append order.
	Range(ctx context.Context, start, end time.Time) ([]Event, error)

	Close() error
}
