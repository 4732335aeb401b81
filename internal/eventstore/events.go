package eventstore

import (
	"encoding/json"
	"time"
)

// BuildStarted is recorded when a build begins.
type BuildStarted struct {
	Version string `json:"version"`
	// Trigger is what started the build: "cli", "watch" or "schedule".
	Trigger string `json:"trigger"`
	Config  string `json:"config"`
}

// StageCompleted is recorded after every pipeline stage that ran.
type StageCompleted struct {
	Stage      string `json:"stage"`
	DurationMS int64  `json:"duration_ms"`
	Warnings   int    `json:"warnings"`
	Skipped    bool   `json:"skipped,omitempty"`
}

// BuildCompleted is recorded when a build finishes without a fatal error.
type BuildCompleted struct {
	Status     string         `json:"status"`
	DurationMS int64          `json:"duration_ms"`
	Pages      map[string]int `json:"pages"`
	TableHash  string         `json:"table_hash"`
	Warnings   int            `json:"warnings"`
	Commit     string         `json:"commit,omitempty"`
	// Manifest is the object store hash of the build manifest.
	Manifest string `json:"manifest,omitempty"`
}

// BuildFailed is recorded when a stage fails fatally or the build is canceled.
type BuildFailed struct {
	Stage      string `json:"stage"`
	Category   string `json:"category,omitempty"`
	Error      string `json:"error"`
	DurationMS int64  `json:"duration_ms"`
	Canceled   bool   `json:"canceled,omitempty"`
}

// NewEvent builds an event of the given type with a JSON payload.
func NewEvent(buildID, eventType string, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, wrap(ErrMarshalPayloadFailed, err).
			WithContext("build_id", buildID).
			WithContext("event_type", eventType)
	}
	return Event{
		BuildID:   buildID,
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Payload:   data,
	}, nil
}

// NewBuildStarted creates a BuildStarted event.
func NewBuildStarted(buildID string, p BuildStarted) (Event, error) {
	return NewEvent(buildID, TypeBuildStarted, p)
}

// NewStageCompleted creates a StageCompleted event.
func NewStageCompleted(buildID string, p StageCompleted) (Event, error) {
	return NewEvent(buildID, TypeStageCompleted, p)
}

// NewBuildCompleted creates a BuildCompleted event.
func NewBuildCompleted(buildID string, p BuildCompleted) (Event, error) {
	return NewEvent(buildID, TypeBuildCompleted, p)
}

// NewBuildFailed creates a BuildFailed event.
func NewBuildFailed(buildID string, p BuildFailed) (Event, error) {
	return NewEvent(buildID, TypeBuildFailed, p)
}
