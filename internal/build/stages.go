package build

import (
	"context"
	"fmt"
)

// Stage is a discrete unit of work in the build.
type Stage func(ctx context.Context, st *State) error

// StageName identifies a build stage.
type StageName string

// Canonical stage names.
const (
	StageLoadConfig      StageName = "load_config"
	StageLoadSidebar     StageName = "load_sidebar"
	StageDiscoverContent StageName = "discover_content"
	StageValidateSidebar StageName = "validate_sidebar"
	StageGenerateRoutes  StageName = "generate_routes"
	StageValidateRoutes  StageName = "validate_routes"
	StageCheckLinks      StageName = "check_links"
	StageBuildSearch     StageName = "build_search"
	StageWriteArtifacts  StageName = "write_artifacts"
	StageRecordManifest  StageName = "record_manifest"
)

// StageErrorKind classifies a stage failure.
type StageErrorKind string

const (
	StageErrorFatal    StageErrorKind = "fatal"    // Build must abort.
	StageErrorWarning  StageErrorKind = "warning"  // Non-fatal; record and continue.
	StageErrorCanceled StageErrorKind = "canceled" // Context cancellation.
)

// StageError is a structured error carrying the stage and underlying cause.
type StageError struct {
	Kind  StageErrorKind
	Stage StageName
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage %s: %v", e.Kind, e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

func newFatalStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorFatal, Stage: stage, Err: err}
}

func newWarnStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorWarning, Stage: stage, Err: err}
}

func newCanceledStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorCanceled, Stage: stage, Err: err}
}

// StageResult is the outcome of one stage.
type StageResult string

const (
	StageResultSuccess  StageResult = "success"
	StageResultWarning  StageResult = "warning"
	StageResultFatal    StageResult = "fatal"
	StageResultCanceled StageResult = "canceled"
	StageResultSkipped  StageResult = "skipped"
)

// SkipFunc decides right before a stage runs whether it can be skipped.
type SkipFunc func(st *State) (skip bool, reason string)

// StageDef pairs a stage name with its function.
type StageDef struct {
	Name   StageName
	Fn     Stage
	SkipIf SkipFunc
}

// Pipeline is a fluent builder for ordered stage definitions.
type Pipeline struct {
	defs []StageDef
	// omitted is set when the last AddIf left its stage out.
	omitted bool
}

// NewPipeline creates an empty pipeline.
func NewPipeline() *Pipeline { return &Pipeline{defs: make([]StageDef, 0, 10)} }

// Add appends a stage unconditionally.
func (p *Pipeline) Add(name StageName, fn Stage) *Pipeline {
	p.defs = append(p.defs, StageDef{Name: name, Fn: fn})
	p.omitted = false
	return p
}

// AddIf appends a stage only if cond is true.
func (p *Pipeline) AddIf(cond bool, name StageName, fn Stage) *Pipeline {
	if cond {
		return p.Add(name, fn)
	}
	p.omitted = true
	return p
}

// SkipIf attaches a skip decision to the preceding stage. It is a no-op
// when that stage was omitted by AddIf.
func (p *Pipeline) SkipIf(fn SkipFunc) *Pipeline {
	if n := len(p.defs); n > 0 && !p.omitted {
		p.defs[n-1].SkipIf = fn
	}
	return p
}

// Build returns a copy of the stage definitions.
func (p *Pipeline) Build() []StageDef {
	out := make([]StageDef, len(p.defs))
	copy(out, p.defs)
	return out
}
