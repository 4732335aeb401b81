// Package drift detects a committed route table that no longer matches what
// the sources generate, e.g. after a hand edit or a forgotten rebuild.
package drift

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pmezard/go-difflib/difflib"

	"git.home.luguber.info/inful/docsite/internal/build"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/routes"
)

// Builder runs one build. *build.Service implements it.
type Builder interface {
	Run(ctx context.Context, req build.Request) (*build.Result, error)
}

// Report is the result of comparing a committed table with a generated one.
type Report struct {
	Path    string `json:"path"`
	Missing bool   `json:"missing,omitempty"`
	// Diff is a unified diff from the committed to the generated table,
	// empty when they are identical.
	Diff string `json:"diff,omitempty"`
}

// InSync reports whether the committed table matches.
func (r Report) InSync() bool { return !r.Missing && r.Diff == "" }

// Err returns a routes error describing the drift, or nil.
func (r Report) Err() error {
	switch {
	case r.Missing:
		return errors.RoutesError("committed route table is missing; run docsite build").
			WithContext("path", r.Path).UserAction().Build()
	case r.Diff != "":
		return errors.RoutesError("committed route table differs from the generated one; run docsite build").
			WithContext("path", r.Path).UserAction().Build()
	}
	return nil
}

// Compare diffs the table stored at path against generated.
func Compare(path string, generated *routes.Table) (Report, error) {
	want, err := generated.Bytes()
	if err != nil {
		return Report{}, errors.WrapError(err, errors.CategoryInternal, "failed to serialize route table").Build()
	}

	rep := Report{Path: path}
	got, err := os.ReadFile(path) // #nosec G304 -- artifact path from configuration
	switch {
	case os.IsNotExist(err):
		rep.Missing = true
	case err != nil:
		return Report{}, errors.WrapError(err, errors.CategoryFileSystem, "failed to read route table").
			WithContext("path", path).Build()
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(got)),
		B:        difflib.SplitLines(string(want)),
		FromFile: "committed/" + routes.FileName,
		ToFile:   "generated/" + routes.FileName,
		Context:  3,
	})
	if err != nil {
		return Report{}, errors.WrapError(err, errors.CategoryInternal, "failed to diff route tables").Build()
	}
	rep.Diff = diff
	return rep, nil
}

// Check regenerates the route table in memory and compares it with the one
// at path. An empty path means routes.json in the configured output
// directory. Build failures are returned as errors, drift only in the Report.
func Check(ctx context.Context, b Builder, req build.Request, path string) (Report, error) {
	req.Mode = build.ModeValidate
	if req.Trigger == "" {
		req.Trigger = "check"
	}
	res, err := b.Run(ctx, req)
	if err != nil {
		return Report{}, err
	}
	if path == "" {
		path = filepath.Join(res.Config.OutDir(), routes.FileName)
	}
	return Compare(path, res.Table)
}
