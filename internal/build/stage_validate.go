package build

import (
	"context"
	stderrors "errors"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/linkcheck"
)

// stageValidateSidebar fails on references to docs that do not exist and
// prunes references to drafts, which exist but are not built.
func (s *Service) stageValidateSidebar(_ context.Context, st *State) error {
	def := st.DefaultSet()
	report := st.Declared.Validate(func(id string) bool { return def.Has(id) || def.IsDraft(id) })
	s.recorder.AddFindings("sidebar", len(report.Dangling))
	if err := report.Err(); err != nil {
		return newFatalStageError(StageValidateSidebar, err)
	}

	st.Sidebars = st.Declared.Prune(def.Has)

	if len(report.Duplicates) == 0 {
		return nil
	}
	warnings := make([]error, 0, len(report.Duplicates))
	for _, f := range report.Duplicates {
		warnings = append(warnings, errors.SidebarError("doc is referenced more than once; navigation follows the first reference").
			Warning().
			WithContext("sidebar", f.Sidebar).
			WithContext("doc_id", f.DocID).
			WithContext("location", f.Location).
			WithContext("line", f.Line).
			Build())
	}
	return newWarnStageError(StageValidateSidebar, stderrors.Join(warnings...))
}

func (s *Service) stageValidateRoutes(_ context.Context, st *State) error {
	if err := st.Table.Validate(st.Config); err != nil {
		s.recorder.AddFindings("routes", 1)
		return newFatalStageError(StageValidateRoutes, err)
	}
	return nil
}

func (s *Service) stageCheckLinks(_ context.Context, st *State) error {
	report := linkcheck.Check(st.Config, st.Table, st.Sets)
	s.recorder.AddFindings("links", report.Count(linkcheck.KindRoute))
	s.recorder.AddFindings("markdown_links", report.Count(linkcheck.KindMarkdown))

	warnings, err := linkcheck.Enforce(st.Config, report, st.Logger)
	if err != nil {
		return newFatalStageError(StageCheckLinks, err)
	}
	if len(warnings) == 0 {
		return nil
	}
	errs := make([]error, 0, len(warnings))
	for _, f := range warnings {
		errs = append(errs, errors.LinksError(f.String()).Warning().
			WithContext("file", f.Source).
			WithContext("target", f.Target).
			Build())
	}
	return newWarnStageError(StageCheckLinks, stderrors.Join(errs...))
}
