package build

import (
	"context"

	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/routes"
	"git.home.luguber.info/inful/docsite/internal/search"
)

func (s *Service) stageGenerateRoutes(_ context.Context, st *State) error {
	table, err := routes.Generate(st.Config, st.Sidebars, st.Sets)
	if err != nil {
		return newFatalStageError(StageGenerateRoutes, err)
	}
	hash, err := table.Hash()
	if err != nil {
		return newFatalStageError(StageGenerateRoutes, err)
	}
	st.Table = table
	st.Report.TableHash = hash
	for locale, n := range table.PageCount() {
		s.recorder.SetRoutesGenerated(locale, n)
		st.Logger.Debug("Routes generated", logfields.Locale(locale), logfields.Count(n))
	}
	return nil
}

func (s *Service) stageBuildSearch(_ context.Context, st *State) error {
	indexes, err := search.Build(st.Config, st.Table, st.Sets)
	if err != nil {
		return newFatalStageError(StageBuildSearch, err)
	}
	st.Indexes = indexes
	return nil
}
