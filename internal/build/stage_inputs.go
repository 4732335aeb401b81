package build

import (
	"context"
	stderrors "errors"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/content"
	"git.home.luguber.info/inful/docsite/internal/git"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/sidebar"
)

func (s *Service) stageLoadConfig(_ context.Context, st *State) error {
	cfg, err := config.Load(st.Request.ConfigPath)
	if err != nil {
		return newFatalStageError(StageLoadConfig, err)
	}
	st.Config = cfg
	st.Logger.Debug("Configuration loaded",
		logfields.Path(st.Request.ConfigPath),
		logfields.Count(len(cfg.I18n.Locales)))
	return nil
}

func (s *Service) stageLoadSidebar(_ context.Context, st *State) error {
	sidebars, err := sidebar.Load(st.Config.SidebarFile())
	if err != nil {
		return newFatalStageError(StageLoadSidebar, err)
	}
	if err := st.Config.ValidateNavbarSidebars(sidebars.Has); err != nil {
		return newFatalStageError(StageLoadSidebar, err)
	}
	st.Declared = sidebars
	st.Sidebars = sidebars
	return nil
}

func (s *Service) stageDiscoverContent(ctx context.Context, st *State) error {
	sets, err := content.DiscoverSite(ctx, st.Config, st.Request.IncludeDrafts)
	if err != nil {
		return err
	}
	st.Sets = sets
	for _, locale := range st.Config.I18n.Locales {
		st.Logger.Debug("Content discovered", logfields.Locale(locale), logfields.Count(sets[locale].Len()))
	}

	info, err := git.Head(st.Config.Root)
	switch {
	case err == nil:
		st.Git = &info
	case stderrors.Is(err, git.ErrNotRepository):
		st.Logger.Debug("Site root is not a git repository; commit not recorded")
	default:
		st.Logger.Warn("Could not resolve git HEAD", logfields.Error(err))
	}
	return nil
}
