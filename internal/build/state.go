package build

import (
	"log/slog"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/content"
	"git.home.luguber.info/inful/docsite/internal/git"
	"git.home.luguber.info/inful/docsite/internal/manifest"
	"git.home.luguber.info/inful/docsite/internal/routes"
	"git.home.luguber.info/inful/docsite/internal/search"
	"git.home.luguber.info/inful/docsite/internal/sidebar"
)

// State carries the build inputs and derived artifacts across stages.
type State struct {
	Request Request
	BuildID string
	Report  *Report
	Logger  *slog.Logger

	Config *config.SiteConfig
	// Declared is the sidebar declaration as loaded; Sidebars is the
	// declaration with draft-only references pruned.
	Declared *sidebar.Sidebars
	Sidebars *sidebar.Sidebars
	Sets     map[string]*content.Set
	Git      *git.Info

	Table   *routes.Table
	Indexes []*search.Index

	// Manifest is prepared before the write stage; Previous is the manifest of
	// the last successful build, if any.
	Manifest *manifest.BuildManifest
	Previous *manifest.BuildManifest
	// ManifestObject is the object store hash of the recorded manifest.
	ManifestObject string
}

// DefaultSet returns the content set of the default locale.
func (st *State) DefaultSet() *content.Set {
	if st.Config == nil || st.Sets == nil {
		return nil
	}
	return st.Sets[st.Config.I18n.DefaultLocale]
}
