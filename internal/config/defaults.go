package config

import "path/filepath"

// applyDefaults fills unset fields. It runs after normalize so canonical
// values drive defaults.
func applyDefaults(cfg *SiteConfig) {
	if cfg.OnBrokenLinks == "" {
		cfg.OnBrokenLinks = PolicyThrow
	}
	if cfg.OnBrokenMarkdownLinks == "" {
		cfg.OnBrokenMarkdownLinks = PolicyWarn
	}

	if cfg.I18n.DefaultLocale == "" {
		cfg.I18n.DefaultLocale = "en"
	}
	if len(cfg.I18n.Locales) == 0 {
		cfg.I18n.Locales = []string{cfg.I18n.DefaultLocale}
	}

	if cfg.Docs.Path == "" {
		cfg.Docs.Path = "docs"
	}
	if cfg.Docs.SidebarPath == "" {
		cfg.Docs.SidebarPath = "sidebars.yaml"
	}
	if cfg.Docs.RouteBasePath == "" {
		cfg.Docs.RouteBasePath = "docs"
	}
	if cfg.Docs.I18nPath == "" {
		cfg.Docs.I18nPath = "i18n"
	}

	if len(cfg.Search.Language) == 0 {
		cfg.Search.Language = []string{"en"}
	}
	if cfg.Search.DocsRouteBasePath == "" {
		cfg.Search.DocsRouteBasePath = cfg.Docs.RouteBasePath
	}
	if cfg.Search.SearchResultLimits == 0 {
		cfg.Search.SearchResultLimits = 8
	}
	if cfg.Search.SearchResultContextMaxLength == 0 {
		cfg.Search.SearchResultContextMaxLength = 50
	}

	for i := range cfg.ThemeConfig.Navbar.Items {
		if cfg.ThemeConfig.Navbar.Items[i].Position == "" {
			cfg.ThemeConfig.Navbar.Items[i].Position = "left"
		}
	}
	if cfg.ThemeConfig.Footer.Style == "" {
		cfg.ThemeConfig.Footer.Style = "light"
	}

	toc := &cfg.ThemeConfig.TableOfContents
	if toc.MinHeadingLevel == 0 {
		toc.MinHeadingLevel = 2
	}
	if toc.MaxHeadingLevel == 0 {
		toc.MaxHeadingLevel = 3
		if toc.MinHeadingLevel > toc.MaxHeadingLevel {
			toc.MaxHeadingLevel = toc.MinHeadingLevel
		}
	}

	if cfg.Build.OutDir == "" {
		cfg.Build.OutDir = "build"
	}
	if cfg.Build.StateDir == "" {
		cfg.Build.StateDir = ".docsite"
	}
	if cfg.Build.EventsDB == "" {
		cfg.Build.EventsDB = filepath.Join(cfg.Build.StateDir, "events.db")
	}
	if cfg.Notifications.NATSURL != "" && cfg.Notifications.Subject == "" {
		cfg.Notifications.Subject = "docsite.builds"
	}
}
