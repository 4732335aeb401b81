package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"

	"git.home.luguber.info/inful/docsite/internal/foundation"
	"git.home.luguber.info/inful/docsite/internal/retry"
)

// supportedSearchLanguages are the tokenizers the search index builder provides.
var supportedSearchLanguages = []string{"en", "zh"}

// validate reports every problem in the configuration as one validation error.
func validate(cfg *SiteConfig) error {
	var c foundation.Collector

	validateSite(cfg, &c)
	validateI18n(cfg, &c)
	validateDocs(cfg, &c)
	validateSearch(cfg, &c)
	validateTheme(cfg, &c)
	validateNotifications(cfg, &c)

	return c.Err("site configuration is invalid")
}

func validateSite(cfg *SiteConfig, c *foundation.Collector) {
	c.Required("title", cfg.Title)
	c.Required("url", cfg.URL)
	c.Required("baseUrl", cfg.BaseURL)

	if cfg.URL != "" {
		u, err := url.Parse(cfg.URL)
		switch {
		case err != nil:
			c.Add("url", "url", "is not a valid URL", cfg.URL)
		case u.Scheme != "http" && u.Scheme != "https":
			c.Add("url", "url", "must use the http or https scheme", cfg.URL)
		case u.Host == "":
			c.Add("url", "url", "must include a host", cfg.URL)
		case u.Path != "" || u.RawQuery != "" || u.Fragment != "":
			c.Add("url", "url", "must not contain a path, query or fragment (use baseUrl for the path)", cfg.URL)
		}
	}
	if cfg.BaseURL != "" && (!strings.HasPrefix(cfg.BaseURL, "/") || !strings.HasSuffix(cfg.BaseURL, "/")) {
		c.Add("baseUrl", "base_url", "must start and end with /", cfg.BaseURL)
	}
	if cfg.URL != "" && cfg.BaseURL != "" {
		if _, err := cfg.ParsedSiteURL(); err != nil {
			c.Add("url", "site_url", err.Error(), cfg.SiteURL())
		}
	}
}

func validateI18n(cfg *SiteConfig, c *foundation.Collector) {
	seen := make(map[string]bool, len(cfg.I18n.Locales))
	for _, l := range cfg.I18n.Locales {
		if l == "" {
			c.Add("i18n.locales", "required", "must not contain empty entries", nil)
			continue
		}
		if seen[l] {
			c.Add("i18n.locales", "duplicate", "lists a locale more than once", l)
		}
		seen[l] = true
	}
	if !seen[cfg.I18n.DefaultLocale] {
		c.Add("i18n.defaultLocale", "locale", "must be one of i18n.locales", cfg.I18n.DefaultLocale)
	}

	paths := make(map[string]string)
	for locale, lc := range cfg.I18n.LocaleConfigs {
		if !seen[locale] {
			c.Add("i18n.localeConfigs", "locale", "configures a locale not listed in i18n.locales", locale)
		}
		if lc.Direction != "" && lc.Direction != "ltr" && lc.Direction != "rtl" {
			c.Add(fmt.Sprintf("i18n.localeConfigs.%s.direction", locale), "one_of", "must be ltr or rtl", lc.Direction)
		}
		if lc.Path != "" && strings.Contains(strings.Trim(lc.Path, "/"), "/") {
			c.Add(fmt.Sprintf("i18n.localeConfigs.%s.path", locale), "segment", "must be a single URL segment", lc.Path)
		}
	}
	for _, l := range cfg.I18n.Locales {
		if l == cfg.I18n.DefaultLocale {
			continue
		}
		p := cfg.LocalePrefix(l)
		if other, ok := paths[p]; ok {
			c.Add("i18n.localeConfigs", "duplicate", fmt.Sprintf("locales %s and %s share the URL segment %q", other, l, p), nil)
		}
		paths[p] = l
	}
}

func validateDocs(cfg *SiteConfig, c *foundation.Collector) {
	if cfg.Docs.EditURL != "" {
		if u, err := url.Parse(cfg.Docs.EditURL); err != nil || !u.IsAbs() {
			c.Add("docs.editUrl", "url", "must be an absolute URL", cfg.Docs.EditURL)
		}
	}
	if strings.ContainsAny(cfg.Docs.RouteBasePath, "?#") {
		c.Add("docs.routeBasePath", "path", "must be a plain URL path", cfg.Docs.RouteBasePath)
	}
}

func validateSearch(cfg *SiteConfig, c *foundation.Collector) {
	for _, l := range cfg.Search.Language {
		foundation.OneOf(c, "search.language", l, supportedSearchLanguages...)
	}
	if cfg.Search.DocsRouteBasePath != cfg.Docs.RouteBasePath {
		c.Add("search.docsRouteBasePath", "mismatch", "must match docs.routeBasePath", cfg.Search.DocsRouteBasePath)
	}
	if cfg.Search.IndexBlog {
		c.Add("search.indexBlog", "unsupported", "the blog is disabled; indexBlog must be false", true)
	}
	if cfg.Search.SearchResultLimits < 0 || cfg.Search.SearchResultContextMaxLength < 0 {
		c.Add("search", "range", "result limits must not be negative", nil)
	}
}

func validateTheme(cfg *SiteConfig, c *foundation.Collector) {
	toc := cfg.ThemeConfig.TableOfContents
	if toc.MinHeadingLevel < 2 || toc.MinHeadingLevel > 6 {
		c.Add("themeConfig.tableOfContents.minHeadingLevel", "range", "must be between 2 and 6", toc.MinHeadingLevel)
	}
	if toc.MaxHeadingLevel < 2 || toc.MaxHeadingLevel > 6 {
		c.Add("themeConfig.tableOfContents.maxHeadingLevel", "range", "must be between 2 and 6", toc.MaxHeadingLevel)
	}
	if toc.MinHeadingLevel > toc.MaxHeadingLevel {
		c.Add("themeConfig.tableOfContents", "range", "minHeadingLevel must not exceed maxHeadingLevel", nil)
	}

	types := []NavbarItemType{NavbarItemLink, NavbarItemDocSidebar, NavbarItemDoc, NavbarItemLocaleDropdown, NavbarItemSearch}
	for i, item := range cfg.ThemeConfig.Navbar.Items {
		field := fmt.Sprintf("themeConfig.navbar.items[%d]", i)
		if !slices.Contains(types, item.Type) {
			c.Add(field+".type", "one_of", fmt.Sprintf("must be one of %v", types), string(item.Type))
			continue
		}
		foundation.OneOf(c, field+".position", item.Position, "left", "right")
		switch item.Type {
		case NavbarItemDocSidebar:
			c.Required(field+".sidebarId", item.SidebarID)
		case NavbarItemDoc:
			c.Required(field+".docId", item.DocID)
		case NavbarItemLink:
			validateLinkTarget(c, field, item.To, item.Href)
			c.Required(field+".label", item.Label)
		}
	}

	foundation.OneOf(c, "themeConfig.footer.style", cfg.ThemeConfig.Footer.Style, "dark", "light")
	for gi, group := range cfg.ThemeConfig.Footer.Links {
		for ii, link := range group.Items {
			field := fmt.Sprintf("themeConfig.footer.links[%d].items[%d]", gi, ii)
			c.Required(field+".label", link.Label)
			validateLinkTarget(c, field, link.To, link.Href)
		}
	}
}

func validateLinkTarget(c *foundation.Collector, field, to, href string) {
	switch {
	case to == "" && href == "":
		c.Add(field, "link", "needs either to or href", nil)
	case to != "" && href != "":
		c.Add(field, "link", "must not set both to and href", nil)
	case to != "" && !strings.HasPrefix(to, "/"):
		c.Add(field+".to", "path", "must be a site-absolute path starting with /", to)
	case href != "":
		if u, err := url.Parse(href); err != nil || !u.IsAbs() {
			c.Add(field+".href", "url", "must be an absolute URL", href)
		}
	}
}

// ValidateNavbarSidebars checks navbar docSidebar items against the declared
// sidebar ids. It runs once the sidebar declaration is loaded.
func (c *SiteConfig) ValidateNavbarSidebars(hasSidebar func(id string) bool) error {
	var col foundation.Collector
	for i, item := range c.ThemeConfig.Navbar.Items {
		if item.Type == NavbarItemDocSidebar && !hasSidebar(item.SidebarID) {
			col.Add(fmt.Sprintf("themeConfig.navbar.items[%d].sidebarId", i), "sidebar", "references an undeclared sidebar", item.SidebarID)
		}
	}
	return col.Err("navbar references unknown sidebars")
}

func validateNotifications(cfg *SiteConfig, c *foundation.Collector) {
	r := cfg.Notifications.Retry
	if r.Backoff != "" && !slices.Contains([]string{"fixed", "linear", "exponential"}, r.Backoff) {
		c.Add("notifications.retry.backoff", "enum", "must be fixed, linear or exponential", r.Backoff)
		return
	}
	p := retry.Policy{Mode: retry.BackoffMode(r.Backoff), Initial: r.Initial, Max: r.Max, MaxRetries: r.MaxRetries}
	if err := p.WithDefaults().Validate(); err != nil {
		c.Add("notifications.retry", "range", err.Error(), nil)
	}
}
