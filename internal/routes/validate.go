package routes

import (
	stderrors "errors"
	"fmt"
	"strings"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

// Validate checks the table against the site configuration: every declared
// locale has a subtree, every subtree belongs to a declared locale, and no two
// exact routes of a locale resolve to the same path. Paths are compared the
// way Lookup compares them, so "/a" and "/a/" collide. Non-exact containers
// may share the path of a page, such as the docs root index page, but not
// the path and component of another container.
func (t *Table) Validate(cfg *config.SiteConfig) error {
	var findings []error

	present := make(map[string]bool, len(t.Locales))
	for i := range t.Locales {
		l := &t.Locales[i]
		if present[l.Locale] {
			findings = append(findings, finding("locale has more than one route subtree", "locale", l.Locale))
		}
		present[l.Locale] = true
		if !cfg.HasLocale(l.Locale) {
			findings = append(findings, finding("route subtree for a locale missing from i18n.locales", "locale", l.Locale))
		}
		findings = append(findings, validateLocale(cfg, l)...)
	}
	for _, locale := range cfg.I18n.Locales {
		if !present[locale] {
			findings = append(findings, finding("declared locale has no route subtree", "locale", locale))
		}
	}

	if len(findings) == 0 {
		return nil
	}
	return errors.WrapError(stderrors.Join(findings...), errors.CategoryRoutes, "route table is invalid").
		Fatal().
		UserAction().
		WithContext("problems", len(findings)).
		Build()
}

func validateLocale(cfg *config.SiteConfig, l *LocaleRoutes) []error {
	var findings []error
	owners := make(map[string]*RouteNode)
	containers := make(map[string]*RouteNode)
	expectedBase := cfg.LocaleBaseURL(l.Locale)
	if cfg.HasLocale(l.Locale) && l.BaseURL != expectedBase {
		findings = append(findings, finding(fmt.Sprintf("base URL %q does not match the configured %q", l.BaseURL, expectedBase), "locale", l.Locale))
	}

	l.Walk(func(n *RouteNode) {
		if n.Path == CatchAllPath {
			return
		}
		if !strings.HasPrefix(n.Path, "/") {
			findings = append(findings, finding("route path must be absolute", "path", n.Path))
			return
		}
		if !hasPathPrefix(n.Path, l.BaseURL) {
			findings = append(findings, finding("route lies outside its locale", "path", n.Path, "locale", l.Locale))
		}
		key := cleanPath(n.Path)
		if !n.Exact {
			key += " " + n.Component
			if prev, dup := containers[key]; dup {
				findings = append(findings, finding("duplicate route container", "path", n.Path, "locale", l.Locale,
					"first", prev.Path, "component", n.Component))
				return
			}
			containers[key] = n
			return
		}
		if prev, dup := owners[key]; dup {
			findings = append(findings, finding("duplicate route path", "path", n.Path, "locale", l.Locale,
				"first", describe(prev), "second", describe(n)))
			return
		}
		owners[key] = n
	})
	return findings
}

func describe(n *RouteNode) string {
	if n.Content != "" {
		return n.Content
	}
	return n.Component
}

func finding(msg string, kv ...string) error {
	b := errors.RoutesError(msg)
	for i := 0; i+1 < len(kv); i += 2 {
		b = b.WithContext(kv[i], kv[i+1])
	}
	return b.Build()
}
