package config

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"git.home.luguber.info/inful/docsite/internal/foundation"
)

// normalize canonicalizes user input before defaults and validation run:
// trims strings, case-folds enums and rewrites locale codes to their
// canonical BCP 47 form. Unparseable enums are reported by validate.
func normalize(cfg *SiteConfig) ([]string, error) {
	var warnings []string
	var problems foundation.Collector

	cfg.Title = strings.TrimSpace(cfg.Title)
	cfg.URL = strings.TrimSpace(cfg.URL)
	if trimmed := strings.TrimRight(cfg.URL, "/"); trimmed != cfg.URL {
		warnings = append(warnings, fmt.Sprintf("url %q should not end with a slash", cfg.URL))
		cfg.URL = trimmed
	}
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)

	for field, p := range map[string]*BrokenLinkPolicy{
		"onBrokenLinks":         &cfg.OnBrokenLinks,
		"onBrokenMarkdownLinks": &cfg.OnBrokenMarkdownLinks,
	} {
		if *p == "" {
			continue
		}
		v, err := NormalizeBrokenLinkPolicy(string(*p))
		if err != nil {
			problems.Add(field, "one_of", err.Error(), string(*p))
			continue
		}
		*p = v
	}

	canon := func(field, raw string) string {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return raw
		}
		tag, err := language.Parse(raw)
		if err != nil {
			problems.Add(field, "locale", "is not a valid BCP 47 language tag", raw)
			return raw
		}
		if tag.String() != raw {
			warnings = append(warnings, fmt.Sprintf("%s %q canonicalized to %q", field, raw, tag.String()))
		}
		return tag.String()
	}
	cfg.I18n.DefaultLocale = canon("i18n.defaultLocale", cfg.I18n.DefaultLocale)
	for i, l := range cfg.I18n.Locales {
		cfg.I18n.Locales[i] = canon(fmt.Sprintf("i18n.locales[%d]", i), l)
	}
	if len(cfg.I18n.LocaleConfigs) > 0 {
		normalized := make(map[string]LocaleConfig, len(cfg.I18n.LocaleConfigs))
		for k, v := range cfg.I18n.LocaleConfigs {
			normalized[canon("i18n.localeConfigs", k)] = v
		}
		cfg.I18n.LocaleConfigs = normalized
	}

	cfg.Docs.RouteBasePath = normalizeRouteBase(cfg.Docs.RouteBasePath)
	if cfg.Search.DocsRouteBasePath != "" {
		cfg.Search.DocsRouteBasePath = normalizeRouteBase(cfg.Search.DocsRouteBasePath)
	}
	for i, l := range cfg.Search.Language {
		cfg.Search.Language[i] = strings.ToLower(strings.TrimSpace(l))
	}

	for i := range cfg.ThemeConfig.Navbar.Items {
		item := &cfg.ThemeConfig.Navbar.Items[i]
		item.Position = strings.ToLower(strings.TrimSpace(item.Position))
		if item.Type == "" {
			item.Type = NavbarItemLink
		}
	}
	cfg.ThemeConfig.Footer.Style = strings.ToLower(strings.TrimSpace(cfg.ThemeConfig.Footer.Style))

	return warnings, problems.Err("site configuration could not be normalized")
}

// normalizeRouteBase strips surrounding slashes; the site root stays "/".
// An unset value keeps the "unset" marker so defaults can apply.
func normalizeRouteBase(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return "/"
	}
	return trimmed
}
