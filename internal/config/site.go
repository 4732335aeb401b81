package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// SiteURL is the concatenation of url and baseUrl.
func (c *SiteConfig) SiteURL() string {
	return strings.TrimRight(c.URL, "/") + c.BaseURL
}

// ParsedSiteURL parses SiteURL and checks it is a well-formed absolute URL.
func (c *SiteConfig) ParsedSiteURL() (*url.URL, error) {
	u, err := url.Parse(c.SiteURL())
	if err != nil {
		return nil, fmt.Errorf("url + baseUrl is not a valid URL: %w", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("url + baseUrl must form an absolute URL")
	}
	if strings.Contains(u.Path, "//") {
		return nil, fmt.Errorf("url + baseUrl must not contain empty path segments")
	}
	return u, nil
}

// HasLocale reports whether locale is declared in i18n.locales.
func (c *SiteConfig) HasLocale(locale string) bool {
	return slices.Contains(c.I18n.Locales, locale)
}

// LocalePrefix returns the URL segment of a locale; the default locale has none.
func (c *SiteConfig) LocalePrefix(locale string) string {
	if locale == c.I18n.DefaultLocale {
		return ""
	}
	if lc, ok := c.I18n.LocaleConfigs[locale]; ok && lc.Path != "" {
		return strings.Trim(lc.Path, "/")
	}
	return locale
}

// LocaleBaseURL is the site root path for a locale, always ending in "/".
func (c *SiteConfig) LocaleBaseURL(locale string) string {
	prefix := c.LocalePrefix(locale)
	if prefix == "" {
		return c.BaseURL
	}
	return c.BaseURL + prefix + "/"
}

// DocsBasePath is the URL path the docs are mounted at for a locale.
// With routeBasePath "/" it equals LocaleBaseURL.
func (c *SiteConfig) DocsBasePath(locale string) string {
	base := c.LocaleBaseURL(locale)
	if c.Docs.RouteBasePath == "/" {
		return base
	}
	return base + c.Docs.RouteBasePath
}

// Hash is a stable content hash of the normalized configuration.
func (c *SiteConfig) Hash() string {
	data, err := yaml.Marshal(c)
	if err != nil {
		// SiteConfig only holds marshalable types.
		panic(fmt.Sprintf("config: marshal for hash: %v", err))
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// CopyrightText renders the footer copyright, replacing {year} with now's year.
func (c *SiteConfig) CopyrightText(now time.Time) string {
	return strings.ReplaceAll(c.ThemeConfig.Footer.Copyright, "{year}", strconv.Itoa(now.Year()))
}
