// Package linkcheck finds links that do not resolve and applies the site's
// broken-link policies to them.
package linkcheck

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/content"
	"git.home.luguber.info/inful/docsite/internal/markdown"
	"git.home.luguber.info/inful/docsite/internal/routes"
)

// Kind selects the policy a finding is judged by.
type Kind string

const (
	// KindMarkdown is a relative link to a .md/.mdx file (onBrokenMarkdownLinks).
	KindMarkdown Kind = "markdown"
	// KindRoute is a link to a site URL path (onBrokenLinks).
	KindRoute Kind = "route"
)

// Finding is one unresolved link.
type Finding struct {
	Kind   Kind   `json:"kind"`
	Locale string `json:"locale"`
	// Source is the document source path or the config field holding the link.
	Source string `json:"source"`
	DocID  string `json:"docId,omitempty"`
	Target string `json:"target"`
	Line   int    `json:"line,omitempty"`
}

func (f Finding) String() string {
	loc := f.Source
	if f.Line > 0 {
		loc = fmt.Sprintf("%s:%d", f.Source, f.Line)
	}
	return fmt.Sprintf("%s: broken %s link %q (locale %s)", loc, f.Kind, f.Target, f.Locale)
}

// Report collects the findings of one check.
type Report struct {
	Findings []Finding
}

// Count returns the number of findings of kind.
func (r Report) Count(kind Kind) int {
	n := 0
	for _, f := range r.Findings {
		if f.Kind == kind {
			n++
		}
	}
	return n
}

// Check resolves every document link and every navbar/footer target against
// the content sets and the route table.
func Check(cfg *config.SiteConfig, table *routes.Table, sets map[string]*content.Set) Report {
	var r Report
	for _, locale := range cfg.I18n.Locales {
		set, ok := sets[locale]
		if !ok {
			continue
		}
		c := &checker{cfg: cfg, table: table, set: set, byTreePath: make(map[string]*content.Doc)}
		for _, d := range set.Docs {
			c.byTreePath[c.treePath(d)] = d
		}
		for _, d := range set.Docs {
			r.Findings = append(r.Findings, c.checkDoc(d)...)
		}
		r.Findings = append(r.Findings, c.checkTheme()...)
	}
	return r
}

type checker struct {
	cfg        *config.SiteConfig
	table      *routes.Table
	set        *content.Set
	byTreePath map[string]*content.Doc
}

// treePath is the doc's source path relative to the root of its content tree.
func (c *checker) treePath(d *content.Doc) string {
	translated := path.Join(c.cfg.Docs.I18nPath, c.set.Locale, "docusaurus-plugin-content-docs", "current") + "/"
	for _, prefix := range []string{translated, path.Clean(c.cfg.Docs.Path) + "/"} {
		if strings.HasPrefix(d.Source, prefix) {
			return strings.TrimPrefix(d.Source, prefix)
		}
	}
	return d.Source
}

func (c *checker) checkDoc(d *content.Doc) []Finding {
	var out []Finding
	for _, l := range d.Links {
		if l.Kind != markdown.LinkKindInline {
			continue
		}
		kind, ok := c.resolveDocLink(d, l.Destination)
		if ok {
			continue
		}
		out = append(out, Finding{
			Kind: kind, Locale: c.set.Locale, Source: d.Source, DocID: d.ID, Target: l.Destination, Line: l.Line,
		})
	}
	return out
}

// resolveDocLink reports the finding kind for dest and whether it resolves.
// External URLs, fragments and static assets always resolve.
func (c *checker) resolveDocLink(d *content.Doc, dest string) (Kind, bool) {
	u, err := url.Parse(dest)
	if err != nil {
		return KindRoute, false
	}
	if u.Scheme != "" || u.Host != "" || u.Path == "" {
		return KindRoute, true
	}
	p := u.Path
	ext := strings.ToLower(path.Ext(p))

	switch {
	case ext == ".md" || ext == ".mdx":
		if strings.HasPrefix(p, "/") {
			_, ok := c.byTreePath[strings.TrimPrefix(p, "/")]
			return KindMarkdown, ok
		}
		target := path.Join(path.Dir(c.treePath(d)), p)
		_, ok := c.byTreePath[target]
		return KindMarkdown, ok
	case ext != "":
		return KindRoute, true
	case strings.HasPrefix(p, "/"):
		return KindRoute, c.routeExists(c.siteURL(p))
	default:
		page, ok := c.table.FindDoc(c.set.Locale, d.ID)
		if !ok {
			return KindRoute, true
		}
		return KindRoute, c.routeExists(path.Join(path.Dir(page.Path), p))
	}
}

// siteURL maps a site-absolute link onto the locale: the base URL is added
// unless present and the locale prefix is applied.
func (c *checker) siteURL(p string) string {
	rel := strings.TrimPrefix(p, "/")
	if strings.HasPrefix(p, c.cfg.BaseURL) {
		rel = strings.TrimPrefix(p, c.cfg.BaseURL)
	}
	return routes.JoinPath(c.cfg.LocaleBaseURL(c.set.Locale), rel)
}

func (c *checker) routeExists(p string) bool {
	m, ok := c.table.Lookup(p)
	return ok && m.Kind == routes.MatchExact
}

func (c *checker) checkTheme() []Finding {
	var out []Finding
	add := func(source, target string) {
		out = append(out, Finding{Kind: KindRoute, Locale: c.set.Locale, Source: source, Target: target})
	}

	for i, item := range c.cfg.ThemeConfig.Navbar.Items {
		field := fmt.Sprintf("themeConfig.navbar.items[%d]", i)
		switch item.Type {
		case config.NavbarItemDoc:
			if _, ok := c.table.FindDoc(c.set.Locale, item.DocID); !ok {
				add(field+".docId", item.DocID)
			}
		case config.NavbarItemLink:
			if item.To != "" && !c.routeExists(c.siteURL(item.To)) {
				add(field+".to", item.To)
			}
		}
	}
	for gi, group := range c.cfg.ThemeConfig.Footer.Links {
		for ii, link := range group.Items {
			if link.To != "" && !c.routeExists(c.siteURL(link.To)) {
				add(fmt.Sprintf("themeConfig.footer.links[%d].items[%d].to", gi, ii), link.To)
			}
		}
	}
	return out
}
