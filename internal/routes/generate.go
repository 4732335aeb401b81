package routes

import (
	"slices"
	"strings"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/content"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/sidebar"
)

// SearchSegment is the path of the search page below a locale root.
const SearchSegment = "search"

// Generate builds the route table for every configured locale. It is pure:
// the same inputs always produce the same table.
func Generate(cfg *config.SiteConfig, sidebars *sidebar.Sidebars, sets map[string]*content.Set) (*Table, error) {
	t := &Table{}
	for _, locale := range cfg.I18n.Locales {
		set, ok := sets[locale]
		if !ok {
			return nil, errors.RoutesError("no content discovered for locale").
				WithContext("locale", locale).Build()
		}
		t.Locales = append(t.Locales, generateLocale(cfg, sidebars, set))
	}
	return t, nil
}

func generateLocale(cfg *config.SiteConfig, sidebars *sidebar.Sidebars, set *content.Set) LocaleRoutes {
	locale := set.Locale
	siteBase := cfg.LocaleBaseURL(locale)
	docsBase := cfg.DocsBasePath(locale)

	pages := make([]*RouteNode, 0, set.Len())
	for _, d := range set.Docs {
		p := JoinPath(docsBase, d.Slug)
		n := &RouteNode{
			Path:      p,
			Component: ComponentDocItem,
			Exact:     true,
			Content:   "@site/" + d.Source,
			DocID:     d.ID,
			ID:        routeID(p, ComponentDocItem),
		}
		if sid, ok := sidebars.SidebarFor(d.ID); ok {
			n.Sidebar = sid
		}
		pages = append(pages, n)
	}
	slices.SortFunc(pages, func(a, b *RouteNode) int {
		if c := strings.Compare(a.Path, b.Path); c != 0 {
			return c
		}
		return strings.Compare(a.DocID, b.DocID)
	})

	docRoot := container(docsBase, ComponentDocRoot, pages)
	versionRoot := container(docsBase, ComponentDocVersionRoot, []*RouteNode{docRoot})
	docsRoot := container(docsBase, ComponentDocsRoot, []*RouteNode{versionRoot})

	searchPath := JoinPath(siteBase, SearchSegment)
	return LocaleRoutes{
		Locale:  locale,
		BaseURL: siteBase,
		Routes: []*RouteNode{
			{Path: searchPath, Component: ComponentSearchPage, Exact: true, ID: routeID(searchPath, ComponentSearchPage)},
			docsRoot,
			{Path: CatchAllPath, Component: ComponentNotFound, ID: routeID(siteBase+CatchAllPath, ComponentNotFound)},
		},
	}
}

func container(path, component string, children []*RouteNode) *RouteNode {
	return &RouteNode{Path: path, Component: component, ID: routeID(path, component), Routes: children}
}

// JoinPath appends a slash separated slug to a base path. An empty slug
// yields base unchanged and a trailing slash on slug is kept.
func JoinPath(base, slug string) string {
	trimmed := strings.Trim(slug, "/")
	if trimmed == "" {
		return base
	}
	p := strings.TrimSuffix(base, "/") + "/" + trimmed
	if strings.HasSuffix(slug, "/") {
		p += "/"
	}
	return p
}
