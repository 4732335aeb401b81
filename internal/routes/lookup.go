package routes

import "strings"

// MatchKind says how Lookup resolved a path.
type MatchKind string

const (
	MatchExact    MatchKind = "exact"
	MatchPrefix   MatchKind = "prefix"
	MatchNotFound MatchKind = "not_found"
)

// Match is the result of a static route lookup.
type Match struct {
	Locale string     `json:"locale"`
	Kind   MatchKind  `json:"kind"`
	Route  *RouteNode `json:"route"`
}

// Lookup resolves a URL path the way the client router would: the locale is
// picked by the longest matching locale base URL, then an exact page wins
// over the deepest non-exact container, and the catch-all route is the
// fallback. Query strings, fragments and a trailing slash are ignored.
func (t *Table) Lookup(urlPath string) (Match, bool) {
	p := cleanPath(urlPath)

	var loc *LocaleRoutes
	for i := range t.Locales {
		l := &t.Locales[i]
		if !hasPathPrefix(p, l.BaseURL) {
			continue
		}
		if loc == nil || len(l.BaseURL) > len(loc.BaseURL) {
			loc = l
		}
	}
	if loc == nil {
		return Match{}, false
	}

	var exact, prefix, catchAll *RouteNode
	var walk func(nodes []*RouteNode)
	walk = func(nodes []*RouteNode) {
		for _, n := range nodes {
			switch {
			case n.Path == CatchAllPath:
				catchAll = n
			case n.Exact:
				if exact == nil && cleanPath(n.Path) == p {
					exact = n
				}
			case hasPathPrefix(p, n.Path):
				if prefix == nil || len(n.Path) >= len(prefix.Path) {
					prefix = n
				}
			}
			walk(n.Routes)
		}
	}
	walk(loc.Routes)

	switch {
	case exact != nil:
		return Match{Locale: loc.Locale, Kind: MatchExact, Route: exact}, true
	case prefix != nil:
		return Match{Locale: loc.Locale, Kind: MatchPrefix, Route: prefix}, true
	case catchAll != nil:
		return Match{Locale: loc.Locale, Kind: MatchNotFound, Route: catchAll}, true
	}
	return Match{}, false
}

// FindDoc returns the page route rendering docID in locale.
func (t *Table) FindDoc(locale, docID string) (*RouteNode, bool) {
	l, ok := t.Locale(locale)
	if !ok {
		return nil, false
	}
	for _, n := range l.Pages() {
		if n.DocID == docID {
			return n, true
		}
	}
	return nil, false
}

func cleanPath(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimSuffix(p, "/")
	}
	return p
}

// hasPathPrefix reports whether p lies at or below base on segment boundaries.
func hasPathPrefix(p, base string) bool {
	base = cleanPath(base)
	if base == "/" || p == base {
		return true
	}
	return strings.HasPrefix(p, base+"/")
}
