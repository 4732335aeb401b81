package build

import (
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/search"
)

// SearchResults are the hits of one query in one locale.
type SearchResults struct {
	Locale string       `json:"locale"`
	Query  string       `json:"query"`
	Hits   []search.Hit `json:"hits"`
}

// Search runs query against the in-memory index of locale, or of the default
// locale when locale is empty. A limit of zero uses searchResultLimits.
func (r *Result) Search(query, locale string, limit int) (SearchResults, error) {
	if query == "" {
		return SearchResults{}, errors.ValidationError("search query is empty").Build()
	}
	if r.Config == nil || len(r.Indexes) == 0 {
		return SearchResults{}, errors.RuntimeError("build produced no search index").Build()
	}
	if locale == "" {
		locale = r.Config.I18n.DefaultLocale
	}
	for _, ix := range r.Indexes {
		if ix.Locale != locale {
			continue
		}
		if limit <= 0 {
			limit = ix.Options.SearchResultLimits
		}
		hits := ix.Search(query, limit)
		if hits == nil {
			hits = []search.Hit{}
		}
		return SearchResults{Locale: locale, Query: query, Hits: hits}, nil
	}
	return SearchResults{}, errors.ValidationError("locale is not declared in i18n.locales").
		WithContext("locale", locale).Build()
}
