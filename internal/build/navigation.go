package build

import (
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/routes"
	"git.home.luguber.info/inful/docsite/internal/sidebar"
)

// DocNavigation is a doc's sidebar navigation with each doc resolved to its
// page path in one locale.
type DocNavigation struct {
	sidebar.Navigation
	Locale            string `json:"locale"`
	Permalink         string `json:"permalink,omitempty"`
	PreviousPermalink string `json:"previousPermalink,omitempty"`
	NextPermalink     string `json:"nextPermalink,omitempty"`
}

// Navigation resolves docID against the sidebars and route table of a
// successful build. An empty locale means the default locale.
func (r *Result) Navigation(docID, locale string) (DocNavigation, error) {
	if r.Table == nil || r.Sidebars == nil || r.Config == nil {
		return DocNavigation{}, errors.RuntimeError("build produced no route table").Build()
	}
	if locale == "" {
		locale = r.Config.I18n.DefaultLocale
	}
	if !r.Config.HasLocale(locale) {
		return DocNavigation{}, errors.ValidationError("locale is not declared in i18n.locales").
			WithContext("locale", locale).Build()
	}
	nav, ok := r.Sidebars.Navigation(docID)
	if !ok {
		return DocNavigation{}, errors.NewError(errors.CategoryNotFound, "doc is not listed in any sidebar").
			WithContext("doc_id", docID).Build()
	}
	return DocNavigation{
		Navigation:        nav,
		Locale:            locale,
		Permalink:         permalink(r.Table, locale, nav.DocID),
		PreviousPermalink: permalink(r.Table, locale, nav.Previous),
		NextPermalink:     permalink(r.Table, locale, nav.Next),
	}, nil
}

func permalink(t *routes.Table, locale, docID string) string {
	if docID == "" {
		return ""
	}
	if n, ok := t.FindDoc(locale, docID); ok {
		return n.Path
	}
	return ""
}
