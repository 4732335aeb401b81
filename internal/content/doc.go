// Package content discovers the Markdown documents of each locale and
// derives their ids, slugs, titles, outlines and fingerprints.
package content

import (
	"slices"

	"git.home.luguber.info/inful/docsite/internal/markdown"
)

// Doc is one discovered document.
type Doc struct {
	// ID is the slash separated doc id, e.g. "guide/getting-started".
	ID     string `json:"id"`
	Locale string `json:"locale"`
	// Source is the site-root relative source path, e.g. "docs/intro.md".
	Source string `json:"source"`
	// Path is the absolute file path.
	Path string `json:"-"`
	// Slug is the URL path below the docs base, without leading slash.
	// The empty slug is the docs root page. Index and README pages keep a
	// trailing slash, e.g. "deploy/".
	Slug            string   `json:"slug"`
	Title           string   `json:"title"`
	SidebarLabel    string   `json:"sidebarLabel"`
	SidebarPosition *float64 `json:"sidebarPosition,omitempty"`
	Description     string   `json:"description,omitempty"`
	Keywords        []string `json:"keywords,omitempty"`
	Draft           bool     `json:"draft,omitempty"`
	Unlisted        bool     `json:"unlisted,omitempty"`
	// Fallback is set on a translated locale's copy of a default-locale doc
	// that has no translation.
	Fallback    bool               `json:"fallback,omitempty"`
	Fingerprint string             `json:"fingerprint"`
	Headings    []markdown.Heading `json:"headings,omitempty"`
	Links       []markdown.Link    `json:"-"`
	Body        []byte             `json:"-"`

	tocMin, tocMax int
}

// Set holds the documents of one locale, sorted by id.
type Set struct {
	Locale string
	Docs   []*Doc

	byID   map[string]*Doc
	drafts map[string]bool
}

func newSet(locale string) *Set {
	return &Set{Locale: locale, byID: make(map[string]*Doc), drafts: make(map[string]bool)}
}

// NewSet builds a set from already loaded docs.
func NewSet(locale string, docs ...*Doc) *Set {
	s := newSet(locale)
	for _, d := range docs {
		s.add(d)
	}
	s.sort()
	return s
}

func (s *Set) add(d *Doc) {
	s.Docs = append(s.Docs, d)
	s.byID[d.ID] = d
}

func (s *Set) sort() {
	slices.SortFunc(s.Docs, func(a, b *Doc) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
}

// Get returns the doc with id.
func (s *Set) Get(id string) (*Doc, bool) {
	d, ok := s.byID[id]
	return d, ok
}

// Has reports whether a published doc with id exists.
func (s *Set) Has(id string) bool {
	_, ok := s.byID[id]
	return ok
}

// IsDraft reports whether id names a draft that was left out of the set.
func (s *Set) IsDraft(id string) bool { return s.drafts[id] }

// IDs returns the doc ids in sorted order.
func (s *Set) IDs() []string {
	ids := make([]string, len(s.Docs))
	for i, d := range s.Docs {
		ids[i] = d.ID
	}
	return ids
}

// BySource returns the doc whose absolute path is p.
func (s *Set) BySource(p string) (*Doc, bool) {
	for _, d := range s.Docs {
		if d.Path == p {
			return d, true
		}
	}
	return nil, false
}

// Len returns the number of documents.
func (s *Set) Len() int { return len(s.Docs) }
