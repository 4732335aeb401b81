// Package search builds the per-locale local search index consumed by the
// search page.
package search

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/content"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/routes"
)

// Record is one searchable page section.
type Record struct {
	DocID     string `json:"docId"`
	PageTitle string `json:"pageTitle"`
	Section   string `json:"section,omitempty"`
	URL       string `json:"url"`
	Text      string `json:"text"`
}

// Options are the client-side settings recorded in the index header.
type Options struct {
	Language                         []string `json:"language"`
	HighlightSearchTermsOnTargetPage bool     `json:"highlightSearchTermsOnTargetPage"`
	ExplicitSearchResultPath         bool     `json:"explicitSearchResultPath"`
	SearchResultLimits               int      `json:"searchResultLimits"`
	SearchResultContextMaxLength     int      `json:"searchResultContextMaxLength"`
	SearchPage                       string   `json:"searchPage"`
}

// Index is the search index of one locale.
type Index struct {
	Locale    string   `json:"locale"`
	Options   Options  `json:"options"`
	Documents []Record `json:"documents"`
	// Terms maps each term to the ascending indexes of the records containing it.
	Terms map[string][]int `json:"terms"`

	hashed bool
}

// Build indexes every listed page of every locale. Unlisted docs are left out.
func Build(cfg *config.SiteConfig, table *routes.Table, sets map[string]*content.Set) ([]*Index, error) {
	out := make([]*Index, 0, len(cfg.I18n.Locales))
	for _, locale := range cfg.I18n.Locales {
		lr, ok := table.Locale(locale)
		if !ok {
			return nil, errors.SearchError("route table has no subtree for locale").WithContext("locale", locale).Build()
		}
		set := sets[locale]
		if set == nil {
			return nil, errors.SearchError("no content for locale").WithContext("locale", locale).Build()
		}

		ix := &Index{
			Locale: locale,
			Options: Options{
				Language:                         cfg.Search.Language,
				HighlightSearchTermsOnTargetPage: cfg.Search.HighlightSearchTermsOnTargetPage,
				ExplicitSearchResultPath:         cfg.Search.ExplicitSearchResultPath,
				SearchResultLimits:               cfg.Search.SearchResultLimits,
				SearchResultContextMaxLength:     cfg.Search.SearchResultContextMaxLength,
				SearchPage:                       routes.JoinPath(cfg.LocaleBaseURL(locale), routes.SearchSegment),
			},
			Terms:  make(map[string][]int),
			hashed: cfg.Search.Hashed,
		}

		for _, page := range lr.Pages() {
			d, ok := set.Get(page.DocID)
			if !ok || d.Unlisted {
				continue
			}
			if err := ix.addDoc(d, page.Path); err != nil {
				return nil, errors.WrapError(err, errors.CategorySearch, "failed to index document").
					WithContext("doc_id", d.ID).
					WithContext("locale", locale).
					Build()
			}
		}
		out = append(out, ix)
	}
	return out, nil
}

func (ix *Index) addDoc(d *content.Doc, pagePath string) error {
	sections, err := extractSections(d.Body)
	if err != nil {
		return err
	}
	for _, s := range sections {
		text := s.plain()
		if text == "" && s.heading == "" {
			continue
		}
		rec := Record{DocID: d.ID, PageTitle: d.Title, Section: s.heading, URL: pagePath, Text: text}
		if s.anchor != "" {
			rec.URL = pagePath + "#" + s.anchor
		}
		ix.add(rec)
	}
	return nil
}

func (ix *Index) add(rec Record) {
	id := len(ix.Documents)
	ix.Documents = append(ix.Documents, rec)

	terms := Tokenize(rec.PageTitle+" "+rec.Section+" "+rec.Text, ix.Options.Language)
	seen := make(map[string]bool, len(terms))
	for _, term := range terms {
		if seen[term] {
			continue
		}
		seen[term] = true
		ix.Terms[term] = append(ix.Terms[term], id)
	}
}

// Hit is a search result.
type Hit struct {
	Record
	Score int `json:"score"`
}

// Search returns up to limit records matching every query term, best first.
func (ix *Index) Search(query string, limit int) []Hit {
	terms := Tokenize(query, ix.Options.Language)
	if len(terms) == 0 {
		return nil
	}
	uniq := slices.Compact(slices.Sorted(slices.Values(terms)))
	counts := make(map[int]int)
	for _, term := range uniq {
		for _, id := range ix.Terms[term] {
			counts[id]++
		}
	}
	unique := len(uniq)

	var hits []Hit
	for id, n := range counts {
		if n < unique {
			continue
		}
		score := n
		rec := ix.Documents[id]
		if strings.Contains(strings.ToLower(rec.PageTitle+" "+rec.Section), strings.ToLower(query)) {
			score += unique
		}
		hits = append(hits, Hit{Record: rec, Score: score})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].URL < hits[j].URL
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

// Bytes returns the serialized index.
func (ix *Index) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(ix); err != nil {
		return nil, fmt.Errorf("marshal search index: %w", err)
	}
	return buf.Bytes(), nil
}

// FileName is search-index.json, or search-index-<hash8>.json when hashed.
func (ix *Index) FileName() (string, error) {
	if !ix.hashed {
		return "search-index.json", nil
	}
	data, err := ix.Bytes()
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return "search-index-" + hex.EncodeToString(sum[:])[:8] + ".json", nil
}

// Dir is the directory, relative to the output root, holding a locale's index.
func Dir(locale string) string {
	return filepath.Join("search", locale)
}

// WriteFiles writes each index below outDir and removes stale index files.
// It returns the written paths relative to outDir, slash separated.
func WriteFiles(outDir string, indexes []*Index) ([]string, error) {
	var written []string
	for _, ix := range indexes {
		dir := filepath.Join(outDir, Dir(ix.Locale))
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to create search directory").
				WithContext("path", dir).Build()
		}
		name, err := ix.FileName()
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryInternal, "failed to serialize search index").Build()
		}
		data, err := ix.Bytes()
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryInternal, "failed to serialize search index").Build()
		}
		target := filepath.Join(dir, name)
		if err := os.WriteFile(target, data, 0o600); err != nil {
			return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to write search index").
				WithContext("path", target).Build()
		}

		stale, _ := filepath.Glob(filepath.Join(dir, "search-index*.json"))
		for _, p := range stale {
			if p != target {
				_ = os.Remove(p)
			}
		}
		written = append(written, filepath.ToSlash(filepath.Join(Dir(ix.Locale), name)))
	}
	return written, nil
}

// Load reads a serialized index.
func Load(path string) (*Index, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- artifact path below the output directory
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read search index").
			WithContext("path", path).Build()
	}
	var ix Index
	if err := json.Unmarshal(data, &ix); err != nil {
		return nil, errors.WrapError(err, errors.CategorySearch, "search index is not valid JSON").
			WithContext("path", path).Build()
	}
	ix.hashed = strings.HasPrefix(filepath.Base(path), "search-index-")
	return &ix, nil
}
