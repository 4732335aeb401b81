// Package routes generates, validates, serializes and queries the route
// table: the per-locale tree mapping URL paths to page components.
package routes

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

// FileName is the name of the serialized route table.
const FileName = "routes.json"

// Page components referenced by the table.
const (
	ComponentDocsRoot       = "@theme/DocsRoot"
	ComponentDocVersionRoot = "@theme/DocVersionRoot"
	ComponentDocRoot        = "@theme/DocRoot"
	ComponentDocItem        = "@theme/DocItem"
	ComponentSearchPage     = "@theme/SearchPage"
	ComponentNotFound       = "@theme/NotFound"
)

// CatchAllPath is the path of each locale's not-found route.
const CatchAllPath = "*"

// RouteNode maps a URL path to a page component.
type RouteNode struct {
	Path      string `json:"path"`
	Component string `json:"component"`
	Exact     bool   `json:"exact,omitempty"`
	// Sidebar names the sidebar rendered next to a doc page.
	Sidebar string `json:"sidebar,omitempty"`
	// Content is the source module of a doc page, e.g. "@site/docs/intro.md".
	Content string `json:"content,omitempty"`
	// DocID is the doc a page renders.
	DocID  string       `json:"docId,omitempty"`
	ID     string       `json:"id"`
	Routes []*RouteNode `json:"routes,omitempty"`
}

// LocaleRoutes is the route subtree of one locale.
type LocaleRoutes struct {
	Locale string `json:"locale"`
	// BaseURL is the locale's site root path, ending in "/".
	BaseURL string       `json:"baseUrl"`
	Routes  []*RouteNode `json:"routes"`
}

// Table is the generated route table of every locale.
type Table struct {
	Locales []LocaleRoutes `json:"locales"`
}

// Locale returns the subtree of locale.
func (t *Table) Locale(locale string) (*LocaleRoutes, bool) {
	for i := range t.Locales {
		if t.Locales[i].Locale == locale {
			return &t.Locales[i], true
		}
	}
	return nil, false
}

// Walk visits every node of the subtree depth first.
func (l *LocaleRoutes) Walk(fn func(n *RouteNode)) {
	var visit func(nodes []*RouteNode)
	visit = func(nodes []*RouteNode) {
		for _, n := range nodes {
			fn(n)
			visit(n.Routes)
		}
	}
	visit(l.Routes)
}

// Pages returns the exact doc page routes of the subtree.
func (l *LocaleRoutes) Pages() []*RouteNode {
	var out []*RouteNode
	l.Walk(func(n *RouteNode) {
		if n.Exact && n.Component == ComponentDocItem {
			out = append(out, n)
		}
	})
	return out
}

// PageCount returns the number of doc pages per locale.
func (t *Table) PageCount() map[string]int {
	out := make(map[string]int, len(t.Locales))
	for i := range t.Locales {
		out[t.Locales[i].Locale] = len(t.Locales[i].Pages())
	}
	return out
}

// Bytes returns the canonical serialized form: two-space indented JSON with
// a trailing newline.
func (t *Table) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(t); err != nil {
		return nil, fmt.Errorf("marshal route table: %w", err)
	}
	return buf.Bytes(), nil
}

// Hash is the SHA-256 of the canonical serialized form.
func (t *Table) Hash() (string, error) {
	data, err := t.Bytes()
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// WriteFile writes the table to dir/routes.json through a temporary file.
func (t *Table) WriteFile(dir string) (string, error) {
	data, err := t.Bytes()
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryInternal, "failed to serialize route table").Build()
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", errors.WrapError(err, errors.CategoryFileSystem, "failed to create output directory").
			WithContext("path", dir).Build()
	}
	target := filepath.Join(dir, FileName)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return "", errors.WrapError(err, errors.CategoryFileSystem, "failed to write route table").
			WithContext("path", tmp).Build()
	}
	if err := os.Rename(tmp, target); err != nil {
		return "", errors.WrapError(err, errors.CategoryFileSystem, "failed to move route table into place").
			WithContext("path", target).Build()
	}
	return target, nil
}

// Parse decodes a serialized table.
func Parse(data []byte) (*Table, error) {
	var t Table
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&t); err != nil {
		return nil, errors.WrapError(err, errors.CategoryRoutes, "route table is not valid JSON").Build()
	}
	return &t, nil
}

// ReadFile loads a table written by WriteFile.
func ReadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- artifact path from configuration
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewError(errors.CategoryNotFound, "route table not found").
				WithContext("path", path).Build()
		}
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read route table").
			WithContext("path", path).Build()
	}
	t, err := Parse(data)
	if err != nil {
		if c, ok := errors.AsClassified(err); ok {
			return nil, c.WithContext("path", path)
		}
		return nil, err
	}
	return t, nil
}

// routeID derives a short stable id from path and component.
func routeID(path, component string) string {
	sum := sha256.Sum256([]byte(path + "\x00" + component))
	return hex.EncodeToString(sum[:3])
}
