// Package sidebar loads the sidebar declaration and answers navigation
// queries over it.
package sidebar

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

// Sidebar is one named, ordered navigation tree.
type Sidebar struct {
	ID    string  `json:"id"`
	Items []Entry `json:"items"`
}

// Sidebars holds every declared sidebar in declaration order.
type Sidebars struct {
	List []Sidebar `json:"sidebars"`
}

// Load reads and parses the sidebar declaration at path.
func Load(path string) (*Sidebars, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path from site configuration
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.SidebarError("sidebar declaration not found").WithContext("path", path).Build()
		}
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read sidebar declaration").
			WithContext("path", path).Build()
	}
	sb, err := Parse(data)
	if err != nil {
		if c, ok := errors.AsClassified(err); ok {
			return nil, c.WithContext("path", path)
		}
		return nil, err
	}
	return sb, nil
}

// Parse decodes a sidebar declaration: a mapping of sidebar id to an entry
// list, or to a `{Label: [items]}` mapping of categories.
func Parse(data []byte) (*Sidebars, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, parseError(err)
	}
	if doc.Kind == 0 {
		return nil, errors.SidebarError("sidebar declaration is empty").Fatal().UserAction().Build()
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, parseError(fmt.Errorf("line %d: expected a mapping of sidebar ids", root.Line))
	}

	sb := &Sidebars{}
	seen := make(map[string]bool)
	for i := 0; i < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		if seen[key.Value] {
			return nil, parseError(fmt.Errorf("line %d: sidebar %q declared twice", key.Line, key.Value))
		}
		seen[key.Value] = true

		var items []Entry
		switch val.Kind {
		case yaml.SequenceNode:
			if err := val.Decode(&items); err != nil {
				return nil, parseError(err)
			}
		case yaml.MappingNode:
			for j := 0; j < len(val.Content); j += 2 {
				cat := &yaml.Node{Kind: yaml.MappingNode, Line: val.Content[j].Line, Content: val.Content[j : j+2]}
				var e Entry
				if err := cat.Decode(&e); err != nil {
					return nil, parseError(err)
				}
				items = append(items, e)
			}
		default:
			return nil, parseError(fmt.Errorf("line %d: sidebar %q must be a list of entries", val.Line, key.Value))
		}
		if len(items) == 0 {
			return nil, parseError(fmt.Errorf("line %d: sidebar %q has no entries", key.Line, key.Value))
		}
		sb.List = append(sb.List, Sidebar{ID: key.Value, Items: items})
	}
	return sb, nil
}

func parseError(err error) error {
	return errors.WrapError(err, errors.CategorySidebar, "failed to parse sidebar declaration").
		Fatal().UserAction().Build()
}

// IDs returns the sidebar ids in declaration order.
func (s *Sidebars) IDs() []string {
	ids := make([]string, len(s.List))
	for i, sb := range s.List {
		ids[i] = sb.ID
	}
	return ids
}

// Get returns the sidebar named id.
func (s *Sidebars) Get(id string) (Sidebar, bool) {
	for _, sb := range s.List {
		if sb.ID == id {
			return sb, true
		}
	}
	return Sidebar{}, false
}

// Has reports whether a sidebar named id is declared.
func (s *Sidebars) Has(id string) bool {
	_, ok := s.Get(id)
	return ok
}

// DocIDs flattens the doc references of sidebar id in display order. A
// category's link doc precedes its items.
func (s *Sidebars) DocIDs(id string) []string {
	sb, ok := s.Get(id)
	if !ok {
		return nil
	}
	var out []string
	walk(sb.Items, nil, func(ref docRef) { out = append(out, ref.id) })
	return out
}

// SidebarFor returns the first sidebar that lists docID.
func (s *Sidebars) SidebarFor(docID string) (string, bool) {
	for _, sb := range s.List {
		found := false
		walk(sb.Items, nil, func(ref docRef) {
			if ref.id == docID {
				found = true
			}
		})
		if found {
			return sb.ID, true
		}
	}
	return "", false
}

// Hash is a content hash of the parsed declaration.
func (s *Sidebars) Hash() string {
	data, err := json.Marshal(s)
	if err != nil {
		panic(fmt.Sprintf("sidebar: marshal for hash: %v", err))
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Prune returns a copy without doc entries keep rejects. Categories left
// empty are dropped and category links to rejected docs are cleared.
func (s *Sidebars) Prune(keep func(docID string) bool) *Sidebars {
	out := &Sidebars{}
	for _, sb := range s.List {
		items := pruneEntries(sb.Items, keep)
		if len(items) > 0 {
			out.List = append(out.List, Sidebar{ID: sb.ID, Items: items})
		}
	}
	return out
}

func pruneEntries(entries []Entry, keep func(string) bool) []Entry {
	var out []Entry
	for _, e := range entries {
		switch e.Type {
		case EntryDoc:
			if !keep(e.ID) {
				continue
			}
		case EntryCategory:
			e.Items = pruneEntries(e.Items, keep)
			if e.Link != "" && !keep(e.Link) {
				e.Link = ""
			}
			if len(e.Items) == 0 && e.Link == "" {
				continue
			}
		}
		out = append(out, e)
	}
	return out
}

type docRef struct {
	id         string
	label      string
	categories []string
	location   string
	line       int
}

// walk visits doc references in display order.
func walk(entries []Entry, path []string, fn func(docRef)) {
	walkAt(entries, path, "items", fn)
}

func walkAt(entries []Entry, path []string, loc string, fn func(docRef)) {
	for i, e := range entries {
		here := fmt.Sprintf("%s[%d]", loc, i)
		switch e.Type {
		case EntryDoc:
			fn(docRef{id: e.ID, label: e.Label, categories: path, location: here, line: e.line})
		case EntryCategory:
			inner := append(append([]string(nil), path...), e.Label)
			if e.Link != "" {
				fn(docRef{id: e.Link, label: e.Label, categories: inner, location: here + ".link", line: e.line})
			}
			walkAt(e.Items, inner, here+".items", fn)
		}
	}
}
