package sidebar

import (
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

// EntryType distinguishes sidebar entries.
type EntryType string

const (
	EntryDoc      EntryType = "doc"
	EntryCategory EntryType = "category"
	EntryLink     EntryType = "link"
)

// Entry is one sidebar item: a doc reference, a labeled category or an
// external link.
type Entry struct {
	Type  EntryType `json:"type"`
	ID    string    `json:"id,omitempty"`
	Label string    `json:"label,omitempty"`
	Href  string    `json:"href,omitempty"`
	Items []Entry   `json:"items,omitempty"`
	// Collapsed is only meaningful for categories; nil means the theme default.
	Collapsed *bool `json:"collapsed,omitempty"`
	// Link is the doc id a category label links to.
	Link string `json:"link,omitempty"`

	line int
}

// Line returns the source line the entry was declared on.
func (e Entry) Line() int { return e.line }

type rawEntry struct {
	Type      EntryType `yaml:"type"`
	ID        string    `yaml:"id"`
	Label     string    `yaml:"label"`
	Href      string    `yaml:"href"`
	Items     []Entry   `yaml:"items"`
	Collapsed *bool     `yaml:"collapsed"`
	Link      *rawLink  `yaml:"link"`
}

// rawLink accepts `link: some/doc` and `link: {type: doc, id: some/doc}`.
type rawLink struct {
	ID string
}

func (l *rawLink) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		l.ID = node.Value
		return nil
	case yaml.MappingNode:
		var aux struct {
			Type string `yaml:"type"`
			ID   string `yaml:"id"`
		}
		if err := node.Decode(&aux); err != nil {
			return err
		}
		if aux.Type != "" && aux.Type != string(EntryDoc) {
			return fmt.Errorf("line %d: category link type %q is not supported (only doc links)", node.Line, aux.Type)
		}
		l.ID = aux.ID
		return nil
	}
	return fmt.Errorf("line %d: category link must be a doc id or a mapping", node.Line)
}

var allowedKeys = []string{"type", "id", "label", "href", "items", "collapsed", "link"}

// UnmarshalYAML accepts a bare doc id, a one-key `{Label: [items]}` category
// shorthand, or a mapping with an explicit or inferred type.
func (e *Entry) UnmarshalYAML(node *yaml.Node) error {
	e.line = node.Line

	switch node.Kind {
	case yaml.ScalarNode:
		if node.Value == "" {
			return fmt.Errorf("line %d: empty doc id", node.Line)
		}
		*e = Entry{Type: EntryDoc, ID: node.Value, line: node.Line}
		return nil
	case yaml.MappingNode:
	default:
		return fmt.Errorf("line %d: sidebar entry must be a doc id or a mapping", node.Line)
	}

	if len(node.Content) == 2 && node.Content[1].Kind == yaml.SequenceNode && !slices.Contains(allowedKeys, node.Content[0].Value) {
		var items []Entry
		if err := node.Content[1].Decode(&items); err != nil {
			return err
		}
		*e = Entry{Type: EntryCategory, Label: node.Content[0].Value, Items: items, line: node.Line}
		return e.check()
	}

	for i := 0; i < len(node.Content); i += 2 {
		if key := node.Content[i].Value; !slices.Contains(allowedKeys, key) {
			return fmt.Errorf("line %d: unknown sidebar entry field %q", node.Content[i].Line, key)
		}
	}

	var raw rawEntry
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*e = Entry{
		Type:      raw.Type,
		ID:        raw.ID,
		Label:     raw.Label,
		Href:      raw.Href,
		Items:     raw.Items,
		Collapsed: raw.Collapsed,
		line:      node.Line,
	}
	if raw.Link != nil {
		e.Link = raw.Link.ID
	}
	if e.Type == "" {
		switch {
		case raw.Items != nil:
			e.Type = EntryCategory
		case raw.Href != "":
			e.Type = EntryLink
		default:
			e.Type = EntryDoc
		}
	}
	return e.check()
}

func (e *Entry) check() error {
	switch e.Type {
	case EntryDoc:
		if e.ID == "" {
			return fmt.Errorf("line %d: doc entry needs an id", e.line)
		}
	case EntryCategory:
		if e.Label == "" {
			return fmt.Errorf("line %d: category needs a label", e.line)
		}
		if len(e.Items) == 0 {
			return fmt.Errorf("line %d: category %q has no items", e.line, e.Label)
		}
	case EntryLink:
		if e.Label == "" || e.Href == "" {
			return fmt.Errorf("line %d: link entry needs a label and an href", e.line)
		}
	default:
		return fmt.Errorf("line %d: unknown sidebar entry type %q", e.line, e.Type)
	}
	return nil
}
