package frontmatter

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates the document started with a YAML
// frontmatter delimiter but did not contain a closing delimiter.
var ErrMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")

// Split separates YAML frontmatter (`---` delimited) from the Markdown body.
//
// If the document does not start with a YAML frontmatter delimiter, had is false
// and body is the full input.
func Split(content []byte) (frontmatter []byte, body []byte, had bool, err error) {
	nl := detectNewline(content)
	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, nil
	}

	start := len(open)
	if bytes.HasPrefix(content[start:], open) {
		return []byte{}, content[start+len(open):], true, nil
	}

	closeSeq := []byte(nl + "---" + nl)
	idx := bytes.Index(content[start:], closeSeq)
	if idx < 0 {
		// A closing delimiter on the last line without a trailing newline.
		if bytes.HasSuffix(content, []byte(nl+"---")) {
			end := len(content) - len("---")
			return content[start:end], []byte{}, true, nil
		}
		return nil, nil, false, ErrMissingClosingDelimiter
	}

	end := start + idx + len(nl)
	return content[start:end], content[start+idx+len(closeSeq):], true, nil
}

// Meta holds the frontmatter fields the site generator understands. Unknown
// fields are kept in Extra.
type Meta struct {
	ID              string   `yaml:"id"`
	Slug            string   `yaml:"slug"`
	Title           string   `yaml:"title"`
	Description     string   `yaml:"description"`
	Keywords        []string `yaml:"keywords"`
	SidebarLabel    string   `yaml:"sidebar_label"`
	SidebarPosition *float64 `yaml:"sidebar_position"`
	Draft           bool     `yaml:"draft"`
	Unlisted        bool     `yaml:"unlisted"`
	TOCMinLevel     int      `yaml:"toc_min_heading_level"`
	TOCMaxLevel     int      `yaml:"toc_max_heading_level"`

	Extra map[string]any `yaml:"-"`
}

// Parse splits content and decodes its frontmatter into Meta. Documents
// without frontmatter yield a zero Meta and the full body.
func Parse(content []byte) (Meta, []byte, error) {
	fm, body, had, err := Split(content)
	if err != nil {
		return Meta{}, nil, err
	}
	var meta Meta
	if !had || len(bytes.TrimSpace(fm)) == 0 {
		return meta, body, nil
	}
	if err := yaml.Unmarshal(fm, &meta); err != nil {
		return Meta{}, nil, err
	}
	var fields map[string]any
	if err := yaml.Unmarshal(fm, &fields); err != nil {
		return Meta{}, nil, err
	}
	for _, known := range knownKeys {
		delete(fields, known)
	}
	if len(fields) > 0 {
		meta.Extra = fields
	}
	return meta, body, nil
}

var knownKeys = []string{
	"id", "slug", "title", "description", "keywords", "sidebar_label",
	"sidebar_position", "draft", "unlisted", "toc_min_heading_level", "toc_max_heading_level",
}

func detectNewline(content []byte) string {
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}
