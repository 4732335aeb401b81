package search

import (
	"bytes"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"git.home.luguber.info/inful/docsite/internal/markdown"
)

// section is the plain text below one heading of a rendered page.
type section struct {
	heading string
	anchor  string
	text    strings.Builder
}

// extractSections renders body and splits its text at h2-h6 headings. Text
// before the first such heading forms a section without anchor; h1 text is
// dropped because it repeats the page title.
func extractSections(body []byte) ([]*section, error) {
	rendered, err := markdown.RenderHTML(body)
	if err != nil {
		return nil, err
	}

	sections := []*section{{}}
	current := sections[0]
	var inHeading, inTitle bool
	var headingText strings.Builder
	skipDepth := 0

	z := html.NewTokenizer(bytes.NewReader(rendered))
	for {
		switch z.Next() {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return sections, nil
			}
			return nil, z.Err()
		case html.StartTagToken:
			tok := z.Token()
			switch tok.DataAtom {
			case atom.H1:
				inTitle = true
			case atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
				inHeading = true
				headingText.Reset()
				current = &section{}
				for _, a := range tok.Attr {
					if a.Key == "id" {
						current.anchor = a.Val
					}
				}
				sections = append(sections, current)
			case atom.Script, atom.Style:
				skipDepth++
			}
		case html.EndTagToken:
			tok := z.Token()
			switch tok.DataAtom {
			case atom.H1:
				inTitle = false
			case atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
				inHeading = false
				current.heading = strings.Join(strings.Fields(headingText.String()), " ")
			case atom.Script, atom.Style:
				if skipDepth > 0 {
					skipDepth--
				}
			case atom.P, atom.Li, atom.Pre, atom.Td, atom.Th, atom.Blockquote:
				current.text.WriteByte(' ')
			}
		case html.TextToken:
			if skipDepth > 0 || inTitle {
				continue
			}
			if inHeading {
				headingText.Write(z.Text())
				continue
			}
			current.text.Write(z.Text())
		}
	}
}

func (s *section) plain() string {
	return strings.Join(strings.Fields(s.text.String()), " ")
}
