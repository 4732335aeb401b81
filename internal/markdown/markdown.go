// Package markdown analyzes and renders document bodies with goldmark.
//
// Heading anchors are generated with Slugify so that TOC entries, search
// records and rendered HTML agree on fragment identifiers.
package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// Heading is a section heading with its generated anchor.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
	ID    string `json:"id"`
}

type LinkKind string

const (
	LinkKindInline LinkKind = "inline"
	LinkKindAuto   LinkKind = "auto"
	LinkKindImage  LinkKind = "image"
)

// Link is a link-like construct found in a document body.
type Link struct {
	Kind        LinkKind
	Destination string
	Text        string
	Line        int
}

// Document is the result of analyzing one body.
type Document struct {
	// Title is the text of the first level-1 heading, if any.
	Title    string
	Headings []Heading
	Links    []Link
}

func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)
}

func parse(md goldmark.Markdown, body []byte) gmast.Node {
	ctx := parser.NewContext(parser.WithIDs(newAnchorIDs()))
	return md.Parser().Parse(text.NewReader(body), parser.WithContext(ctx))
}

// Analyze parses body (frontmatter already removed) and extracts headings
// and links.
func Analyze(body []byte) Document {
	root := parse(newMarkdown(), body)

	var doc Document
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *gmast.Heading:
			h := Heading{Level: node.Level, Text: nodeText(node, body)}
			if id, ok := node.AttributeString("id"); ok {
				if b, ok := id.([]byte); ok {
					h.ID = string(b)
				}
			}
			if node.Level == 1 && doc.Title == "" {
				doc.Title = h.Text
			}
			doc.Headings = append(doc.Headings, h)
			return gmast.WalkContinue, nil
		case *gmast.AutoLink:
			doc.Links = append(doc.Links, Link{
				Kind: LinkKindAuto, Destination: string(node.URL(body)), Line: lineOf(node, body),
			})
		case *gmast.Image:
			doc.Links = append(doc.Links, Link{
				Kind: LinkKindImage, Destination: string(node.Destination), Text: nodeText(node, body), Line: lineOf(node, body),
			})
			return gmast.WalkSkipChildren, nil
		case *gmast.Link:
			doc.Links = append(doc.Links, Link{
				Kind: LinkKindInline, Destination: string(node.Destination), Text: nodeText(node, body), Line: lineOf(node, body),
			})
		}
		return gmast.WalkContinue, nil
	})
	return doc
}

// RenderHTML renders body to HTML with the same heading anchors Analyze reports.
func RenderHTML(body []byte) ([]byte, error) {
	md := newMarkdown()
	root := parse(md, body)
	var buf bytes.Buffer
	if err := md.Renderer().Render(&buf, body, root); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// nodeText concatenates the literal text below n.
func nodeText(n gmast.Node, src []byte) string {
	var buf bytes.Buffer
	_ = gmast.Walk(n, func(c gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *gmast.Text:
			buf.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *gmast.String:
			buf.Write(t.Value)
		}
		return gmast.WalkContinue, nil
	})
	return string(bytes.TrimSpace(buf.Bytes()))
}

// lineOf returns the 1-based source line of n: the line of its first text
// segment, else the first line of the enclosing block.
func lineOf(n gmast.Node, src []byte) int {
	offset := -1
	_ = gmast.Walk(n, func(c gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if t, ok := c.(*gmast.Text); ok && entering {
			offset = t.Segment.Start
			return gmast.WalkStop, nil
		}
		return gmast.WalkContinue, nil
	})
	if offset < 0 {
		for p := n; p != nil; p = p.Parent() {
			if p.Type() != gmast.TypeBlock {
				continue
			}
			if lines := p.Lines(); lines != nil && lines.Len() > 0 {
				offset = lines.At(0).Start
				break
			}
		}
	}
	if offset < 0 {
		return 0
	}
	return bytes.Count(src[:offset], []byte("\n")) + 1
}
