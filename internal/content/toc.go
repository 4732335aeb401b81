package content

import "git.home.luguber.info/inful/docsite/internal/markdown"

// TOC returns the headings of doc within [minLevel, maxLevel]. Frontmatter
// toc_min_heading_level and toc_max_heading_level override the site range.
func TOC(doc *Doc, minLevel, maxLevel int) []markdown.Heading {
	if doc.tocMin > 0 {
		minLevel = doc.tocMin
	}
	if doc.tocMax > 0 {
		maxLevel = doc.tocMax
	}
	var out []markdown.Heading
	for _, h := range doc.Headings {
		if h.Level >= minLevel && h.Level <= maxLevel {
			out = append(out, h)
		}
	}
	return out
}
