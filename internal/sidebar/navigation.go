package sidebar

// Navigation is the prev/next and breadcrumb context of a doc within its sidebar.
type Navigation struct {
	Sidebar  string `json:"sidebar"`
	DocID    string `json:"docId"`
	Previous string `json:"previous,omitempty"`
	Next     string `json:"next,omitempty"`
	// Breadcrumb lists the labels of the enclosing categories, outermost first.
	Breadcrumb []string `json:"breadcrumb"`
	// Label is the explicit sidebar label of the entry, if the declaration sets one.
	Label string `json:"label,omitempty"`
}

// Navigation locates docID in the first sidebar listing it. Repeated
// references within a sidebar are skipped; the first occurrence wins.
func (s *Sidebars) Navigation(docID string) (Navigation, bool) {
	sid, ok := s.SidebarFor(docID)
	if !ok {
		return Navigation{}, false
	}
	sb, _ := s.Get(sid)

	var refs []docRef
	seen := make(map[string]bool)
	walk(sb.Items, nil, func(ref docRef) {
		if seen[ref.id] {
			return
		}
		seen[ref.id] = true
		refs = append(refs, ref)
	})

	for i, ref := range refs {
		if ref.id != docID {
			continue
		}
		nav := Navigation{Sidebar: sid, DocID: docID, Label: ref.label, Breadcrumb: append([]string{}, ref.categories...)}
		if i > 0 {
			nav.Previous = refs[i-1].id
		}
		if i+1 < len(refs) {
			nav.Next = refs[i+1].id
		}
		return nav, true
	}
	return Navigation{}, false
}
