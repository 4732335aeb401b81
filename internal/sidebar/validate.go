package sidebar

import (
	stderrors "errors"
	"fmt"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

// Finding is a problem with one sidebar reference.
type Finding struct {
	Sidebar  string
	DocID    string
	Location string
	Line     int
}

func (f Finding) String() string {
	return fmt.Sprintf("sidebar %s %s (line %d): %s", f.Sidebar, f.Location, f.Line, f.DocID)
}

// Report is the result of validating the declaration against the known docs.
type Report struct {
	// Dangling references name docs that do not exist. They fail the build.
	Dangling []Finding
	// Duplicates are repeated references to one doc within a sidebar.
	Duplicates []Finding
}

// Err converts dangling references into one fatal sidebar error whose cause
// joins a finding per reference. Returns nil when there are none.
func (r Report) Err() error {
	if len(r.Dangling) == 0 {
		return nil
	}
	findings := make([]error, 0, len(r.Dangling))
	for _, f := range r.Dangling {
		findings = append(findings, errors.SidebarError("references a doc that does not exist").
			WithContext("sidebar", f.Sidebar).
			WithContext("doc_id", f.DocID).
			WithContext("location", f.Location).
			WithContext("line", f.Line).
			Build())
	}
	return errors.WrapError(stderrors.Join(findings...), errors.CategorySidebar, "sidebar references unknown docs").
		Fatal().
		UserAction().
		WithContext("dangling", len(r.Dangling)).
		Build()
}

// Validate checks every doc reference (including category links) against known.
func (s *Sidebars) Validate(known func(docID string) bool) Report {
	var r Report
	for _, sb := range s.List {
		seen := make(map[string]bool)
		walk(sb.Items, nil, func(ref docRef) {
			f := Finding{Sidebar: sb.ID, DocID: ref.id, Location: ref.location, Line: ref.line}
			if !known(ref.id) {
				r.Dangling = append(r.Dangling, f)
			}
			if seen[ref.id] {
				r.Duplicates = append(r.Duplicates, f)
			}
			seen[ref.id] = true
		})
	}
	return r
}
