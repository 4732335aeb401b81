package content

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Hash computes a deterministic hash of a locale's documents from their ids,
// sources, slugs and content fingerprints.
func (s *Set) Hash() string {
	h := sha256.New()
	fmt.Fprintf(h, "locale=%s\n", s.Locale)
	for _, d := range s.Docs {
		fmt.Fprintf(h, "%s|%s|%s|%s|%t\n", d.ID, d.Source, d.Slug, d.Fingerprint, d.Fallback)
	}
	return hex.EncodeToString(h.Sum(nil))
}
