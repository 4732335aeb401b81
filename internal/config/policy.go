package config

import "git.home.luguber.info/inful/docsite/internal/foundation"

// BrokenLinkPolicy decides how a broken link finding affects the build.
type BrokenLinkPolicy string

const (
	PolicyIgnore BrokenLinkPolicy = "ignore"
	PolicyLog    BrokenLinkPolicy = "log"
	PolicyWarn   BrokenLinkPolicy = "warn"
	PolicyThrow  BrokenLinkPolicy = "throw"
)

var policyNormalizer = foundation.NewNormalizer(map[string]BrokenLinkPolicy{
	"ignore": PolicyIgnore,
	"log":    PolicyLog,
	"warn":   PolicyWarn,
	"throw":  PolicyThrow,
}, PolicyThrow)

// NormalizeBrokenLinkPolicy canonicalizes raw; empty input yields PolicyThrow.
func NormalizeBrokenLinkPolicy(raw string) (BrokenLinkPolicy, error) {
	return policyNormalizer.Normalize(raw)
}

// Fails reports whether findings under this policy abort the build.
func (p BrokenLinkPolicy) Fails() bool { return p == PolicyThrow }
