package manifest

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/docsite/internal/git"
)

// FileName is the name of the manifest written next to the build artifacts.
const FileName = "build-manifest.json"

// Build statuses.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	// StatusUnchanged marks a build whose inputs matched the previous build.
	StatusUnchanged = "unchanged"
)

// BuildManifest is a complete record of a build's inputs and outputs.
type BuildManifest struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Inputs    Inputs    `json:"inputs"`
	Outputs   Outputs   `json:"outputs"`
	Status    string    `json:"status"`
	Duration  int64     `json:"duration_ms"`
	Warnings  int       `json:"warnings"`
}

// Inputs captures every input that determines the build outputs.
type Inputs struct {
	ConfigHash  string `json:"config_hash"`
	SidebarHash string `json:"sidebar_hash"`
	// DocsHashes maps locale to the hash of its content set.
	DocsHashes map[string]string `json:"docs_hashes"`
	// Git is informational and not part of InputHash.
	Git *git.Info `json:"git,omitempty"`
}

// Outputs captures the artifacts the build produced.
type Outputs struct {
	RouteTableHash string         `json:"route_table_hash"`
	Pages          map[string]int `json:"pages"`
	SearchIndexes  []string       `json:"search_indexes,omitempty"`
	// Objects maps artifact names to their object store hashes.
	Objects map[string]string `json:"objects,omitempty"`
}

// New returns a manifest with a fresh build id and the current time.
func New(version string) *BuildManifest {
	return &BuildManifest{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Version:   version,
		Inputs:    Inputs{DocsHashes: map[string]string{}},
		Outputs:   Outputs{Pages: map[string]int{}, Objects: map[string]string{}},
	}
}

// InputHash is a deterministic hash of the inputs and the tool version. Two
// builds with equal input hashes produce identical artifacts.
func (m *BuildManifest) InputHash() string {
	hashInput := struct {
		Version     string            `json:"version"`
		ConfigHash  string            `json:"config_hash"`
		SidebarHash string            `json:"sidebar_hash"`
		DocsHashes  map[string]string `json:"docs_hashes"`
	}{
		Version:     m.Version,
		ConfigHash:  m.Inputs.ConfigHash,
		SidebarHash: m.Inputs.SidebarHash,
		DocsHashes:  m.Inputs.DocsHashes,
	}
	// encoding/json sorts map keys, so the encoding is stable.
	data, _ := json.Marshal(hashInput)
	return fmt.Sprintf("%x", sha256.Sum256(data))
}

// ToJSON serializes the manifest to JSON.
func (m *BuildManifest) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	return append(data, '\n'), nil
}

// FromJSON deserializes a manifest from JSON.
func FromJSON(data []byte) (*BuildManifest, error) {
	var m BuildManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}
	return &m, nil
}

// WriteFile writes the manifest to dir/build-manifest.json.
func (m *BuildManifest) WriteFile(dir string) (string, error) {
	data, err := m.ToJSON()
	if err != nil {
		return "", err
	}
	p := filepath.Join(dir, FileName)
	if err := os.WriteFile(p, data, 0o600); err != nil {
		return "", fmt.Errorf("write manifest: %w", err)
	}
	return p, nil
}

// ReadFile loads a manifest written by WriteFile.
func ReadFile(path string) (*BuildManifest, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- artifact path below the output directory
	if err != nil {
		return nil, err
	}
	return FromJSON(data)
}
