// Package scaffold writes the example documentation site that goes with the
// configuration produced by `docsite init`.
package scaffold

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

//go:embed all:site
var site embed.FS

// Files lists the slash-separated paths the scaffold writes, sorted.
func Files() []string {
	var out []string
	_ = fs.WalkDir(site, "site", func(p string, d fs.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			out = append(out, p[len("site/"):])
		}
		return nil
	})
	sort.Strings(out)
	return out
}

// Write copies the example site into dir. Existing files are left alone
// unless force is set. It returns the paths written, relative to dir.
func Write(dir string, force bool) ([]string, error) {
	var written []string
	for _, rel := range Files() {
		dst := filepath.Join(dir, filepath.FromSlash(rel))
		if _, err := os.Stat(dst); err == nil && !force {
			continue
		}
		data, err := site.ReadFile("site/" + rel)
		if err != nil {
			return written, errors.WrapError(err, errors.CategoryInternal, "failed to read embedded scaffold").
				WithContext("file", rel).Build()
		}
		if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
			return written, errors.WrapError(err, errors.CategoryFileSystem, "failed to create directory").
				WithContext("path", filepath.Dir(dst)).Build()
		}
		if err := os.WriteFile(dst, data, 0o600); err != nil {
			return written, errors.WrapError(err, errors.CategoryFileSystem, "failed to write scaffold file").
				WithContext("path", dst).Build()
		}
		written = append(written, rel)
	}
	return written, nil
}
