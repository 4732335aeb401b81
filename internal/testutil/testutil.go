// Package testutil holds fixtures shared by package tests: site trees on
// disk and throwaway git repositories.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

// WriteFiles writes files, keyed by slash-separated path, below root.
func WriteFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, body := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	}
}

// WriteSite writes files into a fresh temporary directory and returns it.
func WriteSite(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	WriteFiles(t, root, files)
	return root
}

// InitGitRepo initializes a repository in dir.
func InitGitRepo(t *testing.T, dir string) *git.Repository {
	t.Helper()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err, "failed to initialize git repo")
	return repo
}

// CommitFile writes name below dir, commits it and returns the commit hash.
func CommitFile(t *testing.T, repo *git.Repository, dir, name, body string) string {
	t.Helper()
	WriteFiles(t, dir, map[string]string{name: body})
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add(name)
	require.NoError(t, err)
	hash, err := wt.Commit("add "+name, &git.CommitOptions{
		Author: &object.Signature{Name: "Docs", Email: "docs@example.com", When: time.Unix(1700000000, 0)},
	})
	require.NoError(t, err)
	return hash.String()
}
