package git

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/testutil"
)

func TestHead_ResolvesBranchCommitAndDirtyState(t *testing.T) {
	dir := t.TempDir()
	repo := testutil.InitGitRepo(t, dir)
	commit := testutil.CommitFile(t, repo, dir, "docsite.yaml", "title: T\n")

	sub := filepath.Join(dir, "docs")
	require.NoError(t, os.MkdirAll(sub, 0o750))

	info, err := Head(sub)
	require.NoError(t, err)
	require.Equal(t, commit, info.Commit)
	require.Equal(t, "master", info.Branch)
	require.False(t, info.Dirty)
	require.Len(t, info.ShortCommit(), 12)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "docsite.yaml"), []byte("title: Changed\n"), 0o600))
	info, err = Head(dir)
	require.NoError(t, err)
	require.True(t, info.Dirty)
}

func TestHead_NotARepository(t *testing.T) {
	_, err := Head(t.TempDir())
	require.ErrorIs(t, err, ErrNotRepository)
}
