// Package git reads the state of the repository a site lives in so builds
// can record which commit they were produced from.
package git

import (
	stderrors "errors"
	"fmt"

	"github.com/go-git/go-git/v5"
)

// ErrNotRepository indicates the directory is not inside a git work tree.
var ErrNotRepository = stderrors.New("not a git repository")

// Info describes the checked out revision.
type Info struct {
	Commit string `json:"commit"`
	// Branch is empty for a detached HEAD.
	Branch string `json:"branch,omitempty"`
	Dirty  bool   `json:"dirty,omitempty"`
}

// Head resolves HEAD of the repository containing dir. Parent directories
// are searched for the .git directory.
func Head(dir string) (Info, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if stderrors.Is(err, git.ErrRepositoryNotExists) {
			return Info{}, ErrNotRepository
		}
		return Info{}, fmt.Errorf("open repository: %w", err)
	}

	ref, err := repo.Head()
	if err != nil {
		return Info{}, fmt.Errorf("resolve HEAD: %w", err)
	}

	info := Info{Commit: ref.Hash().String()}
	if ref.Name().IsBranch() {
		info.Branch = ref.Name().Short()
	}

	wt, err := repo.Worktree()
	if err != nil {
		return info, nil
	}
	status, err := wt.Status()
	if err != nil {
		return Info{}, fmt.Errorf("worktree status: %w", err)
	}
	info.Dirty = !status.IsClean()
	return info, nil
}

// ShortCommit returns the first 12 characters of the commit hash.
func (i Info) ShortCommit() string {
	if len(i.Commit) > 12 {
		return i.Commit[:12]
	}
	return i.Commit
}
