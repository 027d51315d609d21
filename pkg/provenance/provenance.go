// Package provenance finds the git commit a set of declarations was built
// from.
package provenance

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	gogit "github.com/go-git/go-git/v5"
)

// ErrNoRepository is returned when the directory is not inside a git
// repository.
var ErrNoRepository = errors.New("not a git repository")

// Info describes the commit checked out in the repository holding a
// directory.
type Info struct {
	// Commit is the full SHA of HEAD.
	Commit string

	// Branch is the short branch name, empty for a detached HEAD.
	Branch string

	Author    string
	Timestamp time.Time

	// Dirty reports uncommitted changes below the looked-up directory.
	Dirty bool
}

// ShortCommit returns the first 12 characters of the commit SHA.
func (i *Info) ShortCommit() string {
	if len(i.Commit) > 12 {
		return i.Commit[:12]
	}
	return i.Commit
}

// String renders the commit, branch and dirty marker for logs.
func (i *Info) String() string {
	var sb strings.Builder
	sb.WriteString(i.ShortCommit())
	if i.Branch != "" {
		sb.WriteString(" (" + i.Branch + ")")
	}
	if i.Dirty {
		sb.WriteString(" dirty")
	}
	return sb.String()
}

// Lookup opens the repository enclosing dir and describes its HEAD.
func Lookup(dir string) (*Info, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %q: %w", dir, err)
	}

	repo, err := gogit.PlainOpenWithOptions(abs, &gogit.PlainOpenOptions{DetectDotGit: true})
	if errors.Is(err, gogit.ErrRepositoryNotExists) {
		return nil, fmt.Errorf("%w: %s", ErrNoRepository, dir)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	ref, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}

	commit, err := repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to get commit: %w", err)
	}

	info := &Info{
		Commit:    commit.Hash.String(),
		Author:    commit.Author.Name,
		Timestamp: commit.Author.When,
	}
	if ref.Name().IsBranch() {
		info.Branch = ref.Name().Short()
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree status: %w", err)
	}

	rel, err := filepath.Rel(wt.Filesystem.Root(), abs)
	if err != nil {
		return nil, fmt.Errorf("failed to relate %q to the worktree: %w", dir, err)
	}
	prefix := filepath.ToSlash(rel)
	for path, st := range status {
		if prefix != "." && path != prefix && !strings.HasPrefix(path, prefix+"/") {
			continue
		}
		if st.Worktree != gogit.Unmodified || st.Staging != gogit.Unmodified {
			info.Dirty = true
			break
		}
	}

	return info, nil
}
