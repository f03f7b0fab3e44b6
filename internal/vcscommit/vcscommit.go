// Package vcscommit implements C11's optional auto-commit flow: stage the
// files an update run touched and commit them to the enclosing repository.
// It is adapted from the teacher's internal/git.Repository.CommitChanges —
// clone/push/branch-creation/GitHub-org-discovery are dropped, since nothing
// in this repo's scope opens or pushes a new branch (see DESIGN.md).
package vcscommit

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Committer commits changed paths to the git repository enclosing a root
// directory.
type Committer struct {
	repo        *git.Repository
	root        string
	authorName  string
	authorEmail string
}

// Open finds and opens the git repository enclosing root (walking up
// through parent directories, enabled by go-git's DetectDotGit option), using
// authorName/authorEmail for the commit signature.
func Open(root, authorName, authorEmail string) (*Committer, error) {
	repo, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open enclosing git repository: %w", err)
	}
	return &Committer{repo: repo, root: root, authorName: authorName, authorEmail: authorEmail}, nil
}

// Commit stages each of files (paths relative to or within the repository
// worktree) and commits them with message.
func (c *Committer) Commit(message string, files []string) error {
	worktree, err := c.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}

	for _, file := range files {
		relPath, err := filepath.Rel(worktree.Filesystem.Root(), file)
		if err != nil {
			relPath = file
		}
		if _, err := worktree.Add(relPath); err != nil {
			return fmt.Errorf("failed to stage %s: %w", relPath, err)
		}
	}

	_, err = worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  c.authorName,
			Email: c.authorEmail,
			When:  time.Now(),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to commit changes: %w", err)
	}
	return nil
}

// CommitMessage renders the generated auto-commit message for n updated tags.
func CommitMessage(n int) string {
	if n == 1 {
		return "dockertag: update 1 image tag"
	}
	return fmt.Sprintf("dockertag: update %d image tags", n)
}
