package scm

import (
	"context"
	"errors"
	"fmt"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// GitCollector reads revision metadata straight from the repository with
// go-git, so it works without a git binary on PATH.
type GitCollector struct{}

// NewGitCollector creates a collector for git working copies.
func NewGitCollector() *GitCollector { return &GitCollector{} }

func (c *GitCollector) Name() string { return "Git" }

// Collect opens the repository at dir and reads the HEAD commit. A missing
// repository, or one without commits yet, degrades to empty Stats.
func (c *GitCollector) Collect(ctx context.Context, dir string) (Stats, error) {
	// go-git reads the repository in-process, so honor cancellation before
	// starting the walk.
	if err := ctx.Err(); err != nil {
		return Stats{}, err
	}
	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return Stats{}, nil
		}
		return Stats{}, fmt.Errorf("open git repository: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return Stats{}, nil
		}
		return Stats{}, fmt.Errorf("read git head: %w", err)
	}

	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return Stats{}, fmt.Errorf("read git commit %s: %w", head.Hash(), err)
	}

	return Stats{
		Name:     c.Name(),
		Revision: head.Hash().String()[:12],
		Date:     commit.Author.When.Format("2006-01-02 15:04:05 -0700"),
	}, nil
}
