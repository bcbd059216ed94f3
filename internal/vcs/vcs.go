// Package vcs records placements as git commits in the organized tree.
package vcs

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"supergit/internal/config"
	"supergit/internal/logging"
)

// Repo wraps a git repository rooted at the organized tree.
type Repo struct {
	root        string
	repo        *git.Repository
	authorName  string
	authorEmail string
}

// Open opens the repository at root, initializing one if none exists.
func Open(root string, commit config.CommitConfig) (*Repo, error) {
	var (
		repo *git.Repository
		err  error
	)

	if repo, err = git.PlainOpen(root); err != nil {
		if !errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("failed to open git repository: %w", err)
		}
		if repo, err = git.PlainInit(root, false); err != nil {
			return nil, fmt.Errorf("failed to init git repository: %w", err)
		}
		logging.VCS("Initialized new git repository at %s", root)
	}

	name := commit.AuthorName
	if name == "" {
		name = "supergit"
	}
	email := commit.AuthorEmail
	if email == "" {
		email = "supergit@localhost"
	}

	return &Repo{
		root:        root,
		repo:        repo,
		authorName:  name,
		authorEmail: email,
	}, nil
}

// CommitPaths stages the given paths and commits them with message.
// Paths may be absolute or root-relative; all must live inside the tree.
// Returns the commit hash.
func (r *Repo) CommitPaths(paths []string, message string) (string, error) {
	worktree, err := r.repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to get worktree: %w", err)
	}

	for _, path := range paths {
		rel := path
		if filepath.IsAbs(path) {
			if rel, err = filepath.Rel(r.root, path); err != nil {
				return "", fmt.Errorf("failed to resolve %s: %w", path, err)
			}
		}
		rel = filepath.ToSlash(rel)
		if rel == ".." || strings.HasPrefix(rel, "../") {
			return "", fmt.Errorf("path %s is outside the repository", path)
		}

		if _, err = worktree.Add(rel); err != nil {
			return "", fmt.Errorf("failed to stage %s: %w", rel, err)
		}
		logging.VCSDebug("Staged %s", rel)
	}

	hash, err := worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  r.authorName,
			Email: r.authorEmail,
			When:  time.Now(),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to commit: %w", err)
	}

	logging.VCS("Committed %s: %s", hash.String()[:8], message)
	return hash.String(), nil
}

// Head returns the hash of the current HEAD commit.
func (r *Repo) Head() (string, error) {
	ref, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	return ref.Hash().String(), nil
}
