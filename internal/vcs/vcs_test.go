package vcs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"

	"supergit/internal/config"
)

func TestOpen_InitializesMissingRepo(t *testing.T) {
	root := t.TempDir()

	repo, err := Open(root, config.CommitConfig{})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if repo == nil {
		t.Fatal("Open returned nil repo")
	}

	if _, err := os.Stat(filepath.Join(root, ".git")); err != nil {
		t.Errorf("Expected .git directory after Open: %v", err)
	}

	// Opening again picks up the existing repository.
	if _, err := Open(root, config.CommitConfig{}); err != nil {
		t.Fatalf("Second Open failed: %v", err)
	}
}

func TestCommitPaths(t *testing.T) {
	root := t.TempDir()

	repo, err := Open(root, config.CommitConfig{
		AuthorName:  "alice",
		AuthorEmail: "alice@example.com",
	})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if err := os.MkdirAll(filepath.Join(root, "docs"), 0755); err != nil {
		t.Fatal(err)
	}
	moved := filepath.Join(root, "docs", "report.pdf")
	sidecar := filepath.Join(root, "docs", ".supergit.yaml")
	if err := os.WriteFile(moved, []byte("pdf bytes"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(sidecar, []byte("entries:\n- report.pdf\n"), 0644); err != nil {
		t.Fatal(err)
	}

	hash, err := repo.CommitPaths([]string{moved, sidecar}, "Added report.pdf to docs")
	if err != nil {
		t.Fatalf("CommitPaths failed: %v", err)
	}
	if hash == "" {
		t.Fatal("CommitPaths returned empty hash")
	}

	head, err := repo.Head()
	if err != nil {
		t.Fatalf("Head failed: %v", err)
	}
	if head != hash {
		t.Errorf("Head() = %s, want %s", head, hash)
	}

	// Verify the commit through a fresh open.
	raw, err := git.PlainOpen(root)
	if err != nil {
		t.Fatal(err)
	}
	ref, err := raw.Head()
	if err != nil {
		t.Fatal(err)
	}
	commit, err := raw.CommitObject(ref.Hash())
	if err != nil {
		t.Fatal(err)
	}
	if commit.Message != "Added report.pdf to docs" {
		t.Errorf("Unexpected commit message: %q", commit.Message)
	}
	if commit.Author.Name != "alice" || commit.Author.Email != "alice@example.com" {
		t.Errorf("Unexpected author: %s <%s>", commit.Author.Name, commit.Author.Email)
	}

	stats, err := commit.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if len(stats) != 2 {
		t.Errorf("Expected 2 files in commit, got %d: %v", len(stats), stats)
	}
}

func TestCommitPaths_RelativePaths(t *testing.T) {
	root := t.TempDir()

	repo, err := Open(root, config.CommitConfig{})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if err := os.WriteFile(filepath.Join(root, "note.txt"), []byte("hi"), 0644); err != nil {
		t.Fatal(err)
	}

	hash, err := repo.CommitPaths([]string{"note.txt"}, "Added note.txt to .")
	if err != nil {
		t.Fatalf("CommitPaths failed: %v", err)
	}
	if hash == "" {
		t.Error("CommitPaths returned empty hash")
	}
}

func TestCommitPaths_OutsideRoot(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "tree")
	if err := os.MkdirAll(root, 0755); err != nil {
		t.Fatal(err)
	}

	repo, err := Open(root, config.CommitConfig{})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	outside := filepath.Join(base, "escape.txt")
	if err := os.WriteFile(outside, []byte("nope"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := repo.CommitPaths([]string{outside}, "bad"); err == nil {
		t.Error("Expected error for path outside the repository")
	}
}

func TestCommitPaths_DefaultAuthor(t *testing.T) {
	root := t.TempDir()

	repo, err := Open(root, config.CommitConfig{})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if err := os.WriteFile(filepath.Join(root, "a.txt"), []byte("a"), 0644); err != nil {
		t.Fatal(err)
	}
	hash, err := repo.CommitPaths([]string{"a.txt"}, "Added a.txt to .")
	if err != nil {
		t.Fatalf("CommitPaths failed: %v", err)
	}

	raw, err := git.PlainOpen(root)
	if err != nil {
		t.Fatal(err)
	}
	ref, err := raw.Head()
	if err != nil {
		t.Fatal(err)
	}
	if ref.Hash().String() != hash {
		t.Errorf("HEAD = %s, want %s", ref.Hash().String(), hash)
	}
	commit, err := raw.CommitObject(ref.Hash())
	if err != nil {
		t.Fatal(err)
	}
	if commit.Author.Name != "supergit" || commit.Author.Email != "supergit@localhost" {
		t.Errorf("Unexpected default author: %s <%s>", commit.Author.Name, commit.Author.Email)
	}
}
