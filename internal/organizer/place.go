package organizer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"supergit/internal/logging"
	"supergit/internal/sidecar"
	"supergit/internal/vcs"
)

// normalizeTargetDir resolves the model's directory choice to a clean path
// relative to root. Absolute paths are re-rooted; anything escaping the tree
// is rejected.
func normalizeTargetDir(root, target string) (string, error) {
	rel := target
	if filepath.IsAbs(target) {
		absRoot, err := filepath.Abs(root)
		if err != nil {
			return "", fmt.Errorf("failed to resolve root %s: %w", root, err)
		}
		if rel, err = filepath.Rel(absRoot, target); err != nil {
			return "", fmt.Errorf("target directory %s is outside the tree", target)
		}
	}
	rel = filepath.Clean(rel)
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("target directory %s is outside the tree", target)
	}
	return rel, nil
}

// Place moves filePath into the decided directory under the decided name,
// refreshes that directory's sidecar, and commits both. An existing file at
// the target is overwritten; the commit history is the recovery path.
// Returns the root-relative target directory.
func (o *Organizer) Place(filePath string, dec *Decision) (string, error) {
	relDir, err := normalizeTargetDir(o.root, dec.Directory)
	if err != nil {
		return "", err
	}

	targetDir := filepath.Join(o.root, relDir)
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", targetDir, err)
	}

	newPath := filepath.Join(targetDir, dec.Filename)
	if err := os.Rename(filePath, newPath); err != nil {
		return "", fmt.Errorf("failed to move %s: %w", filePath, err)
	}
	o.Journal().FileMoved(filePath, newPath)
	logging.Place("Moved %s -> %s", filePath, newPath)

	if err := sidecar.Refresh(targetDir); err != nil {
		logging.PlaceError("Failed to refresh sidecar in %s: %v", targetDir, err)
		return "", err
	}
	o.Journal().SidecarWritten(targetDir)

	repo, err := vcs.Open(o.root, o.commit)
	if err != nil {
		return "", err
	}
	message := fmt.Sprintf("Added %s to %s", dec.Filename, relDir)
	hash, err := repo.CommitPaths([]string{newPath, sidecar.Path(targetDir)}, message)
	if err != nil {
		return "", fmt.Errorf("failed to commit placement: %w", err)
	}
	o.Journal().CommitCreated(hash, message)

	return relDir, nil
}
