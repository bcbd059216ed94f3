package sidecar

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"supergit/internal/logging"
)

// skipHidden reports whether a directory should not be descended. The tree
// root itself is always entered, even when its own name is dot-prefixed.
func skipHidden(path, root, name string) bool {
	return path != root && strings.HasPrefix(name, ".")
}

// Aggregate walks the tree and returns every sidecar record found, keyed by
// absolute directory path. Directories without a sidecar are omitted, and an
// unparseable sidecar is skipped with a warning rather than sinking the whole
// walk. Hidden directories (.git, .supergit, anything dot-prefixed) are not
// descended.
func Aggregate(root string) (map[string]Record, error) {
	timer := logging.StartTimer(logging.CategoryWalk, "Aggregate")
	defer timer.Stop()

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root %s: %w", root, err)
	}

	records := make(map[string]Record)
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.IsDir() {
			return nil
		}
		if skipHidden(path, absRoot, d.Name()) {
			return filepath.SkipDir
		}
		if _, statErr := os.Stat(Path(path)); statErr != nil {
			return nil // no sidecar here
		}
		rec, readErr := Read(path)
		if readErr != nil {
			logging.WalkWarn("Skipping unreadable sidecar in %s: %v", path, readErr)
			return nil
		}
		records[path] = rec
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", absRoot, err)
	}

	logging.Walk("Aggregated %d sidecar records under %s", len(records), absRoot)
	return records, nil
}

// ReindexAll refreshes the entries key of every existing sidecar in the tree
// and returns how many were refreshed. Directories without a sidecar are left
// alone; reindexing never creates metadata.
func ReindexAll(root string) (int, error) {
	timer := logging.StartTimer(logging.CategoryReindex, "ReindexAll")
	defer timer.Stop()

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve root %s: %w", root, err)
	}

	count := 0
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.IsDir() {
			return nil
		}
		if skipHidden(path, absRoot, d.Name()) {
			return filepath.SkipDir
		}
		refreshed, refreshErr := RefreshExisting(path)
		if refreshErr != nil {
			return refreshErr
		}
		if refreshed {
			count++
			logging.ReindexDebug("Refreshed entries in %s", path)
		}
		return nil
	})
	if err != nil {
		return count, fmt.Errorf("failed to reindex %s: %w", absRoot, err)
	}

	logging.Reindex("Refreshed %d sidecars under %s", count, absRoot)
	return count, nil
}

// DirState describes one directory for description bootstrapping: its
// current children and whatever sidecar record it already carries.
type DirState struct {
	Path    string
	Name    string
	Entries []string
	Record  Record
}

// Scan collects the state of every directory in the tree, sidecar or not, in
// lexical walk order. Hidden directories are skipped as in Aggregate.
func Scan(root string) ([]DirState, error) {
	timer := logging.StartTimer(logging.CategoryWalk, "Scan")
	defer timer.Stop()

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root %s: %w", root, err)
	}

	var states []DirState
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.IsDir() {
			return nil
		}
		if skipHidden(path, absRoot, d.Name()) {
			return filepath.SkipDir
		}

		entries, listErr := ListEntries(path)
		if listErr != nil {
			return listErr
		}
		rec, readErr := Read(path)
		if readErr != nil {
			logging.WalkWarn("Treating unreadable sidecar in %s as empty: %v", path, readErr)
			rec = Record{}
		}
		states = append(states, DirState{
			Path:    path,
			Name:    filepath.Base(path),
			Entries: entries,
			Record:  rec,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", absRoot, err)
	}

	logging.Walk("Scanned %d directories under %s", len(states), absRoot)
	return states, nil
}
