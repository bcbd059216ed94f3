// Package sidecar reads and writes the per-directory .supergit.yaml metadata
// files that describe what belongs where in an organized tree.
package sidecar

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the sidecar file kept in each tracked directory.
const FileName = ".supergit.yaml"

// EntriesKey is the reserved record key listing the directory's children.
const EntriesKey = "entries"

// Record holds the parsed contents of one sidecar file. Keys are free-form;
// only EntriesKey has reserved meaning. yaml.v3 renders keys sorted, so
// rewriting a record is stable across runs.
type Record map[string]interface{}

// Path returns the sidecar file path for a directory.
func Path(dir string) string {
	return filepath.Join(dir, FileName)
}

// Read loads the sidecar record from a directory. A missing file yields an
// empty record and no error; a present but unparseable file is an error.
func Read(dir string) (Record, error) {
	data, err := os.ReadFile(Path(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return Record{}, nil
		}
		return nil, fmt.Errorf("failed to read sidecar in %s: %w", dir, err)
	}

	rec := Record{}
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse sidecar in %s: %w", dir, err)
	}
	if rec == nil {
		rec = Record{}
	}
	return rec, nil
}

// Write marshals the record and writes it to the directory's sidecar file.
func Write(dir string, rec Record) error {
	data, err := yaml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal sidecar for %s: %w", dir, err)
	}
	if err := os.WriteFile(Path(dir), data, 0644); err != nil {
		return fmt.Errorf("failed to write sidecar in %s: %w", dir, err)
	}
	return nil
}

// Entries returns the record's entries list. Missing or malformed values
// yield nil; non-string elements are dropped.
func Entries(rec Record) []string {
	raw, ok := rec[EntriesKey]
	if !ok {
		return nil
	}
	list, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	var names []string
	for _, item := range list {
		if s, ok := item.(string); ok {
			names = append(names, s)
		}
	}
	return names
}

// SetEntries replaces the record's entries list.
func SetEntries(rec Record, names []string) {
	list := make([]interface{}, len(names))
	for i, name := range names {
		list[i] = name
	}
	rec[EntriesKey] = list
}

// ListEntries returns the directory's current children, files and
// subdirectories alike. Dot-prefixed names (the sidecar among them) stay out.
// os.ReadDir sorts, so the listing is deterministic.
func ListEntries(dir string) ([]string, error) {
	dirents, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	names := make([]string, 0, len(dirents))
	for _, d := range dirents {
		if strings.HasPrefix(d.Name(), ".") {
			continue
		}
		names = append(names, d.Name())
	}
	return names, nil
}

// Refresh regenerates the entries key from a live listing, preserving every
// other key, and writes the record back. The record is created if the
// directory has no sidecar yet.
func Refresh(dir string) error {
	rec, err := Read(dir)
	if err != nil {
		return err
	}
	names, err := ListEntries(dir)
	if err != nil {
		return err
	}
	SetEntries(rec, names)
	return Write(dir, rec)
}

// RefreshExisting refreshes the entries key only when the directory already
// has a sidecar, and reports whether one was found. It never creates files.
func RefreshExisting(dir string) (bool, error) {
	if _, err := os.Stat(Path(dir)); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat sidecar in %s: %w", dir, err)
	}
	if err := Refresh(dir); err != nil {
		return true, err
	}
	return true, nil
}
