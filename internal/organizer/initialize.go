package organizer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"supergit/internal/logging"
	"supergit/internal/sidecar"
)

// resolveUnderRoot joins a reply-supplied relative path onto the root and
// rejects anything that escapes it.
func resolveUnderRoot(absRoot, rel string) (string, bool) {
	candidate := filepath.Join(absRoot, rel)
	check, err := filepath.Rel(absRoot, candidate)
	if err != nil {
		return "", false
	}
	if check == ".." || strings.HasPrefix(check, ".."+string(filepath.Separator)) {
		return "", false
	}
	return candidate, true
}

// Initialize walks the whole tree, asks the model to describe every
// directory, and writes the replies back as sidecar records. Existing
// sidecars are overwritten. Returns how many were written.
func (o *Organizer) Initialize(ctx context.Context) (int, error) {
	absRoot, err := filepath.Abs(o.root)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve root %s: %w", o.root, err)
	}

	states, err := sidecar.Scan(o.root)
	if err != nil {
		return 0, err
	}

	infos := make([]directoryInfo, 0, len(states))
	for _, state := range states {
		rel, err := filepath.Rel(absRoot, state.Path)
		if err != nil {
			return 0, fmt.Errorf("failed to resolve %s: %w", state.Path, err)
		}
		entries := state.Entries
		if entries == nil {
			entries = []string{}
		}
		infos = append(infos, directoryInfo{
			DirectoryName: state.Name,
			Entries:       entries,
			Description:   "",
			Remarks:       "",
			Path:          filepath.ToSlash(rel),
		})
	}

	prompt, err := buildInitPrompt(infos)
	if err != nil {
		return 0, err
	}
	logging.Prompt("Init prompt: %d directories, %d bytes", len(infos), len(prompt))

	start := time.Now()
	reply, err := o.client.CompleteWithSystem(ctx, initSystemPrompt, prompt)
	o.Journal().LLMCall(o.client.Model(), time.Since(start), err == nil, errString(err))
	if err != nil {
		return 0, fmt.Errorf("init request failed: %w", err)
	}
	o.lastReply = reply
	logging.API("Init reply:\n%s", reply)

	updates, err := ParseDirectoryUpdates(reply)
	if err != nil {
		return 0, err
	}

	written := 0
	for _, update := range updates {
		dir, ok := resolveUnderRoot(absRoot, update.Path)
		if !ok {
			logging.PlaceWarn("Skipping init update outside the tree: %s", update.Path)
			continue
		}
		info, statErr := os.Stat(dir)
		if statErr != nil || !info.IsDir() {
			logging.PlaceWarn("Skipping init update for missing directory: %s", update.Path)
			continue
		}
		if err := sidecar.Write(dir, update.Sidecar); err != nil {
			return written, err
		}
		o.Journal().SidecarWritten(dir)
		written++
	}

	logging.Place("Initialized %d sidecars under %s", written, absRoot)
	return written, nil
}
