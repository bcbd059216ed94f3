package organizer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"supergit/internal/logging"
	"supergit/internal/sidecar"
)

// previewLimit caps how many characters of each file go into the query
// prompt.
const previewLimit = 500

// NoMatchesMessage is returned when the scope holds no readable files; the
// model is never consulted in that case.
const NoMatchesMessage = "No files found matching the query."

// underScope reports whether dir sits at or below scope. Path boundaries are
// respected, so a scope of docs does not match docs-archive.
func underScope(scope, dir string) bool {
	rel, err := filepath.Rel(scope, dir)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// readPreview returns the first previewLimit characters of the file, with
// invalid UTF-8 bytes dropped.
func readPreview(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	// previewLimit characters need at most 4 bytes each.
	buf := make([]byte, previewLimit*4)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", err
	}

	text := strings.ToValidUTF8(string(buf[:n]), "")
	return truncateRunes(text, previewLimit), nil
}

// Query answers a natural-language question about the files under scope.
// Each sidecar-listed entry that is a readable file contributes a preview;
// stale entries and unreadable files are skipped. With nothing to show, the
// fixed no-matches message comes back without a model call. Otherwise the
// model's reply is returned verbatim.
func (o *Organizer) Query(ctx context.Context, scope, query string) (string, error) {
	contexts, err := sidecar.Aggregate(o.root)
	if err != nil {
		return "", err
	}

	absScope, err := filepath.Abs(scope)
	if err != nil {
		return "", fmt.Errorf("failed to resolve scope %s: %w", scope, err)
	}

	dirs := make([]string, 0, len(contexts))
	for dir := range contexts {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	var descriptions strings.Builder
	files := 0
	for _, dir := range dirs {
		if !underScope(absScope, dir) {
			continue
		}
		for _, entry := range sidecar.Entries(contexts[dir]) {
			entryPath := filepath.Join(dir, entry)
			info, statErr := os.Stat(entryPath)
			if statErr != nil || info.IsDir() {
				continue
			}
			preview, readErr := readPreview(entryPath)
			if readErr != nil {
				logging.QueryDebug("Skipping unreadable entry %s: %v", entryPath, readErr)
				continue
			}
			fmt.Fprintf(&descriptions, "File: %s\nContent Preview:\n%s\n\n", entryPath, preview)
			files++
		}
	}

	if descriptions.Len() == 0 {
		logging.Query("No files in scope %s; returning fixed message", absScope)
		return NoMatchesMessage, nil
	}
	logging.Query("Query %q over %d files in scope %s", query, files, absScope)

	prompt := buildQueryPrompt(query, descriptions.String())

	start := time.Now()
	reply, err := o.client.CompleteWithSystem(ctx, querySystemPrompt, prompt)
	o.Journal().LLMCall(o.client.Model(), time.Since(start), err == nil, errString(err))
	if err != nil {
		return "", fmt.Errorf("query request failed: %w", err)
	}
	o.lastReply = reply
	logging.API("Query reply:\n%s", reply)

	return reply, nil
}
