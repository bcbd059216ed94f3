package organizer

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"supergit/internal/logging"
	"supergit/internal/sidecar"
)

// contentLimit caps how much of a file's representation goes into the
// placement prompt, counted in characters after encoding.
const contentLimit = 1000

// truncateRunes returns the first n characters of s.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// fileRepresentation turns the file into prompt-embeddable text. An explicit
// instruction replaces the content entirely. PDFs go in as base64; anything
// else is read as text with invalid UTF-8 bytes dropped.
func fileRepresentation(path, instruction string) (string, error) {
	if instruction != "" {
		return truncateRunes(instruction, contentLimit), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return truncateRunes(base64.StdEncoding.EncodeToString(data), contentLimit), nil
	}
	return truncateRunes(strings.ToValidUTF8(string(data), ""), contentLimit), nil
}

// Analyze asks the model where filePath belongs in the tree. instruction,
// when non-empty, stands in for the file's content. The tree must already
// carry sidecar metadata; ErrNoSidecars otherwise.
func (o *Organizer) Analyze(ctx context.Context, filePath, instruction string) (*Decision, error) {
	if _, err := os.Stat(filePath); err != nil {
		return nil, fmt.Errorf("file does not exist: %w", err)
	}

	contexts, err := sidecar.Aggregate(o.root)
	if err != nil {
		return nil, err
	}
	if len(contexts) == 0 {
		return nil, ErrNoSidecars
	}

	content, err := fileRepresentation(filePath, instruction)
	if err != nil {
		return nil, err
	}

	fileName := filepath.Base(filePath)
	prompt, err := buildPlacementPrompt(fileName, content, contexts)
	if err != nil {
		return nil, err
	}
	logging.Prompt("Placement prompt for %s: %d contexts, %d bytes", fileName, len(contexts), len(prompt))

	start := time.Now()
	reply, err := o.client.CompleteWithSystem(ctx, placementSystemPrompt, prompt)
	o.Journal().LLMCall(o.client.Model(), time.Since(start), err == nil, errString(err))
	if err != nil {
		return nil, fmt.Errorf("placement request failed: %w", err)
	}
	o.lastReply = reply
	logging.API("Placement reply for %s:\n%s", fileName, reply)

	dec, err := ParseDecision(reply)
	if err != nil {
		return nil, err
	}
	logging.PlaceDebug("Decision for %s: directory=%s filename=%s", fileName, dec.Directory, dec.Filename)
	return dec, nil
}
