package organizer

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"supergit/internal/sidecar"
)

func TestQuery_ReturnsReplyVerbatim(t *testing.T) {
	root := t.TempDir()
	writeTestSidecar(t, filepath.Join(root, "docs"), sidecar.Record{
		"entries": []interface{}{"guide.md"},
	})
	writeTestFile(t, filepath.Join(root, "docs", "guide.md"), "how to configure the widget")

	client := replyWith("docs/guide.md covers widget configuration.")
	o := newTestOrganizer(client, root)

	result, err := o.Query(context.Background(), root, "how do I configure the widget?")
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if result != "docs/guide.md covers widget configuration." {
		t.Errorf("Unexpected result: %q", result)
	}

	if client.lastSystem != querySystemPrompt {
		t.Errorf("Unexpected system prompt: %q", client.lastSystem)
	}
	for _, want := range []string{
		"User Query: how do I configure the widget?",
		"guide.md",
		"Content Preview:\nhow to configure the widget",
	} {
		if !strings.Contains(client.lastPrompt, want) {
			t.Errorf("Prompt missing %q", want)
		}
	}
}

func TestQuery_NoFilesSkipsModel(t *testing.T) {
	root := t.TempDir()
	writeTestSidecar(t, root, sidecar.Record{"description": "Empty tree."})

	client := &mockLLMClient{}
	o := newTestOrganizer(client, root)

	result, err := o.Query(context.Background(), root, "anything?")
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if result != NoMatchesMessage {
		t.Errorf("Expected the fixed no-matches message, got %q", result)
	}
	if client.calls != 0 {
		t.Errorf("Expected no model calls, got %d", client.calls)
	}
}

func TestQuery_ScopeBoundary(t *testing.T) {
	root := t.TempDir()
	writeTestSidecar(t, filepath.Join(root, "docs"), sidecar.Record{
		"entries": []interface{}{"report.txt"},
	})
	writeTestFile(t, filepath.Join(root, "docs", "report.txt"), "current report")
	writeTestSidecar(t, filepath.Join(root, "docs-archive"), sidecar.Record{
		"entries": []interface{}{"old.txt"},
	})
	writeTestFile(t, filepath.Join(root, "docs-archive", "old.txt"), "ancient report")

	client := replyWith("docs/report.txt")
	o := newTestOrganizer(client, root)

	if _, err := o.Query(context.Background(), filepath.Join(root, "docs"), "reports"); err != nil {
		t.Fatalf("Query failed: %v", err)
	}

	if !strings.Contains(client.lastPrompt, "report.txt") {
		t.Error("Prompt missing the in-scope file")
	}
	if strings.Contains(client.lastPrompt, "old.txt") {
		t.Error("Sibling directory sharing the scope prefix must not leak into the prompt")
	}
}

func TestQuery_PreviewCapped(t *testing.T) {
	root := t.TempDir()
	writeTestSidecar(t, root, sidecar.Record{
		"entries": []interface{}{"big.txt"},
	})
	writeTestFile(t, filepath.Join(root, "big.txt"), strings.Repeat("x", 600))

	client := replyWith("big.txt")
	o := newTestOrganizer(client, root)

	if _, err := o.Query(context.Background(), root, "big files"); err != nil {
		t.Fatalf("Query failed: %v", err)
	}

	if !strings.Contains(client.lastPrompt, strings.Repeat("x", 500)) {
		t.Error("Prompt missing the 500-character preview")
	}
	if strings.Contains(client.lastPrompt, strings.Repeat("x", 501)) {
		t.Error("Preview exceeded 500 characters")
	}
}

func TestQuery_SkipsStaleAndDirectoryEntries(t *testing.T) {
	root := t.TempDir()
	writeTestSidecar(t, root, sidecar.Record{
		"entries": []interface{}{"ghost.txt", "docs", "real.txt"},
	})
	writeTestFile(t, filepath.Join(root, "real.txt"), "real content")
	writeTestSidecar(t, filepath.Join(root, "docs"), sidecar.Record{})

	client := replyWith("real.txt")
	o := newTestOrganizer(client, root)

	if _, err := o.Query(context.Background(), root, "files"); err != nil {
		t.Fatalf("Query failed: %v", err)
	}

	if !strings.Contains(client.lastPrompt, "real.txt") {
		t.Error("Prompt missing the real file")
	}
	if strings.Contains(client.lastPrompt, "ghost.txt") {
		t.Error("Stale entry must not appear in the prompt")
	}
	if strings.Contains(client.lastPrompt, "File: "+filepath.Join(root, "docs")+"\n") {
		t.Error("Directory entries must not be previewed")
	}
}

func TestQuery_GatewayError(t *testing.T) {
	root := t.TempDir()
	writeTestSidecar(t, root, sidecar.Record{
		"entries": []interface{}{"a.txt"},
	})
	writeTestFile(t, filepath.Join(root, "a.txt"), "content")

	client := &mockLLMClient{
		completeFunc: func(context.Context, string, string) (string, error) {
			return "", fmt.Errorf("timeout")
		},
	}
	o := newTestOrganizer(client, root)

	if _, err := o.Query(context.Background(), root, "anything"); err == nil {
		t.Fatal("Expected wrapped gateway error")
	}
}
