package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testAnthropicClient(serverURL string) *AnthropicClient {
	cfg := DefaultAnthropicConfig("test-key")
	cfg.BaseURL = serverURL
	cfg.Timeout = 5 * time.Second
	return NewAnthropicClientWithConfig(cfg)
}

func TestAnthropicClient_CompleteWithSystem_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/messages" {
			t.Errorf("Expected /messages path, got %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Error("Expected test-key in x-api-key header")
		}
		if r.Header.Get("anthropic-version") != "2023-06-01" {
			t.Errorf("Unexpected anthropic-version: %s", r.Header.Get("anthropic-version"))
		}

		var body AnthropicRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("Failed to decode request body: %v", err)
		}
		if body.Model != "claude-3-5-sonnet-20241022" {
			t.Errorf("Unexpected model: %s", body.Model)
		}
		if body.MaxTokens != 8000 {
			t.Errorf("Expected max_tokens 8000, got %d", body.MaxTokens)
		}
		if body.System != "You are a file organizer." {
			t.Errorf("Unexpected system prompt: %q", body.System)
		}
		if len(body.Messages) != 1 || body.Messages[0].Role != "user" {
			t.Errorf("Expected a single user message, got %+v", body.Messages)
		}
		if body.Temperature != 0.1 {
			t.Errorf("Expected temperature 0.1, got %v", body.Temperature)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{
			"id": "msg_123",
			"content": [
				{"type": "text", "text": "directory: docs\n"},
				{"type": "tool_use", "id": "tu_1"},
				{"type": "text", "text": "filename: report.pdf\n"}
			],
			"usage": {"input_tokens": 10, "output_tokens": 5}
		}`))
	}))
	defer server.Close()

	client := testAnthropicClient(server.URL)

	resp, err := client.CompleteWithSystem(context.Background(), "You are a file organizer.", "Where does report.pdf go?")
	if err != nil {
		t.Fatalf("CompleteWithSystem failed: %v", err)
	}
	// Text blocks concatenate, non-text blocks are skipped, result is trimmed.
	if resp != "directory: docs\nfilename: report.pdf" {
		t.Errorf("Unexpected response: %q", resp)
	}
}

func TestAnthropicClient_Complete_OmitsSystem(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body AnthropicRequest
		json.NewDecoder(r.Body).Decode(&body)
		if body.System != "" {
			t.Errorf("Expected no system prompt, got %q", body.System)
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"content": [{"type": "text", "text": "  ok  "}]}`))
	}))
	defer server.Close()

	client := testAnthropicClient(server.URL)

	resp, err := client.Complete(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if resp != "ok" {
		t.Errorf("Expected trimmed 'ok', got %q", resp)
	}
}

func TestAnthropicClient_Non200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"type": "rate_limit_error", "message": "slow down"}}`))
	}))
	defer server.Close()

	client := testAnthropicClient(server.URL)

	_, err := client.Complete(context.Background(), "hello")
	if err == nil {
		t.Fatal("Expected error for 429 response")
	}

	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("Expected *RequestError, got %T: %v", err, err)
	}
	if reqErr.Provider != "anthropic" {
		t.Errorf("Expected provider anthropic, got %s", reqErr.Provider)
	}
	if reqErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("Expected status 429, got %d", reqErr.StatusCode)
	}
	if reqErr.Body == "" {
		t.Error("Expected error body to carry the raw response")
	}
}

func TestAnthropicClient_EmbeddedError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"error": {"type": "overloaded_error", "message": "overloaded"}}`))
	}))
	defer server.Close()

	client := testAnthropicClient(server.URL)

	_, err := client.Complete(context.Background(), "hello")
	if err == nil {
		t.Fatal("Expected error for embedded API error")
	}
}

func TestAnthropicClient_EmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"content": []}`))
	}))
	defer server.Close()

	client := testAnthropicClient(server.URL)

	_, err := client.Complete(context.Background(), "hello")
	if err == nil {
		t.Fatal("Expected error for empty content")
	}
}

func TestAnthropicClient_MissingKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Server should not be reached without an API key")
	}))
	defer server.Close()

	cfg := DefaultAnthropicConfig("")
	cfg.BaseURL = server.URL
	client := NewAnthropicClientWithConfig(cfg)

	_, err := client.Complete(context.Background(), "hello")
	if err == nil {
		t.Fatal("Expected error for missing API key")
	}
}

func TestAnthropicClient_Model(t *testing.T) {
	client := NewAnthropicClient("test-key")
	if client.Model() != "claude-3-5-sonnet-20241022" {
		t.Errorf("Unexpected default model: %s", client.Model())
	}
}
