// Package gateway is the LLM boundary: it turns prompts into reply text and
// knows nothing about files, sidecars, or git.
package gateway

import "context"

// Client sends one prompt per call and returns the model's reply text.
// Calls are single-shot: a failed request surfaces immediately, retry policy
// belongs to the operator rerunning the command.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
	CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	Model() string
}
