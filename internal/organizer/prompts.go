package organizer

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"supergit/internal/sidecar"
)

// System prompts for the three model-backed operations.
const (
	placementSystemPrompt = "You are an AI assistant that helps organize files in a supergit repository."
	querySystemPrompt     = "You are an AI assistant that helps find files in a supergit repository."
	initSystemPrompt      = "You are an AI assistant that helps organize a supergit repository."
)

const placementInstructions = `Given the combined .supergit.yaml contexts and the file content, determine the most appropriate directory within the supergit repository to place the file, and suggest a systematic filename according to the directory's naming conventions. The response should be in YAML format with 'directory', 'filename', 'justification' and 'updated .supergit.yaml' contents for that directory with no additional explanation.`

const queryInstructions = `Given the user's query and the available files, provide the paths of files that best match the query. If the query asks for general information, provide a concise and accurate natural language response without any additional explanations.`

const initInstructions = `Given the following directory information, update the 'description' and 'remarks' for each directory.

For each directory:
- Update the 'description' key to provide a short description of the directory based on existing files and directory name.
- If applicable, update the 'remarks' key with any specific naming conventions being followed in the directory or other information.

Provide the updated '.supergit.yaml' contents for each directory as a JSON array, where each item has 'path' and 'supergit_yaml' keys.
Only provide the JSON array without markdown formatting as response without any additional explanation.

Example:

[
  {
    "path": "path/to/directory",
    "supergit_yaml": {
      "directory_name": "directory",
      "description": "A short description.",
      "entries": [...],
      "remarks": "Any specific naming conventions."
    }
  },
  ...
]

Directories:`

// buildPlacementPrompt embeds the file and every sidecar record in one YAML
// document under the fixed placement instructions.
func buildPlacementPrompt(fileName, fileContent string, contexts map[string]sidecar.Record) (string, error) {
	payload := map[string]interface{}{
		"file_name":        fileName,
		"file_content":     fileContent,
		"supergit_context": contexts,
	}
	data, err := yaml.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to serialize placement context: %w", err)
	}
	return fmt.Sprintf("%s\n\n%s", placementInstructions, data), nil
}

// buildQueryPrompt pairs the user's query with the collected file previews.
func buildQueryPrompt(query, fileDescriptions string) string {
	return fmt.Sprintf("%s\n\nUser Query: %s\n\nAvailable Files:\n%s", queryInstructions, query, fileDescriptions)
}

// directoryInfo is the per-directory payload sent during init. Field order
// matters only for prompt stability, not parsing.
type directoryInfo struct {
	DirectoryName string   `json:"directory_name"`
	Entries       []string `json:"entries"`
	Description   string   `json:"description"`
	Remarks       string   `json:"remarks"`
	Path          string   `json:"path"`
}

// buildInitPrompt embeds every directory's name, listing, and blank
// description slots as a JSON payload under the init instructions.
func buildInitPrompt(infos []directoryInfo) (string, error) {
	payload := map[string]interface{}{
		"directories": infos,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to serialize directory data: %w", err)
	}
	return fmt.Sprintf("%s\n\n%s", initInstructions, data), nil
}
