package organizer

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"supergit/internal/sidecar"
)

// Decision is the model's placement verdict for one file.
type Decision struct {
	Directory     string
	Filename      string
	Justification string
	Sidecar       sidecar.Record
}

// DirectoryUpdate is one item of the init reply: a directory and its
// proposed sidecar record.
type DirectoryUpdate struct {
	Path    string
	Sidecar sidecar.Record
}

// stripFences removes a markdown code fence wrapped around the reply, if any.
func stripFences(reply string) string {
	reply = strings.TrimSpace(reply)
	reply = strings.TrimPrefix(reply, "```yaml")
	reply = strings.TrimPrefix(reply, "```yml")
	reply = strings.TrimPrefix(reply, "```json")
	reply = strings.TrimPrefix(reply, "```")
	reply = strings.TrimSuffix(reply, "```")
	return strings.TrimSpace(reply)
}

// ParseDecision reads a placement reply. The reply is YAML with 'directory',
// 'filename', 'justification' and 'updated .supergit.yaml' keys; extra keys
// are ignored. A reply naming neither directory nor filename is
// ErrIncompleteDecision rather than a parse failure.
func ParseDecision(reply string) (*Decision, error) {
	cleaned := stripFences(reply)

	var raw map[string]interface{}
	if err := yaml.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, &ParseError{Raw: reply, Err: err}
	}
	if raw == nil {
		return nil, &ParseError{Raw: reply, Err: fmt.Errorf("reply is empty")}
	}

	dec := &Decision{}
	dec.Directory, _ = raw["directory"].(string)
	dec.Filename, _ = raw["filename"].(string)
	dec.Justification, _ = raw["justification"].(string)
	if m, ok := raw["updated .supergit.yaml"].(map[string]interface{}); ok {
		dec.Sidecar = sidecar.Record(m)
	}

	if dec.Directory == "" || dec.Filename == "" {
		return nil, fmt.Errorf("%w (directory=%q, filename=%q)", ErrIncompleteDecision, dec.Directory, dec.Filename)
	}
	return dec, nil
}

// extractArray returns the first balanced JSON array in s, or "".
func extractArray(s string) string {
	start := strings.Index(s, "[")
	if start == -1 {
		return ""
	}

	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

// ParseDirectoryUpdates reads an init reply: a JSON array of {path,
// supergit_yaml} items, possibly wrapped in prose or a code fence. Items
// missing either field are dropped, not errors.
func ParseDirectoryUpdates(reply string) ([]DirectoryUpdate, error) {
	cleaned := stripFences(reply)

	arr := extractArray(cleaned)
	if arr == "" {
		return nil, &ParseError{Raw: reply, Err: fmt.Errorf("no JSON array in reply")}
	}

	var items []struct {
		Path         string                 `json:"path"`
		SupergitYAML map[string]interface{} `json:"supergit_yaml"`
	}
	if err := json.Unmarshal([]byte(arr), &items); err != nil {
		return nil, &ParseError{Raw: reply, Err: err}
	}

	var updates []DirectoryUpdate
	for _, item := range items {
		if item.Path == "" || len(item.SupergitYAML) == 0 {
			continue
		}
		updates = append(updates, DirectoryUpdate{
			Path:    item.Path,
			Sidecar: sidecar.Record(item.SupergitYAML),
		})
	}
	return updates, nil
}
