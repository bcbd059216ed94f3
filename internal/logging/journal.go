// The journal is an append-only JSONL record of what supergit did to a
// tree: operations run, files moved, sidecars rewritten, commits created,
// LLM round-trips. One line per event, machine-parseable, written only in
// debug mode alongside the category logs.

package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EventType defines the type of journal event
type EventType string

const (
	EventOpStart       EventType = "op_start"
	EventOpEnd         EventType = "op_end"
	EventLLMRequest    EventType = "llm_request"
	EventLLMResponse   EventType = "llm_response"
	EventLLMError      EventType = "llm_error"
	EventFileMoved     EventType = "file_moved"
	EventSidecarWrite  EventType = "sidecar_write"
	EventCommitCreated EventType = "commit_created"
)

// Event represents one structured journal entry
type Event struct {
	Timestamp  int64                  `json:"ts"`               // Unix milliseconds
	Event      EventType              `json:"event"`            // What happened
	OpID       string                 `json:"op,omitempty"`     // Operation correlation ID
	Target     string                 `json:"target,omitempty"` // Path, model, or hash
	Success    bool                   `json:"success"`
	DurationMs int64                  `json:"dur_ms,omitempty"`
	Error      string                 `json:"error,omitempty"`
	Message    string                 `json:"msg,omitempty"`
	Fields     map[string]interface{} `json:"fields,omitempty"`
}

var (
	journalFile *os.File
	journalMu   sync.Mutex
)

// InitJournal opens the journal file. No-op unless debug mode is enabled.
func InitJournal() error {
	if !IsDebugMode() {
		return nil
	}

	journalMu.Lock()
	defer journalMu.Unlock()

	if journalFile != nil {
		return nil // Already initialized
	}

	date := time.Now().Format("2006-01-02")
	path := filepath.Join(logsDir, fmt.Sprintf("%s_journal.log", date))

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to create journal: %w", err)
	}
	journalFile = file

	return nil
}

// CloseJournal closes the journal file
func CloseJournal() {
	journalMu.Lock()
	defer journalMu.Unlock()

	if journalFile != nil {
		journalFile.Close()
		journalFile = nil
	}
}

// Journal provides scoped event recording for one operation
type Journal struct {
	opID string
}

// JournalFor returns a journal scoped to an operation ID
func JournalFor(opID string) *Journal {
	return &Journal{opID: opID}
}

// Record writes one event line
func (j *Journal) Record(event Event) {
	if !IsDebugMode() || journalFile == nil {
		return
	}

	if event.Timestamp == 0 {
		event.Timestamp = time.Now().UnixMilli()
	}
	if event.OpID == "" {
		event.OpID = j.opID
	}

	journalMu.Lock()
	defer journalMu.Unlock()

	data, err := json.Marshal(event)
	if err == nil {
		journalFile.WriteString(string(data) + "\n")
	}
}

// OperationStart records the start of a CLI operation (add, init, reindex, query)
func (j *Journal) OperationStart(op, target string) {
	j.Record(Event{
		Event:   EventOpStart,
		Target:  target,
		Success: true,
		Message: fmt.Sprintf("%s started: %s", op, target),
		Fields:  map[string]interface{}{"operation": op},
	})
}

// OperationEnd records the end of a CLI operation
func (j *Journal) OperationEnd(op string, duration time.Duration, success bool, errMsg string) {
	j.Record(Event{
		Event:      EventOpEnd,
		Success:    success,
		DurationMs: duration.Milliseconds(),
		Error:      errMsg,
		Message:    fmt.Sprintf("%s finished (success=%v, %dms)", op, success, duration.Milliseconds()),
		Fields:     map[string]interface{}{"operation": op},
	})
}

// LLMCall records one gateway round-trip
func (j *Journal) LLMCall(model string, duration time.Duration, success bool, errMsg string) {
	event := EventLLMResponse
	if !success {
		event = EventLLMError
	}
	j.Record(Event{
		Event:      event,
		Target:     model,
		Success:    success,
		DurationMs: duration.Milliseconds(),
		Error:      errMsg,
		Message:    fmt.Sprintf("LLM call: %s (%dms, success=%v)", model, duration.Milliseconds(), success),
	})
}

// FileMoved records a placement move
func (j *Journal) FileMoved(from, to string) {
	j.Record(Event{
		Event:   EventFileMoved,
		Target:  to,
		Success: true,
		Message: fmt.Sprintf("moved %s -> %s", from, to),
		Fields:  map[string]interface{}{"from": from},
	})
}

// SidecarWritten records a sidecar file write
func (j *Journal) SidecarWritten(dir string) {
	j.Record(Event{
		Event:   EventSidecarWrite,
		Target:  dir,
		Success: true,
		Message: fmt.Sprintf("sidecar written in %s", dir),
	})
}

// CommitCreated records a successful commit
func (j *Journal) CommitCreated(hash, message string) {
	j.Record(Event{
		Event:   EventCommitCreated,
		Target:  hash,
		Success: true,
		Message: message,
	})
}
