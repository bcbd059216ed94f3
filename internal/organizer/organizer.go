// Package organizer is the placement brain: it builds prompts from the tree's
// sidecar metadata, parses the model's replies, and runs the four operations
// (add, init, reindex, query) against one organized tree.
package organizer

import (
	"github.com/google/uuid"

	"supergit/internal/config"
	"supergit/internal/gateway"
	"supergit/internal/logging"
	"supergit/internal/sidecar"
)

// Organizer runs operations against one tree. Not safe for concurrent use;
// one operation per process is the model.
type Organizer struct {
	client gateway.Client
	root   string
	commit config.CommitConfig
	opID   string

	lastReply string
}

// New creates an Organizer for the tree rooted at root.
func New(client gateway.Client, root string, commit config.CommitConfig) *Organizer {
	return &Organizer{
		client: client,
		root:   root,
		commit: commit,
		opID:   uuid.New().String()[:8],
	}
}

// Root returns the tree root this organizer operates on.
func (o *Organizer) Root() string {
	return o.root
}

// OpID returns the short correlation ID shared by this operation's log lines
// and journal events.
func (o *Organizer) OpID() string {
	return o.opID
}

// Journal returns the journal scoped to this operation.
func (o *Organizer) Journal() *logging.Journal {
	return logging.JournalFor(o.opID)
}

// LastReply returns the raw text of the most recent model reply, for verbose
// echo. Empty until an operation has called the gateway.
func (o *Organizer) LastReply() string {
	return o.lastReply
}

// Reindex refreshes the entries listing of every existing sidecar in the
// tree and reports how many were refreshed. No model involved.
func (o *Organizer) Reindex() (int, error) {
	return sidecar.ReindexAll(o.root)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
