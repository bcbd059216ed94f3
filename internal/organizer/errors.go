package organizer

import (
	"errors"
	"fmt"
)

// ErrNoSidecars means the tree carries no metadata at all, so there is
// nothing to place files against.
var ErrNoSidecars = errors.New("no .supergit.yaml files found in the tree")

// ErrIncompleteDecision means the model's reply parsed but did not name both
// a target directory and a filename.
var ErrIncompleteDecision = errors.New("could not determine the target directory or filename")

// ParseError reports a model reply that could not be parsed into the
// expected structure. Raw carries the full reply for diagnosis.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse the model reply: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
