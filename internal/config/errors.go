package config

import "errors"

// ErrMissingCredential is returned by Validate when no API key is available
// for the selected provider. The CLI treats it as fatal before any tree or
// network work starts.
var ErrMissingCredential = errors.New("no LLM API key configured")
