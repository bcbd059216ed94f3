package gateway

import "fmt"

// RequestError reports a non-2xx reply from a provider API. Body carries the
// raw response so the operator can see what the service actually said.
type RequestError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s request failed with status %d: %s", e.Provider, e.StatusCode, e.Body)
}
