package chat

import "fmt"

// APIError is a backend error normalized by a transport.
// Transports convert provider-specific error bodies into this shape so outer
// surfaces can map them without knowing which provider produced them.
type APIError struct {
	// StatusCode is the HTTP status of the failed call, or 0 if unknown
	// (e.g. an error event received mid-stream).
	StatusCode int    `json:"-"`
	Type       string `json:"type"`
	Message    string `json:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %s", e.Type, e.Message)
	}
	return fmt.Sprintf("%s (status %d): %s", e.Type, e.StatusCode, e.Message)
}
