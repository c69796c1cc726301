package openaicompat

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/florianilch/genaibridge/internal/chat"
)

// maxErrorBodyBytes bounds how much of an error body is read.
const maxErrorBodyBytes = 64 * 1024

// parseAPIError converts a non-2xx response into *chat.APIError.
// OpenAI-compatible servers are inconsistent about error bodies: most send
// {"error": {"message", "type"}}, some send {"error": "text"}, and proxies in
// front of them may send plain text or HTML. All three shapes are handled.
func parseAPIError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	if err != nil {
		return fmt.Errorf("upstream error status %d and failed to read body: %w", resp.StatusCode, err)
	}

	apiErr := &chat.APIError{
		StatusCode: resp.StatusCode,
		Type:       errorTypeForStatus(resp.StatusCode),
	}

	errField := gjson.GetBytes(body, "error")
	switch {
	case errField.IsObject():
		apiErr.Message = errField.Get("message").String()
		if t := errField.Get("type").String(); t != "" {
			apiErr.Type = t
		}
	case errField.Type == gjson.String:
		apiErr.Message = errField.String()
	}

	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}

	return apiErr
}

// parseStreamError returns the error carried by an SSE data payload, or nil if the
// payload is a regular chunk.
func parseStreamError(data string) *chat.APIError {
	errField := gjson.Get(data, "error")
	if !errField.Exists() || errField.Type == gjson.Null {
		return nil
	}

	apiErr := &chat.APIError{Type: "api_error"}
	if errField.IsObject() {
		apiErr.Message = errField.Get("message").String()
		if t := errField.Get("type").String(); t != "" {
			apiErr.Type = t
		}
	} else {
		apiErr.Message = errField.String()
	}
	return apiErr
}

// errorTypeForStatus derives an OpenAI error type from an HTTP status when the body
// does not name one.
func errorTypeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusNotFound, http.StatusUnprocessableEntity:
		return "invalid_request_error"
	case http.StatusUnauthorized:
		return "authentication_error"
	case http.StatusForbidden:
		return "permission_denied"
	case http.StatusTooManyRequests:
		return "rate_limit_error"
	default:
		if status >= 500 {
			return "server_error"
		}
		return "api_error"
	}
}
