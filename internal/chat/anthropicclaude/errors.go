package anthropicclaude

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/florianilch/genaibridge/internal/chat"
)

// streamingErrorPrefix is the prefix used by the Anthropic SDK when wrapping streaming errors.
const streamingErrorPrefix = "received error while streaming: "

// toAPIError converts an Anthropic SDK error into *chat.APIError.
// The SDK returns different error shapes for streaming vs non-streaming requests,
// so both are normalized here. Context cancellation is returned unchanged; other
// non-Anthropic errors (network, timeouts) are wrapped as server_error.
func toAPIError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	// Non-streaming: *anthropic.Error provides structured error via RawJSON()
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		if errorResp, parseErr := parseErrorResponseJSON(apiErr.RawJSON()); parseErr == nil && errorResp.Error.Message != "" {
			return &chat.APIError{
				StatusCode: apiErr.StatusCode,
				Type:       mapAnthropicErrorType(errorResp.Error.Type),
				Message:    errorResp.Error.Message,
			}
		}
		return &chat.APIError{
			StatusCode: apiErr.StatusCode,
			Type:       "api_error",
			Message:    apiErr.Error(),
		}
	}

	// Streaming: SDK embeds JSON in error string with known prefix
	if jsonStr, ok := strings.CutPrefix(err.Error(), streamingErrorPrefix); ok {
		if errorResp, parseErr := parseErrorResponseJSON(jsonStr); parseErr == nil {
			return &chat.APIError{
				Type:    mapAnthropicErrorType(errorResp.Error.Type),
				Message: errorResp.Error.Message,
			}
		}
	}

	return &chat.APIError{
		Type:    "server_error",
		Message: err.Error(),
	}
}

// invalidRequestError reports a request Anthropic would reject, without calling it.
func invalidRequestError(err error) *chat.APIError {
	return &chat.APIError{
		StatusCode: http.StatusBadRequest,
		Type:       "invalid_request_error",
		Message:    err.Error(),
	}
}

// parseErrorResponseJSON parses Anthropic error JSON into structured ErrorResponse.
// Shared by both non-streaming (RawJSON) and streaming (error string) error paths.
func parseErrorResponseJSON(jsonStr string) (*anthropic.ErrorResponse, error) {
	var errorResp anthropic.ErrorResponse
	if err := json.Unmarshal([]byte(jsonStr), &errorResp); err != nil {
		return nil, fmt.Errorf("failed to parse Anthropic error JSON: %w", err)
	}
	return &errorResp, nil
}

// mapAnthropicErrorType translates the Anthropic error taxonomy to chat error types.
func mapAnthropicErrorType(anthropicType string) string {
	switch anthropicType {
	case "overloaded_error", "timeout_error":
		return "server_error"
	case "rate_limit_error":
		return "rate_limit_error"
	case "invalid_request_error", "not_found_error":
		return "invalid_request_error"
	case "authentication_error":
		return "authentication_error"
	case "permission_error":
		return "permission_denied"
	case "billing_error":
		return "insufficient_quota"
	default:
		return "api_error"
	}
}
