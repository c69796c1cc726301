package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/florianilch/genaibridge/internal/chat"
)

// errorResponse is the legacy wire error envelope.
type errorResponse struct {
	Error errorDetail `json:"error"`
}

// errorDetail carries the HTTP code, a message and the canonical status name.
type errorDetail struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

func newErrorResponse(code int, message string) *errorResponse {
	if message == "" {
		message = http.StatusText(code)
	}
	return &errorResponse{Error: errorDetail{
		Code:    code,
		Message: message,
		Status:  statusName(code),
	}}
}

// writeJSON writes a JSON response with the given status code.
// Logs encoding failures internally using the provided context.
func writeJSON(ctx context.Context, w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	// Headers and status are written before encoding to avoid buffering.
	// If encoding fails, the client may receive a partial response.
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.ErrorContext(ctx, "failed to encode JSON response", "error", err)
	}
}

// writeError writes a legacy wire error with status code.
func writeError(ctx context.Context, w http.ResponseWriter, code int, message string) {
	writeJSON(ctx, w, newErrorResponse(code, message), code)
}

// writeBackendError logs err and writes it as a legacy wire error.
func writeBackendError(ctx context.Context, w http.ResponseWriter, err error) {
	resp := toErrorResponse(err)
	if resp.Error.Code >= http.StatusInternalServerError {
		slog.ErrorContext(ctx, "request failed", "error", err)
	} else {
		slog.WarnContext(ctx, "request rejected by backend", "error", err)
	}
	writeJSON(ctx, w, resp, resp.Error.Code)
}

// toErrorResponse maps any generator error to a legacy wire error. Backend errors
// keep their status and message; anything else is reported as a bare 500 so that
// internal details do not leak.
func toErrorResponse(err error) *errorResponse {
	var apiErr *chat.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.StatusCode
		if code == 0 {
			code = statusForErrorType(apiErr.Type)
		}
		return newErrorResponse(code, apiErr.Message)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return newErrorResponse(http.StatusGatewayTimeout, "")
	}

	return newErrorResponse(http.StatusInternalServerError, "")
}

// statusForErrorType maps chat error types to HTTP status codes, for errors that
// arrive without one (e.g. mid-stream).
func statusForErrorType(errorType string) int {
	switch errorType {
	case "invalid_request_error":
		return http.StatusBadRequest
	case "authentication_error":
		return http.StatusUnauthorized
	case "permission_denied":
		return http.StatusForbidden
	case "rate_limit_error", "insufficient_quota":
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// statusName maps HTTP status codes to canonical legacy status names.
func statusName(code int) string {
	switch code {
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge:
		return "INVALID_ARGUMENT"
	case http.StatusUnauthorized:
		return "UNAUTHENTICATED"
	case http.StatusForbidden:
		return "PERMISSION_DENIED"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusConflict:
		return "ALREADY_EXISTS"
	case http.StatusTooManyRequests:
		return "RESOURCE_EXHAUSTED"
	case http.StatusInternalServerError:
		return "INTERNAL"
	case http.StatusNotImplemented:
		return "UNIMPLEMENTED"
	case http.StatusServiceUnavailable:
		return "UNAVAILABLE"
	case http.StatusGatewayTimeout:
		return "DEADLINE_EXCEEDED"
	default:
		return "UNKNOWN"
	}
}
