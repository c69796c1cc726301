package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/httplog/v3"
)

// Logging logs one line per HTTP request with method, path, status and duration.
// Health probes are logged at debug level only.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return httplog.RequestLogger(logger, &httplog.Options{
		Schema: httplog.SchemaECS.Concise(true),

		Level: slog.LevelInfo,
		Skip: func(req *http.Request, respStatus int) bool {
			return isHealthProbe(req) && respStatus < http.StatusBadRequest && !logger.Enabled(req.Context(), slog.LevelDebug)
		},

		// Prompts and credentials travel in bodies and auth headers; never log them
		LogRequestHeaders:  []string{"Content-Type", "User-Agent"},
		LogResponseHeaders: []string{},
		LogRequestBody:     nil,
		LogResponseBody:    nil,

		RecoverPanics: false, // dedicated Recovery middleware; panics are logged regardless
	})
}

// SetLogAttrs sets attributes on the request log. It is a no-op outside Logging.
func SetLogAttrs(ctx context.Context, attrs ...slog.Attr) {
	httplog.SetAttrs(ctx, attrs...)
}

func isHealthProbe(req *http.Request) bool {
	return strings.HasPrefix(req.URL.Path, "/health/")
}
