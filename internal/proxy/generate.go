package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"net/http"

	"github.com/florianilch/genaibridge/internal/genai"
	"github.com/florianilch/genaibridge/internal/observability/middleware"
)

// HeaderPromptID optionally carries a caller-chosen prompt ID for log correlation.
const HeaderPromptID = "X-Goog-Api-Prompt-Id"

// generateContentBody is the wire body of generateContent and streamGenerateContent.
// Sampling parameters may also arrive in generationConfig; top-level values win.
type generateContentBody struct {
	genai.GenerateContentRequest

	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type generationConfig struct {
	MaxOutputTokens *int     `json:"maxOutputTokens,omitempty"`
	Temperature     *float64 `json:"temperature,omitempty"`
}

// toRequest resolves the body into a generator request for model. A model named
// in the body takes precedence over the path.
func (b *generateContentBody) toRequest(model string) *genai.GenerateContentRequest {
	req := b.GenerateContentRequest
	if req.Model == "" {
		req.Model = model
	}
	if cfg := b.GenerationConfig; cfg != nil {
		if req.MaxTokens == nil {
			req.MaxTokens = cfg.MaxOutputTokens
		}
		if req.Temperature == nil {
			req.Temperature = cfg.Temperature
		}
	}
	return &req
}

type embedContentBody struct {
	Model    string              `json:"model,omitempty"`
	Content  *genai.ContentItem  `json:"content,omitempty"`
	Contents []genai.ContentItem `json:"contents,omitempty"`
}

// modelAction dispatches POST /v1beta/models/{model}:{action}.
func (p *Proxy) modelAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	target, err := parseModelAction(r.PathValue("modelAction"))
	if err != nil {
		writeError(ctx, w, http.StatusNotFound, err.Error())
		return
	}
	middleware.SetLogAttrs(ctx,
		slog.String("model", target.Model),
		slog.String("action", target.Action),
	)

	switch target.Action {
	case actionGenerateContent:
		p.generateContent(ctx, w, r, target.Model)
	case actionStreamGenerateContent:
		p.streamGenerateContent(ctx, w, r, target.Model)
	case actionCountTokens:
		p.countTokens(ctx, w, r, target.Model)
	case actionEmbedContent:
		p.embedContent(ctx, w, r, target.Model)
	default:
		writeError(ctx, w, http.StatusNotFound, fmt.Sprintf("unknown action %q", target.Action))
	}
}

func (p *Proxy) generateContent(ctx context.Context, w http.ResponseWriter, r *http.Request, model string) {
	var body generateContentBody
	if !decodeBody(ctx, w, r, &body) {
		return
	}

	resp, err := p.generator.GenerateContent(ctx, body.toRequest(model), promptID(r))
	if err != nil {
		writeBackendError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, resp, http.StatusOK)
}

// streamGenerateContent sends fragments as SSE when alt=sse, otherwise as one
// JSON array written incrementally.
func (p *Proxy) streamGenerateContent(ctx context.Context, w http.ResponseWriter, r *http.Request, model string) {
	var body generateContentBody
	if !decodeBody(ctx, w, r, &body) {
		return
	}

	stream, err := p.generator.GenerateContentStream(ctx, body.toRequest(model), promptID(r))
	if err != nil {
		writeBackendError(ctx, w, err)
		return
	}

	if r.URL.Query().Get("alt") == "sse" {
		streamSSE(ctx, w, stream)
	} else {
		streamJSONArray(ctx, w, stream)
	}
}

func streamSSE(ctx context.Context, w http.ResponseWriter, stream iter.Seq2[*genai.GenerateContentResponse, error]) {
	sse, err := NewSSEWriter(w)
	if err != nil {
		slog.ErrorContext(ctx, "SSE not supported", "error", err)
		writeError(ctx, w, http.StatusInternalServerError, "")
		return
	}

	for fragment, err := range stream {
		// Check for client disconnect before processing fragment
		if ctx.Err() != nil {
			slog.DebugContext(ctx, "client disconnected during stream")
			return
		}

		if err != nil {
			slog.ErrorContext(ctx, "stream error", "error", err)
			if writeErr := sse.WriteEvent("error", toErrorResponse(err)); writeErr != nil {
				slog.ErrorContext(ctx, "failed to write error event", "error", writeErr)
			}
			return
		}

		if err := sse.WriteData(fragment); err != nil {
			slog.ErrorContext(ctx, "failed to write fragment", "error", err)
			return
		}
	}
}

// streamJSONArray writes "[frag,\nfrag,...]". A mid-stream error becomes the
// last array element.
func streamJSONArray(ctx context.Context, w http.ResponseWriter, stream iter.Seq2[*genai.GenerateContentResponse, error]) {
	flusher, _ := w.(http.Flusher)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	write := func(s string) bool {
		if _, err := io.WriteString(w, s); err != nil {
			slog.ErrorContext(ctx, "failed to write stream", "error", err)
			return false
		}
		if flusher != nil {
			flusher.Flush()
		}
		return true
	}

	sep := "["
	for fragment, err := range stream {
		if ctx.Err() != nil {
			slog.DebugContext(ctx, "client disconnected during stream")
			return
		}

		var v any = fragment
		if err != nil {
			slog.ErrorContext(ctx, "stream error", "error", err)
			v = toErrorResponse(err)
		}

		data, marshalErr := json.Marshal(v)
		if marshalErr != nil {
			slog.ErrorContext(ctx, "failed to encode fragment", "error", marshalErr)
			break
		}
		if !write(sep + string(data)) {
			return
		}
		sep = ",\n"

		if err != nil {
			break
		}
	}

	if sep == "[" {
		write("[]")
		return
	}
	write("]")
}

func (p *Proxy) countTokens(ctx context.Context, w http.ResponseWriter, r *http.Request, model string) {
	var req genai.CountTokensRequest
	if !decodeBody(ctx, w, r, &req) {
		return
	}
	if req.Model == "" {
		req.Model = model
	}

	resp, err := p.generator.CountTokens(ctx, &req)
	if err != nil {
		writeBackendError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, resp, http.StatusOK)
}

func (p *Proxy) embedContent(ctx context.Context, w http.ResponseWriter, r *http.Request, model string) {
	embedder, ok := p.generator.(genai.Embedder)
	if !ok {
		writeError(ctx, w, http.StatusNotImplemented, "embedding is not supported by this backend")
		return
	}

	var body embedContentBody
	if !decodeBody(ctx, w, r, &body) {
		return
	}

	req := &genai.EmbedContentRequest{Model: body.Model, Contents: body.Contents}
	if req.Model == "" {
		req.Model = model
	}
	if body.Content != nil {
		req.Contents = append([]genai.ContentItem{*body.Content}, req.Contents...)
	}

	resp, err := embedder.EmbedContent(ctx, req)
	if err != nil {
		writeBackendError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, resp, http.StatusOK)
}

// decodeBody decodes the JSON request body into v. On failure it writes the
// error response and returns false.
func decodeBody(ctx context.Context, w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return true
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		slog.WarnContext(ctx, "request exceeds size limit", "limit_bytes", maxBytesErr.Limit)
		writeError(ctx, w, http.StatusRequestEntityTooLarge, "")
		return false
	}

	slog.WarnContext(ctx, "failed to decode request", "error", err)
	writeError(ctx, w, http.StatusBadRequest, "invalid JSON body")
	return false
}

// promptID returns the caller's prompt ID, falling back to the request ID.
func promptID(r *http.Request) string {
	if id := r.Header.Get(HeaderPromptID); id != "" {
		return id
	}
	id, _ := middleware.RequestIDFromContext(r.Context())
	return id
}
