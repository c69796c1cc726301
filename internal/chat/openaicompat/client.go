package openaicompat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/tmaxmax/go-sse"

	"github.com/florianilch/genaibridge/internal/chat"
)

const (
	contentTypeJSON = "application/json"

	// doneMarker terminates an OpenAI-compatible event stream.
	doneMarker = "[DONE]"

	// maxEventSize bounds a single SSE event; long completions arrive in many small events.
	maxEventSize = 4 * 1024 * 1024
)

// Client implements chat.ChatCompletionAdapter for OpenAI-compatible APIs.
type Client struct {
	apiKey  string
	chatURL string
	http    *http.Client
}

// Compile-time check to ensure Client implements chat.ChatCompletionAdapter
var _ chat.ChatCompletionAdapter = (*Client)(nil)

// New creates a client for the API rooted at baseURL (e.g. https://api.openai.com/v1).
// The transport chain is responsible for proxies and ambient headers.
func New(baseURL, apiKey string, transport http.RoundTripper) (*Client, error) {
	if transport == nil {
		return nil, errors.New("transport cannot be nil")
	}

	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("base url cannot be empty")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: scheme and host are required", baseURL)
	}

	return &Client{
		apiKey:  apiKey,
		chatURL: baseURL + "/chat/completions",
		http: &http.Client{
			Transport: transport,
			// Client.Timeout = 0 allows long-running SSE streams; cancellation comes from ctx
		},
	}, nil
}

// ProcessRequest sends a non-streaming chat completion request.
func (c *Client) ProcessRequest(ctx context.Context, req chat.Request) (*chat.Response, error) {
	req.Stream = false

	resp, err := c.post(ctx, req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	var chatResp chat.Response
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, fmt.Errorf("decode chat completion response: %w", err)
	}

	return &chatResp, nil
}

// ProcessStreamingRequest sends a streaming chat completion request and returns the
// decoded chunks as an iterator. The response body is closed when the iterator
// finishes or the consumer stops early.
func (c *Client) ProcessStreamingRequest(ctx context.Context, req chat.Request) (iter.Seq2[*chat.Chunk, error], error) {
	req.Stream = true

	resp, err := c.post(ctx, req)
	if err != nil {
		return nil, err
	}

	return func(yield func(*chat.Chunk, error) bool) {
		defer func() { _ = resp.Body.Close() }()

		for event, err := range sse.Read(resp.Body, &sse.ReadConfig{MaxEventSize: maxEventSize}) {
			if err != nil {
				yield(nil, fmt.Errorf("read chat completion stream: %w", err))
				return
			}

			if event.Data == "" {
				continue
			}
			if event.Data == doneMarker {
				slog.DebugContext(ctx, "chat completion stream finished")
				return
			}

			// Some backends report failures inside the stream instead of via status code
			if apiErr := parseStreamError(event.Data); apiErr != nil {
				yield(nil, apiErr)
				return
			}

			var chunk chat.Chunk
			if err := json.Unmarshal([]byte(event.Data), &chunk); err != nil {
				yield(nil, fmt.Errorf("decode chat completion chunk: %w", err))
				return
			}

			if !yield(&chunk, nil) {
				return
			}
		}
	}, nil
}

// post marshals the request and performs the call, converting non-2xx statuses into
// *chat.APIError. On success the caller owns the response body.
func (c *Client) post(ctx context.Context, req chat.Request) (*http.Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal chat completion request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.chatURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create chat completion request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentTypeJSON)
	if req.Stream {
		httpReq.Header.Set("Accept", "text/event-stream")
	} else {
		httpReq.Header.Set("Accept", contentTypeJSON)
	}
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("chat completion request failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer func() { _ = resp.Body.Close() }()
		return nil, parseAPIError(resp)
	}

	return resp, nil
}
