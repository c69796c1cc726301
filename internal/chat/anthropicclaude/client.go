package anthropicclaude

import (
	"context"
	"errors"
	"iter"
	"log/slog"
	"net/http"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/florianilch/genaibridge/internal/chat"
)

// Client implements chat.ChatCompletionAdapter for Anthropic's Messages API.
type Client struct {
	client *anthropic.Client
}

// Compile-time check to ensure Client implements chat.ChatCompletionAdapter
var _ chat.ChatCompletionAdapter = (*Client)(nil)

// New creates an Anthropic client with the provided transport. Either the transport
// chain or opts (option.WithAPIKey) need to handle authentication.
func New(transport http.RoundTripper, opts ...option.RequestOption) (*Client, error) {
	if transport == nil {
		return nil, errors.New("transport cannot be nil")
	}

	httpClient := &http.Client{
		Transport: transport,
		// Client.Timeout = 0 allows long-running SSE streams (bounded by ctx)
	}

	clientOpts := append([]option.RequestOption{
		option.WithHTTPClient(httpClient),
		// Generous RequestTimeout bypasses SDK maxTokens checks
		option.WithRequestTimeout(1 * time.Hour),
	}, opts...)

	client := anthropic.NewClient(clientOpts...)
	return &Client{client: &client}, nil
}

// ProcessRequest sends a non-streaming Messages request.
func (c *Client) ProcessRequest(ctx context.Context, req chat.Request) (*chat.Response, error) {
	params, err := fromChatRequest(req)
	if err != nil {
		return nil, invalidRequestError(err)
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, toAPIError(err)
	}

	return toChatResponse(msg), nil
}

// ProcessStreamingRequest sends a streaming Messages request. The first event is
// read eagerly so that connection and HTTP errors are returned directly rather than
// from the iterator. The stream is closed when the iterator finishes or the
// consumer stops early.
func (c *Client) ProcessStreamingRequest(ctx context.Context, req chat.Request) (iter.Seq2[*chat.Chunk, error], error) {
	params, err := fromChatRequest(req)
	if err != nil {
		return nil, invalidRequestError(err)
	}

	stream := c.client.Messages.NewStreaming(ctx, params)
	if !stream.Next() {
		defer func() { _ = stream.Close() }()
		if err := stream.Err(); err != nil {
			return nil, toAPIError(err)
		}
		return nil, errors.New("anthropic stream closed before first event")
	}

	return func(yield func(*chat.Chunk, error) bool) {
		defer func() { _ = stream.Close() }()

		state := newStreamState(req.Model)
		for {
			if chunk := state.toChunk(stream.Current()); chunk != nil {
				if !yield(chunk, nil) {
					return
				}
			}

			if !stream.Next() {
				break
			}
		}

		if err := stream.Err(); err != nil {
			yield(nil, toAPIError(err))
			return
		}
		slog.DebugContext(ctx, "anthropic stream finished", "message_id", state.id)
	}, nil
}
