package genai

import (
	"context"
	"errors"
	"iter"
	"log/slog"

	"github.com/florianilch/genaibridge/internal/chat"
)

// EmbeddingDimensions is the length of the vectors returned by EmbedContent.
const EmbeddingDimensions = 1536

// ChatGenerator implements ContentGenerator and Embedder on top of a chat backend.
// It holds no mutable state; concurrent calls are independent.
type ChatGenerator struct {
	adapter   chat.ChatCompletionAdapter
	model     string
	estimator TokenEstimator
}

// Compile-time checks to ensure ChatGenerator implements both capability segments
var (
	_ ContentGenerator = (*ChatGenerator)(nil)
	_ Embedder         = (*ChatGenerator)(nil)
)

// Option configures a ChatGenerator.
type Option func(*ChatGenerator)

// WithTokenEstimator replaces the default CharEstimator used by CountTokens.
func WithTokenEstimator(estimator TokenEstimator) Option {
	return func(g *ChatGenerator) {
		if estimator != nil {
			g.estimator = estimator
		}
	}
}

// NewChatGenerator creates a generator sending requests through adapter. model is
// used whenever a request does not name one.
func NewChatGenerator(adapter chat.ChatCompletionAdapter, model string, opts ...Option) (*ChatGenerator, error) {
	if adapter == nil {
		return nil, errors.New("chat adapter cannot be nil")
	}

	g := &ChatGenerator{
		adapter:   adapter,
		model:     model,
		estimator: CharEstimator{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Model returns the default model.
func (g *ChatGenerator) Model() string {
	return g.model
}

// GenerateContent implements ContentGenerator. Backend errors are returned unchanged.
func (g *ChatGenerator) GenerateContent(ctx context.Context, req *GenerateContentRequest, promptID string) (*GenerateContentResponse, error) {
	chatReq := Normalize(req, g.model)

	slog.DebugContext(ctx, "generating content",
		"prompt_id", promptID,
		"model", chatReq.Model,
		"prompt_kind", req.Kind().String(),
		"messages", len(chatReq.Messages),
	)

	resp, err := g.adapter.ProcessRequest(ctx, chatReq)
	if err != nil {
		return nil, err
	}

	return FromChatResponse(resp), nil
}

// GenerateContentStream implements ContentGenerator. Backend errors, whether at
// stream start or mid-stream, are returned unchanged.
func (g *ChatGenerator) GenerateContentStream(ctx context.Context, req *GenerateContentRequest, promptID string) (iter.Seq2[*GenerateContentResponse, error], error) {
	chatReq := Normalize(req, g.model)

	slog.DebugContext(ctx, "streaming content",
		"prompt_id", promptID,
		"model", chatReq.Model,
		"prompt_kind", req.Kind().String(),
		"messages", len(chatReq.Messages),
	)

	chunks, err := g.adapter.ProcessStreamingRequest(ctx, chatReq)
	if err != nil {
		return nil, err
	}

	return FromChatStream(chunks), nil
}

// CountTokens implements ContentGenerator. The count is an estimate; chat backends
// expose no counting endpoint.
func (g *ChatGenerator) CountTokens(ctx context.Context, req *CountTokensRequest) (*CountTokensResponse, error) {
	if req == nil {
		return &CountTokensResponse{}, nil
	}

	return &CountTokensResponse{
		TotalTokens: g.estimator.EstimateTokens(JoinContents(req.Contents)),
	}, nil
}

// EmbedContent implements Embedder with an all-zero vector of EmbeddingDimensions.
// Chat backends have no embedding endpoint; the zero vector keeps callers that probe
// for embedding support working without fabricating meaningful values.
func (g *ChatGenerator) EmbedContent(ctx context.Context, req *EmbedContentRequest) (*EmbedContentResponse, error) {
	slog.DebugContext(ctx, "embedding not supported by chat backend, returning zero vector",
		"dimensions", EmbeddingDimensions,
	)

	return &EmbedContentResponse{
		Embedding: ContentEmbedding{
			Values: make([]float64, EmbeddingDimensions),
		},
	}, nil
}
