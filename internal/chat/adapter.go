package chat

import (
	"context"
	"iter"
)

// Adapter defines the contract for sending a chat request to a provider API.
//
// Type parameters allow the interface to express transport contracts for different
// request/response shapes while maintaining compile-time type safety.
//
// Type parameters:
//   - TRequest:  Provider-neutral request structure
//   - TResponse: Complete response structure
//   - TChunk:    Streaming delta structure
type Adapter[TRequest, TResponse, TChunk any] interface {
	// ProcessRequest sends the request to the provider API and returns the complete
	// response. Implementations should remain stateless.
	ProcessRequest(ctx context.Context, req TRequest) (*TResponse, error)

	// ProcessStreamingRequest sends the request to the provider streaming API and returns
	// an iterator of chunks in arrival order. The returned iterator owns the underlying
	// stream handle and releases it when iteration ends or the consumer stops early.
	ProcessStreamingRequest(ctx context.Context, req TRequest) (iter.Seq2[*TChunk, error], error)
}

// ChatCompletionAdapter is the concrete adapter interface for chat completions.
type ChatCompletionAdapter = Adapter[Request, Response, Chunk]
