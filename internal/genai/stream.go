package genai

import (
	"iter"

	"github.com/samber/lo"

	"github.com/florianilch/genaibridge/internal/chat"
)

// FromChatStream converts a chat chunk stream into legacy response fragments, one
// per chunk and in the same order.
//
// Chunks are processed one at a time with no buffering beyond the current chunk.
// The returned sequence ends when the chunk stream ends. A chunk stream error is
// yielded unchanged and ends the sequence. Stopping iteration early stops the
// chunk stream, which releases its own stream handle.
func FromChatStream(chunks iter.Seq2[*chat.Chunk, error]) iter.Seq2[*GenerateContentResponse, error] {
	return func(yield func(*GenerateContentResponse, error) bool) {
		for chunk, err := range chunks {
			if err != nil {
				yield(nil, err)
				return
			}

			if !yield(FromChatResponse(ToChatResponse(chunk)), nil) {
				return
			}
		}
	}
}

// ToChatResponse synthesizes a complete-response envelope from a streamed chunk.
//
// Identity fields are copied, each delta's role and content move to the positions a
// complete response uses for message role and content, and missing usage totals
// default to zero. Running the envelope through FromChatResponse keeps streamed
// fragments structurally identical to complete responses.
func ToChatResponse(chunk *chat.Chunk) *chat.Response {
	if chunk == nil {
		return &chat.Response{
			Object:  chat.ObjectChatCompletion,
			Choices: []chat.Choice{},
			Usage:   &chat.Usage{},
		}
	}

	usage := chat.Usage{}
	if chunk.Usage != nil {
		usage = *chunk.Usage
	}

	return &chat.Response{
		ID:      chunk.ID,
		Object:  chat.ObjectChatCompletion,
		Created: chunk.Created,
		Model:   chunk.Model,
		Choices: lo.Map(chunk.Choices, func(c chat.ChunkChoice, _ int) chat.Choice {
			return chat.Choice{
				Index: c.Index,
				Message: chat.ResponseMessage{
					Role:    c.Delta.Role,
					Content: c.Delta.Content,
				},
				FinishReason: lo.FromPtr(c.FinishReason),
			}
		}),
		Usage: &usage,
	}
}
