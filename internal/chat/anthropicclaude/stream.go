package anthropicclaude

import (
	"time"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/florianilch/genaibridge/internal/chat"
)

// streamState carries message metadata across stream events. Anthropic sends the
// message ID, model and input token count only in message_start, while chat chunks
// repeat them on every chunk.
type streamState struct {
	id              string
	model           string
	created         int64
	inputTokens     int64
	cacheReadTokens int64
}

func newStreamState(model string) *streamState {
	return &streamState{
		id:      newResponseID(),
		model:   model,
		created: time.Now().Unix(),
	}
}

// toChunk translates one Anthropic stream event. Events without a chat equivalent
// (content_block_start/stop, message_stop, ping, non-text deltas) return nil.
func (s *streamState) toChunk(event anthropic.MessageStreamEventUnion) *chat.Chunk {
	switch variant := event.AsAny().(type) {
	case anthropic.MessageStartEvent:
		if variant.Message.ID != "" {
			s.id = variant.Message.ID
		}
		if variant.Message.Model != "" {
			s.model = string(variant.Message.Model)
		}
		s.inputTokens = variant.Message.Usage.InputTokens
		s.cacheReadTokens = variant.Message.Usage.CacheReadInputTokens
		return s.chunk(chat.ChunkChoice{Delta: chat.Delta{Role: chat.RoleAssistant}}, nil)

	case anthropic.ContentBlockDeltaEvent:
		textDelta, ok := variant.Delta.AsAny().(anthropic.TextDelta)
		if !ok {
			return nil
		}
		text := textDelta.Text
		return s.chunk(chat.ChunkChoice{Delta: chat.Delta{Content: &text}}, nil)

	case anthropic.MessageDeltaEvent:
		if variant.Delta.StopReason == "" {
			return nil
		}
		reason := toFinishReason(variant.Delta.StopReason)
		return s.chunk(
			chat.ChunkChoice{FinishReason: &reason},
			toUsage(s.inputTokens, variant.Usage.OutputTokens, s.cacheReadTokens),
		)

	default:
		return nil
	}
}

func (s *streamState) chunk(choice chat.ChunkChoice, usage *chat.Usage) *chat.Chunk {
	return &chat.Chunk{
		ID:      s.id,
		Object:  chat.ObjectChatCompletionChunk,
		Created: s.created,
		Model:   s.model,
		Choices: []chat.ChunkChoice{choice},
		Usage:   usage,
	}
}
