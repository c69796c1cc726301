package anthropicclaude

import (
	"crypto/rand"
	"encoding/base64"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/florianilch/genaibridge/internal/chat"
)

// toChatResponse converts a complete Anthropic message into a single-choice chat
// response. Text blocks are concatenated; other block kinds carry no chat text.
func toChatResponse(msg *anthropic.Message) *chat.Response {
	var text strings.Builder
	for _, block := range msg.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			text.WriteString(variant.Text)
		}
	}
	content := text.String()

	id := msg.ID
	if id == "" {
		id = newResponseID()
	}

	return &chat.Response{
		ID:      id,
		Object:  chat.ObjectChatCompletion,
		Created: time.Now().Unix(),
		Model:   string(msg.Model),
		Choices: []chat.Choice{{
			Index: 0,
			Message: chat.ResponseMessage{
				Role:    chat.RoleAssistant,
				Content: &content,
			},
			FinishReason: toFinishReason(msg.StopReason),
		}},
		Usage: toUsage(msg.Usage.InputTokens, msg.Usage.OutputTokens, msg.Usage.CacheReadInputTokens),
	}
}

// toFinishReason maps Anthropic stop reasons to chat finish reasons.
//
// Refusals stay in the content and report content_filter. pause_turn has no chat
// equivalent and maps to stop.
func toFinishReason(stopReason anthropic.StopReason) string {
	switch stopReason {
	case anthropic.StopReasonEndTurn, anthropic.StopReasonStopSequence:
		return chat.FinishReasonStop
	case anthropic.StopReasonMaxTokens:
		return chat.FinishReasonLength
	case anthropic.StopReasonToolUse:
		return chat.FinishReasonToolCalls
	case anthropic.StopReasonRefusal:
		return chat.FinishReasonContentFilter
	default:
		return chat.FinishReasonStop
	}
}

// newResponseID generates a chat-style response ID (chatcmpl-<token>).
// Used as fallback when Anthropic doesn't provide an ID.
func newResponseID() string {
	b := make([]byte, 24) // 24 bytes yields 32 URL-safe base64 characters
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return "chatcmpl-" + base64.RawURLEncoding.EncodeToString(b)
}
