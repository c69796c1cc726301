package anthropicclaude

import (
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/florianilch/genaibridge/internal/chat"
)

// DefaultMaxTokens is sent when a request has no token limit; Anthropic requires one.
const DefaultMaxTokens = 4096

// errNoMessages is returned when a request has nothing besides system messages.
var errNoMessages = errors.New("anthropic requires at least one user or assistant message")

// fromChatRequest converts a chat request into Anthropic Messages params.
//
// System messages are hoisted into params.System in order. Anthropic rejects empty
// text blocks, so empty contents are dropped; a message left without blocks is
// dropped as well. Consecutive messages with the same role are merged.
func fromChatRequest(req chat.Request) (anthropic.MessageNewParams, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.Model),
		MaxTokens: DefaultMaxTokens,
	}
	if req.MaxTokens != nil {
		params.MaxTokens = int64(*req.MaxTokens)
	}
	if req.Temperature != nil {
		params.Temperature = anthropic.Float(*req.Temperature)
	}

	for i, msg := range req.Messages {
		if msg.Role == chat.RoleSystem {
			if msg.Content != "" {
				params.System = append(params.System, anthropic.TextBlockParam{Text: msg.Content})
			}
			continue
		}

		role, err := toMessageRole(msg.Role)
		if err != nil {
			return anthropic.MessageNewParams{}, fmt.Errorf("message %d: %w", i, err)
		}
		if msg.Content == "" {
			continue
		}

		block := anthropic.NewTextBlock(msg.Content)
		if n := len(params.Messages); n > 0 && params.Messages[n-1].Role == role {
			params.Messages[n-1].Content = append(params.Messages[n-1].Content, block)
			continue
		}
		params.Messages = append(params.Messages, anthropic.MessageParam{
			Role:    role,
			Content: []anthropic.ContentBlockParamUnion{block},
		})
	}

	if len(params.Messages) == 0 {
		return anthropic.MessageNewParams{}, errNoMessages
	}

	return params, nil
}

// toMessageRole maps conversation roles to Anthropic roles.
func toMessageRole(role chat.Role) (anthropic.MessageParamRole, error) {
	switch role {
	case chat.RoleUser:
		return anthropic.MessageParamRoleUser, nil
	case chat.RoleAssistant:
		return anthropic.MessageParamRoleAssistant, nil
	default:
		return "", fmt.Errorf("unsupported role %q", role)
	}
}
