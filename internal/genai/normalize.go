package genai

import (
	"github.com/florianilch/genaibridge/internal/chat"
)

// defaultPrompt is sent when a request carries neither messages nor contents.
const defaultPrompt = "Hello"

// Normalize converts a legacy request into a chat request for defaultModel.
//
// Rules, in priority order:
//  1. Explicit messages are used verbatim.
//  2. Generic contents are mapped by positional parity: even indices become user
//     turns, odd indices assistant turns. Non-string items are rendered as JSON.
//  3. Otherwise a single user message "Hello" is sent.
//
// The request model overrides defaultModel when set. MaxTokens and Temperature pass
// through unchanged. Normalize never fails.
func Normalize(req *GenerateContentRequest, defaultModel string) chat.Request {
	chatReq := chat.Request{
		Model: defaultModel,
	}
	if req != nil {
		if req.Model != "" {
			chatReq.Model = req.Model
		}
		chatReq.MaxTokens = req.MaxTokens
		chatReq.Temperature = req.Temperature
	}

	switch req.Kind() {
	case PromptMessages:
		chatReq.Messages = req.Messages
	case PromptContents:
		chatReq.Messages = fromContents(req.Contents)
	default:
		chatReq.Messages = []chat.Message{{Role: chat.RoleUser, Content: defaultPrompt}}
	}

	return chatReq
}

// fromContents maps content items to alternating user/assistant turns.
//
// Role transformation: generic contents carry no reliable role information, so turn
// order is the only signal. Conversations are assumed to start with the user.
func fromContents(contents []ContentItem) []chat.Message {
	messages := make([]chat.Message, 0, len(contents))
	for i, item := range contents {
		role := chat.RoleUser
		if i%2 == 1 {
			role = chat.RoleAssistant
		}
		messages = append(messages, chat.Message{
			Role:    role,
			Content: item.String(),
		})
	}
	return messages
}
