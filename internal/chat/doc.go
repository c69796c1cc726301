// Package chat defines the chat-completion contract spoken by the target backends.
//
// The types are the minimal role/content shape shared by OpenAI-compatible
// /chat/completions endpoints and by the Anthropic transport, which presents the
// same contract. Transports implement ChatCompletionAdapter; everything above
// them only sees these types.
package chat
