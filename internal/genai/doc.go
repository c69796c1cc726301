// Package genai exposes the legacy content-generation contract on top of a
// chat-completion backend.
//
// Callers written against the content-generation interface (GenerateContent,
// GenerateContentStream, CountTokens and the optional EmbedContent) keep working
// unchanged while requests are served by a chat.ChatCompletionAdapter:
//
//   - Normalize resolves the request shape (explicit messages, generic contents
//     or neither) into chat messages exactly once.
//
//   - FromChatResponse projects a complete chat response into a
//     GenerateContentResponse, keeping both the flattened Text shortcut and the
//     Choices array.
//
//   - FromChatStream turns every streamed chunk into a complete-response envelope
//     and runs it through FromChatResponse, so streamed fragments and complete
//     responses are structurally identical.
//
//   - EstimateTokens approximates token counts, since chat backends offer no
//     counting endpoint.
//
// Legacy-only concepts without a chat equivalent (function calls, executable code,
// embeddings) are degraded to empty values rather than reported as errors.
package genai
