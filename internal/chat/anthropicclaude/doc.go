// Package anthropicclaude sends chat requests to Anthropic's Messages API, so the
// bridge can serve Claude models with the same chat contract as OpenAI-compatible
// backends.
//
// The adapter handles:
//
//   - Message transformation: System messages are hoisted to Anthropic's System field
//     while preserving conversation order. Consecutive messages of the same role are
//     merged into one message with several text blocks.
//
//   - Limits: Anthropic requires max_tokens; requests without one use DefaultMaxTokens.
//
//   - Streaming: Translates Anthropic's SSE events (message_start, content_block_delta,
//     message_delta) into chat chunks, carrying the message ID and input token count
//     from the start event into every later chunk.
//
//   - Errors: Anthropic error bodies, both HTTP and in-stream, become *chat.APIError.
//
// Authentication belongs to the caller: either an API key request option or an
// http.RoundTripper that injects OAuth bearer tokens.
package anthropicclaude
