// Package openaicompat sends chat requests to OpenAI-compatible /chat/completions
// endpoints.
//
// The client speaks plain JSON for complete responses and Server-Sent Events for
// streaming, where each data event carries one chat.completion.chunk and the
// literal "[DONE]" closes the stream. Authentication is a bearer API key; any
// additional headers (user agent, session identifiers, proxies) belong to the
// RoundTripper the client is built with.
package openaicompat
