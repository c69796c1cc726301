// Package generator builds a genai.ContentGenerator from configuration.
//
// New dispatches on the configured AuthType, checks the credential that mode
// needs, assembles the HTTP transport chain (proxy, identifying headers and, for
// claude-oauth, bearer tokens) and wraps the matching chat backend in a
// genai.ChatGenerator. Configuration problems are reported before any transport
// is created; they are never retried.
package generator
