package generator

import (
	"errors"
	"fmt"
)

// AuthType selects the backend and the credential used to reach it.
type AuthType string

const (
	// AuthTypeOpenAIAPIKey talks to an OpenAI-compatible /chat/completions API
	// with an API key. This is the primary mode.
	AuthTypeOpenAIAPIKey AuthType = "openai-api-key"
	// AuthTypeAnthropicAPIKey talks to Anthropic's Messages API with an API key.
	AuthTypeAnthropicAPIKey AuthType = "anthropic-api-key"
	// AuthTypeClaudeOAuth talks to Anthropic's Messages API with OAuth tokens
	// refreshed from a stored refresh token.
	AuthTypeClaudeOAuth AuthType = "claude-oauth"
)

// AuthTypes lists every supported AuthType.
var AuthTypes = []AuthType{AuthTypeOpenAIAPIKey, AuthTypeAnthropicAPIKey, AuthTypeClaudeOAuth}

// Default base URLs, used unless Config.BaseURL overrides them.
const (
	DefaultOpenAIBaseURL    = "https://api.openai.com/v1"
	DefaultAnthropicBaseURL = "https://api.anthropic.com"
)

// Default models, used unless Config.Model overrides them.
const (
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultAnthropicModel = "claude-sonnet-4-5"
)

var (
	// ErrMissingAPIKey is returned when an API-key mode has no key.
	ErrMissingAPIKey = errors.New("api key is required for this auth type")
	// ErrMissingRefreshToken is returned when claude-oauth has no refresh token.
	ErrMissingRefreshToken = errors.New("refresh token is required for claude-oauth; run 'genaibridge auth login'")
)

// UnsupportedAuthTypeError reports an AuthType outside AuthTypes.
type UnsupportedAuthTypeError struct {
	AuthType AuthType
}

// Error implements the error interface.
func (e *UnsupportedAuthTypeError) Error() string {
	return fmt.Sprintf("unsupported auth type %q (supported: %s, %s, %s)",
		e.AuthType, AuthTypeOpenAIAPIKey, AuthTypeAnthropicAPIKey, AuthTypeClaudeOAuth)
}

// Config selects and configures a generator. It is not modified after New.
type Config struct {
	AuthType AuthType
	// Model is the default model for requests that name none.
	Model string
	// APIKey is required by the API-key modes.
	APIKey string
	// RefreshToken is required by claude-oauth.
	RefreshToken string
	// BaseURL overrides the mode's default API root.
	BaseURL string
	// Proxy is an optional proxy URL. When empty, HTTP(S)_PROXY/NO_PROXY apply.
	Proxy string
}

// Session identifies the running process to the backend.
type Session struct {
	// ID is sent as X-Session-Id. A random ID is used when empty.
	ID string
	// Version is the application version reported in User-Agent.
	Version string
}

// validate checks the mode and its credential without side effects.
func (c Config) validate() error {
	switch c.AuthType {
	case AuthTypeOpenAIAPIKey, AuthTypeAnthropicAPIKey:
		if c.APIKey == "" {
			return fmt.Errorf("%s: %w", c.AuthType, ErrMissingAPIKey)
		}
	case AuthTypeClaudeOAuth:
		if c.RefreshToken == "" {
			return ErrMissingRefreshToken
		}
	default:
		return &UnsupportedAuthTypeError{AuthType: c.AuthType}
	}
	return nil
}

func (c Config) baseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	if c.AuthType == AuthTypeOpenAIAPIKey {
		return DefaultOpenAIBaseURL
	}
	return DefaultAnthropicBaseURL
}

func (c Config) model() string {
	if c.Model != "" {
		return c.Model
	}
	if c.AuthType == AuthTypeOpenAIAPIKey {
		return DefaultOpenAIModel
	}
	return DefaultAnthropicModel
}
