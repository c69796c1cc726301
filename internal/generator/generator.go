package generator

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/florianilch/genaibridge/internal/chat"
	"github.com/florianilch/genaibridge/internal/chat/anthropicclaude"
	"github.com/florianilch/genaibridge/internal/chat/openaicompat"
	"github.com/florianilch/genaibridge/internal/genai"
	"github.com/florianilch/genaibridge/internal/tokensource"
)

// oauthBetaHeader enables OAuth bearer authentication on the Messages API.
const oauthBetaHeader = "oauth-2025-04-20"

type options struct {
	transportFunc func(proxy string) (http.RoundTripper, error)
	tokenEndpoint oauth2.Endpoint
	genOpts       []genai.Option
}

// Option configures New.
type Option func(*options)

// WithTransportFunc replaces the function building the base transport from the
// proxy setting.
func WithTransportFunc(fn func(proxy string) (http.RoundTripper, error)) Option {
	return func(o *options) {
		if fn != nil {
			o.transportFunc = fn
		}
	}
}

// WithTokenEndpoint overrides the OAuth endpoint used by claude-oauth.
func WithTokenEndpoint(endpoint oauth2.Endpoint) Option {
	return func(o *options) {
		o.tokenEndpoint = endpoint
	}
}

// WithTokenEstimator sets the estimator behind CountTokens.
func WithTokenEstimator(estimator genai.TokenEstimator) Option {
	return func(o *options) {
		o.genOpts = append(o.genOpts, genai.WithTokenEstimator(estimator))
	}
}

// New validates cfg and builds a generator for its AuthType. The result implements
// genai.ContentGenerator and genai.Embedder.
//
// An unsupported AuthType returns *UnsupportedAuthTypeError and a missing
// credential returns ErrMissingAPIKey or ErrMissingRefreshToken; in both cases no
// transport is created.
func New(cfg Config, session Session, opts ...Option) (*genai.ChatGenerator, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	o := &options{
		transportFunc: newBaseTransport,
		tokenEndpoint: tokensource.Endpoint,
	}
	for _, opt := range opts {
		opt(o)
	}

	base, err := o.transportFunc(cfg.Proxy)
	if err != nil {
		return nil, fmt.Errorf("create transport: %w", err)
	}

	sessionID := session.ID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	transport := &headerTransport{
		base: base,
		headers: http.Header{
			headerUserAgent: {userAgent(session.Version)},
			headerSessionID: {sessionID},
		},
	}

	adapter, err := newAdapter(cfg, transport, base, o)
	if err != nil {
		return nil, err
	}

	slog.Debug("generator created",
		"auth_type", string(cfg.AuthType),
		"model", cfg.model(),
		"base_url", cfg.baseURL(),
		"session_id", sessionID,
	)

	return genai.NewChatGenerator(adapter, cfg.model(), o.genOpts...)
}

// newAdapter creates the chat backend for cfg.AuthType. base carries only proxy
// settings and is used for token refresh; transport adds the session headers.
func newAdapter(cfg Config, transport, base http.RoundTripper, o *options) (chat.ChatCompletionAdapter, error) {
	switch cfg.AuthType {
	case AuthTypeOpenAIAPIKey:
		client, err := openaicompat.New(cfg.baseURL(), cfg.APIKey, transport)
		if err != nil {
			return nil, fmt.Errorf("create openai-compatible client: %w", err)
		}
		return client, nil

	case AuthTypeAnthropicAPIKey:
		client, err := anthropicclaude.New(transport,
			option.WithBaseURL(cfg.baseURL()),
			option.WithAPIKey(cfg.APIKey),
		)
		if err != nil {
			return nil, fmt.Errorf("create anthropic client: %w", err)
		}
		return client, nil

	case AuthTypeClaudeOAuth:
		ts, err := tokensource.NewTokenSource(cfg.RefreshToken, o.tokenEndpoint, tokensource.WithTransport(base))
		if err != nil {
			return nil, fmt.Errorf("create token source: %w", err)
		}
		client, err := anthropicclaude.New(
			&oauth2.Transport{Source: ts, Base: transport},
			option.WithBaseURL(cfg.baseURL()),
			// Bearer tokens replace the API key; drop one picked up from ANTHROPIC_API_KEY
			option.WithHeaderDel("X-Api-Key"),
			option.WithHeader("anthropic-beta", oauthBetaHeader),
		)
		if err != nil {
			return nil, fmt.Errorf("create anthropic client: %w", err)
		}
		return client, nil

	default:
		return nil, &UnsupportedAuthTypeError{AuthType: cfg.AuthType}
	}
}
