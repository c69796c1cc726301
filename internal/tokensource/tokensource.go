package tokensource

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// refreshTimeout bounds a single token call; oauth2.TokenSource has no context.
const refreshTimeout = 30 * time.Second

// ErrEmptyRefreshToken is returned when a token source is created without a refresh token.
var ErrEmptyRefreshToken = errors.New("refresh token cannot be empty")

// Option configures a refreshing token source.
type Option func(*refreshTokenSource)

// WithTransport sets the base transport used for refresh requests.
func WithTransport(transport http.RoundTripper) Option {
	return func(s *refreshTokenSource) {
		if transport != nil {
			s.client = &http.Client{Transport: transport, Timeout: refreshTimeout}
		}
	}
}

// NewTokenSource returns an oauth2.TokenSource that exchanges refreshToken for
// access tokens and caches them until shortly before expiry.
//
// Anthropic may rotate the refresh token on every refresh; the rotated token is
// kept in memory for subsequent refreshes.
func NewTokenSource(refreshToken string, endpoint oauth2.Endpoint, opts ...Option) (oauth2.TokenSource, error) {
	if refreshToken == "" {
		return nil, ErrEmptyRefreshToken
	}

	s := &refreshTokenSource{
		refreshToken: refreshToken,
		tokenURL:     endpoint.TokenURL,
		client:       &http.Client{Timeout: refreshTimeout},
	}
	for _, opt := range opts {
		opt(s)
	}

	return oauth2.ReuseTokenSource(nil, s), nil
}

// refreshTokenSource performs JSON-encoded refresh_token grants.
type refreshTokenSource struct {
	tokenURL string
	client   *http.Client

	mu           sync.Mutex
	refreshToken string
}

// Token implements oauth2.TokenSource.
func (s *refreshTokenSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	token, err := postTokenRequest(ctx, s.client, s.tokenURL, refreshRequest{
		GrantType:    "refresh_token",
		RefreshToken: s.refreshToken,
		ClientID:     ClientID,
	})
	if err != nil {
		return nil, err
	}

	if token.RefreshToken != "" {
		s.refreshToken = token.RefreshToken
	} else {
		token.RefreshToken = s.refreshToken
	}

	return token, nil
}

// refreshRequest represents the JSON refresh_token grant body.
type refreshRequest struct {
	GrantType    string `json:"grant_type"`
	RefreshToken string `json:"refresh_token"`
	ClientID     string `json:"client_id"`
}
