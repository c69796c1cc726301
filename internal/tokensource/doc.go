// Package tokensource obtains and refreshes OAuth2 tokens for Claude subscriptions,
// used by the claude-oauth generator mode.
//
// Anthropic's OAuth2 endpoints differ from the standard in a few ways:
//   - Token exchange and refresh use JSON bodies instead of form encoding
//   - Token exchange requires a "state" field in the request body
//   - Authorization codes are shown to the user as "code#state"
//
// # Login
//
// Authorizer runs the PKCE flow once to obtain a refresh token:
//
//	auth := tokensource.NewAuthorizer(tokensource.Endpoint, tokensource.RedirectURL)
//	verifier := oauth2.GenerateVerifier()
//	authURL := auth.AuthCodeURL(verifier)
//	// the user opens authURL and pastes back "code#state"
//	token, err := auth.Exchange(ctx, codeWithState, verifier)
//
// # Refresh
//
// NewTokenSource turns the stored refresh token into access tokens. The result
// plugs into oauth2.Transport:
//
//	ts, err := tokensource.NewTokenSource(refreshToken, tokensource.Endpoint,
//		tokensource.WithTransport(base))
//	client := &http.Client{Transport: &oauth2.Transport{Source: ts, Base: base}}
package tokensource
