package tokensource

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
)

// Authorizer runs the one-time PKCE login for Claude subscriptions.
// Token exchange is sent as JSON with a non-standard 'state' field, so it does not
// go through oauth2.Config.Exchange.
type Authorizer struct {
	config *oauth2.Config
	client *http.Client
}

// NewAuthorizer creates an authorizer for endpoint. redirectURL must be registered
// for ClientID.
func NewAuthorizer(endpoint oauth2.Endpoint, redirectURL string) *Authorizer {
	return &Authorizer{
		config: &oauth2.Config{
			ClientID:    ClientID,
			RedirectURL: redirectURL,
			Scopes:      scopes,
			Endpoint:    endpoint,
		},
		client: &http.Client{Timeout: refreshTimeout},
	}
}

// AuthCodeURL returns the URL the user opens to authorize. state doubles as CSRF
// token and PKCE verifier; the caller passes the same value to Exchange.
func (a *Authorizer) AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string {
	opts = append(opts,
		oauth2.S256ChallengeOption(state),
		// code=true makes the callback page display the code instead of redirecting
		oauth2.SetAuthURLParam("code", "true"),
	)
	return a.config.AuthCodeURL(state, opts...)
}

// Exchange trades the pasted "code#state" value for tokens. verifier is the state
// passed to AuthCodeURL.
func (a *Authorizer) Exchange(ctx context.Context, codeWithState string, verifier string) (*oauth2.Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if verifier == "" {
		return nil, errors.New("verifier cannot be empty")
	}

	code, state, found := strings.Cut(strings.TrimSpace(codeWithState), "#")
	if !found {
		return nil, errors.New("invalid code format: missing '#' separator")
	}
	if state != verifier {
		return nil, errors.New("state mismatch")
	}

	return postTokenRequest(ctx, a.client, a.config.Endpoint.TokenURL, exchangeRequest{
		Code:         code,
		State:        state,
		GrantType:    "authorization_code",
		ClientID:     ClientID,
		RedirectURI:  a.config.RedirectURL,
		CodeVerifier: verifier,
	})
}

// exchangeRequest is the JSON authorization_code grant body, including Anthropic's
// State field.
type exchangeRequest struct {
	Code         string `json:"code"`
	State        string `json:"state"`
	GrantType    string `json:"grant_type"`
	ClientID     string `json:"client_id"`
	RedirectURI  string `json:"redirect_uri"`
	CodeVerifier string `json:"code_verifier"`
}
