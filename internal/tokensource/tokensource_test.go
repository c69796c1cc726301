package tokensource

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestNewTokenSource_RequiresRefreshToken(t *testing.T) {
	_, err := NewTokenSource("", Endpoint)
	require.ErrorIs(t, err, ErrEmptyRefreshToken)
}

func TestTokenSource_RefreshAndRotate(t *testing.T) {
	var calls atomic.Int32
	var seen []string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req refreshRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "refresh_token", req.GrantType)
		assert.Equal(t, ClientID, req.ClientID)
		seen = append(seen, req.RefreshToken)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "access-" + string(rune('0'+n)),
			"refresh_token": "rotated-" + string(rune('0'+n)),
			"token_type":    "Bearer",
			// Already expired so that the next Token call refreshes again
			"expires_in": 1,
		})
	}))
	t.Cleanup(srv.Close)

	ts, err := NewTokenSource("initial", oauth2.Endpoint{TokenURL: srv.URL}, WithTransport(http.DefaultTransport))
	require.NoError(t, err)

	token, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "access-1", token.AccessToken)
	assert.WithinDuration(t, time.Now().Add(time.Second), token.Expiry, 2*time.Second)

	// oauth2 treats tokens expiring within 10s as expired
	token, err = ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "access-2", token.AccessToken)

	assert.Equal(t, []string{"initial", "rotated-1"}, seen)
}

func TestTokenSource_ReusesValidToken(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"access_token":"a","token_type":"Bearer","expires_in":3600}`)
	}))
	t.Cleanup(srv.Close)

	ts, err := NewTokenSource("r", oauth2.Endpoint{TokenURL: srv.URL})
	require.NoError(t, err)

	for range 3 {
		token, err := ts.Token()
		require.NoError(t, err)
		assert.Equal(t, "a", token.AccessToken)
		assert.Equal(t, "r", token.RefreshToken)
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestTokenSource_RefreshFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"invalid_grant"}`)
	}))
	t.Cleanup(srv.Close)

	ts, err := NewTokenSource("revoked", oauth2.Endpoint{TokenURL: srv.URL})
	require.NoError(t, err)

	_, err = ts.Token()
	var retrieveErr *oauth2.RetrieveError
	require.ErrorAs(t, err, &retrieveErr)
	assert.Equal(t, http.StatusBadRequest, retrieveErr.Response.StatusCode)
	assert.Contains(t, string(retrieveErr.Body), "invalid_grant")
}

func TestAuthorizer_AuthCodeURL(t *testing.T) {
	auth := NewAuthorizer(Endpoint, RedirectURL)

	authURL := auth.AuthCodeURL("verifier-state")

	assert.Contains(t, authURL, Endpoint.AuthURL)
	assert.Contains(t, authURL, "client_id="+ClientID)
	assert.Contains(t, authURL, "code_challenge_method=S256")
	assert.Contains(t, authURL, "code=true")
	assert.Contains(t, authURL, "state=verifier-state")
}

func TestAuthorizer_Exchange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req exchangeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "the-code", req.Code)
		assert.Equal(t, "the-verifier", req.State)
		assert.Equal(t, "the-verifier", req.CodeVerifier)
		assert.Equal(t, "authorization_code", req.GrantType)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"access_token":"a","refresh_token":"r","token_type":"Bearer","expires_in":60}`)
	}))
	t.Cleanup(srv.Close)

	auth := NewAuthorizer(oauth2.Endpoint{AuthURL: srv.URL, TokenURL: srv.URL}, RedirectURL)

	token, err := auth.Exchange(t.Context(), "the-code#the-verifier", "the-verifier")
	require.NoError(t, err)
	assert.Equal(t, "r", token.RefreshToken)

	_, err = auth.Exchange(t.Context(), "no-separator", "the-verifier")
	require.Error(t, err)

	_, err = auth.Exchange(t.Context(), "the-code#other", "the-verifier")
	require.Error(t, err)
}
