package token

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lector/internal/common"
)

func newTokenEndpoint(t *testing.T, calls *atomic.Int64) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		require.NoError(t, r.ParseForm())
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"viewer-abc","token_type":"Bearer","expires_in":3600}`))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestViewerToken(t *testing.T) {
	var calls atomic.Int64
	server := newTokenEndpoint(t, &calls)

	issuer, err := NewIssuer(&common.ViewerConfig{
		TokenURL:     server.URL + "/oauth/token",
		ClientID:     "client-1",
		ClientSecret: "secret",
		Scopes:       []string{"viewer.read"},
	}, arbor.NewLogger())
	require.NoError(t, err)

	creds, err := issuer.ViewerToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "viewer-abc", creds.AccessToken)
	assert.Equal(t, "client-1", creds.ClientID)
	assert.False(t, creds.ExpiresAt.IsZero())
}

func TestViewerTokenIsCached(t *testing.T) {
	var calls atomic.Int64
	server := newTokenEndpoint(t, &calls)

	issuer, err := NewIssuer(&common.ViewerConfig{
		TokenURL:     server.URL + "/oauth/token",
		ClientID:     "client-1",
		ClientSecret: "secret",
	}, arbor.NewLogger())
	require.NoError(t, err)

	first, err := issuer.ViewerToken(context.Background())
	require.NoError(t, err)
	second, err := issuer.ViewerToken(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.AccessToken, second.AccessToken)
	assert.EqualValues(t, 1, calls.Load())
}

func TestNewIssuerRequiresCredentials(t *testing.T) {
	_, err := NewIssuer(&common.ViewerConfig{TokenURL: "http://localhost/token"}, arbor.NewLogger())
	assert.Error(t, err)
}
