// Package token issues short-lived viewer credentials from the viewer
// platform's OAuth2 token endpoint. Tokens are cached in memory and reused
// until close to expiry.
package token

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/ternarybob/lector/internal/common"
	"github.com/ternarybob/lector/internal/interfaces"
)

// expirySlack is subtracted from the token lifetime so the browser never
// receives a credential about to lapse mid-load.
const expirySlack = 30 * time.Second

// Issuer implements interfaces.TokenIssuer against an OAuth2 client
// credentials endpoint.
type Issuer struct {
	config *common.ViewerConfig
	logger arbor.ILogger
	cc     *clientcredentials.Config

	mu     sync.Mutex
	cached *interfaces.ViewerCredentials
}

// Compile-time interface assertion
var _ interfaces.TokenIssuer = (*Issuer)(nil)

// NewIssuer creates a viewer token issuer from configuration.
func NewIssuer(cfg *common.ViewerConfig, logger arbor.ILogger) (*Issuer, error) {
	if cfg.TokenURL == "" || cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("viewer token issuance requires token_url, client_id, and client_secret")
	}

	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
		Scopes:       cfg.Scopes,
	}

	return &Issuer{
		config: cfg,
		logger: logger,
		cc:     cc,
	}, nil
}

// ViewerToken returns a valid viewer credential, reusing the cached token
// while it has useful lifetime left.
func (i *Issuer) ViewerToken(ctx context.Context) (*interfaces.ViewerCredentials, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.cached != nil && time.Until(i.cached.ExpiresAt) > expirySlack {
		return i.cached, nil
	}

	tok, err := i.cc.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("viewer token request failed: %w", err)
	}
	if tok.AccessToken == "" {
		return nil, fmt.Errorf("viewer token endpoint returned an empty token")
	}

	creds := &interfaces.ViewerCredentials{
		AccessToken: tok.AccessToken,
		ExpiresAt:   tok.Expiry,
		ClientID:    i.config.ClientID,
	}
	i.cached = creds

	i.logger.Debug().
		Str("expires_at", tok.Expiry.Format(time.RFC3339)).
		Msg("Issued viewer credentials")

	return creds, nil
}
