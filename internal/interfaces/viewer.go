package interfaces

import (
	"context"
	"time"
)

// ViewerCredentials are handed to the browser so the third-party document
// viewer can load a document. Token signing is owned by the viewer platform;
// lector treats issuance as an opaque credential call.
type ViewerCredentials struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
	ClientID    string    `json:"clientId"`
}

// TokenIssuer obtains viewer access tokens from the external credential
// service. Implementations cache and refresh; callers just ask.
type TokenIssuer interface {
	ViewerToken(ctx context.Context) (*ViewerCredentials, error)
}
