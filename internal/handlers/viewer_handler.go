package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lector/internal/interfaces"
)

// ViewerHandler issues viewer credentials to the browser.
type ViewerHandler struct {
	issuer interfaces.TokenIssuer
	logger arbor.ILogger
}

// NewViewerHandler creates a new ViewerHandler
func NewViewerHandler(issuer interfaces.TokenIssuer, logger arbor.ILogger) *ViewerHandler {
	return &ViewerHandler{
		issuer: issuer,
		logger: logger,
	}
}

// CredentialsHandler handles GET /api/viewer/credentials
func (h *ViewerHandler) CredentialsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	if h.issuer == nil {
		WriteError(w, http.StatusServiceUnavailable, "viewer credentials are not configured")
		return
	}

	creds, err := h.issuer.ViewerToken(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Viewer credential issuance failed")
		WriteError(w, http.StatusBadGateway, "failed to obtain viewer credentials")
		return
	}

	WriteJSON(w, http.StatusOK, creds)
}
