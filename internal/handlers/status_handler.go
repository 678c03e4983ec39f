package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lector/internal/common"
	"github.com/ternarybob/lector/internal/interfaces"
	"github.com/ternarybob/lector/internal/services/documents"
)

// StatusHandler reports application status: usage counters and storage stats.
type StatusHandler struct {
	documents *documents.Service
	usage     interfaces.UsageRecorder
	logger    arbor.ILogger
}

// NewStatusHandler creates a new StatusHandler
func NewStatusHandler(docs *documents.Service, usage interfaces.UsageRecorder, logger arbor.ILogger) *StatusHandler {
	return &StatusHandler{
		documents: docs,
		usage:     usage,
		logger:    logger,
	}
}

// GetStatusHandler handles GET /api/status
func (h *StatusHandler) GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	count, err := h.documents.Count()
	if err != nil {
		h.logger.Warn().Err(err).Msg("Failed to count documents for status")
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"version":   common.GetVersion(),
		"documents": count,
		"usage":     h.usage.Snapshot(),
	})
}
