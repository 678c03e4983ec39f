package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lector/internal/interfaces"
	"github.com/ternarybob/lector/internal/models"
	"github.com/ternarybob/lector/internal/services/documents"
	"github.com/ternarybob/lector/internal/services/extract"
	"github.com/ternarybob/lector/internal/services/render"
)

// ExtractHandler serves extraction results and their download renditions.
type ExtractHandler struct {
	documents *documents.Service
	extract   *extract.Service
	pdf       *render.PDFService
	logger    arbor.ILogger
}

// NewExtractHandler creates a new ExtractHandler
func NewExtractHandler(docs *documents.Service, extractSvc *extract.Service, pdf *render.PDFService, logger arbor.ILogger) *ExtractHandler {
	return &ExtractHandler{
		documents: docs,
		extract:   extractSvc,
		pdf:       pdf,
		logger:    logger,
	}
}

// ExtractHandler handles GET /api/documents/{id}/extract.
// ?rewrite=false disables the rewrite collaborator for this request.
func (h *ExtractHandler) ExtractHandler(w http.ResponseWriter, r *http.Request, id string) {
	result, ok := h.runExtraction(w, r, id)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

// DownloadHandler handles GET /api/documents/{id}/extract/download?format=md|pdf
func (h *ExtractHandler) DownloadHandler(w http.ResponseWriter, r *http.Request, id string) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "md"
	}
	if format != "md" && format != "pdf" {
		WriteError(w, http.StatusBadRequest, "format must be 'md' or 'pdf'")
		return
	}

	result, ok := h.runExtraction(w, r, id)
	if !ok {
		return
	}

	markdown := render.Markdown(result)

	switch format {
	case "md":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", id+".md"))
		w.Write([]byte(markdown))
	case "pdf":
		pdfBytes, err := h.pdf.ConvertMarkdownToPDF(markdown, id)
		if err != nil {
			h.logger.Error().Err(err).Str("document_id", id).Msg("PDF rendition failed")
			WriteError(w, http.StatusInternalServerError, "failed to render PDF")
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", id+"-extract.pdf"))
		w.Write(pdfBytes)
	}
}

// runExtraction resolves the document and runs the pipeline, writing the
// error response itself when something fails.
func (h *ExtractHandler) runExtraction(w http.ResponseWriter, r *http.Request, id string) (*models.ExtractionResult, bool) {
	doc, err := h.documents.Get(id)
	if err != nil {
		if errors.Is(err, interfaces.ErrDocumentNotFound) {
			WriteError(w, http.StatusNotFound, "document not found")
			return nil, false
		}
		h.logger.Error().Err(err).Str("document_id", id).Msg("Failed to load document")
		WriteError(w, http.StatusInternalServerError, "failed to load document")
		return nil, false
	}

	withRewrite := r.URL.Query().Get("rewrite") != "false"

	result, err := h.extract.Extract(r.Context(), doc, withRewrite)
	if err != nil {
		h.logger.Error().Err(err).Str("document_id", id).Msg("Extraction failed")
		WriteError(w, http.StatusBadGateway, "extraction failed: engine layout unavailable")
		return nil, false
	}

	return result, true
}
