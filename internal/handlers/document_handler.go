package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lector/internal/interfaces"
	"github.com/ternarybob/lector/internal/services/documents"
)

// DocumentHandler handles document upload and record management.
type DocumentHandler struct {
	documents *documents.Service
	logger    arbor.ILogger
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(docs *documents.Service, logger arbor.ILogger) *DocumentHandler {
	return &DocumentHandler{
		documents: docs,
		logger:    logger,
	}
}

// UploadHandler handles POST /api/documents (multipart, "file" field)
func (h *DocumentHandler) UploadHandler(w http.ResponseWriter, r *http.Request) {
	// Bound the body before any read so oversized uploads are cut off at the
	// transport instead of buffered in full. The slack covers multipart
	// framing around the capped file payload.
	r.Body = http.MaxBytesReader(w, r.Body, h.documents.MaxUploadBytes()+64*1024)

	file, header, err := r.FormFile("file")
	if err != nil {
		if isBodyTooLarge(err) {
			WriteError(w, http.StatusRequestEntityTooLarge, "uploaded file exceeds the maximum size")
			return
		}
		WriteError(w, http.StatusBadRequest, "multipart form must include a 'file' field")
		return
	}
	defer file.Close()

	if !documents.IsPDFFilename(header.Filename) {
		WriteError(w, http.StatusBadRequest, "only .pdf uploads are accepted")
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		if isBodyTooLarge(err) {
			WriteError(w, http.StatusRequestEntityTooLarge, "uploaded file exceeds the maximum size")
			return
		}
		WriteError(w, http.StatusBadRequest, "failed to read uploaded file")
		return
	}

	doc, err := h.documents.Upload(r.Context(), header.Filename, content)
	if err != nil {
		var validationErr *documents.ValidationError
		if errors.As(err, &validationErr) {
			WriteError(w, http.StatusBadRequest, validationErr.Reason)
			return
		}
		h.logger.Error().Err(err).Str("filename", header.Filename).Msg("Upload failed")
		WriteError(w, http.StatusInternalServerError, "upload failed")
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"id":        doc.ID,
		"filename":  doc.Filename,
		"pageCount": doc.PageCount,
		"size":      doc.Size,
	})
}

// ListHandler handles GET /api/documents
func (h *DocumentHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	limit := GetLimitParam(r, 100)
	docs, err := h.documents.List(limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list documents")
		WriteError(w, http.StatusInternalServerError, "failed to list documents")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"documents": docs,
		"count":     len(docs),
	})
}

// GetHandler handles GET /api/documents/{id}
func (h *DocumentHandler) GetHandler(w http.ResponseWriter, r *http.Request, id string) {
	doc, err := h.documents.Get(id)
	if err != nil {
		if errors.Is(err, interfaces.ErrDocumentNotFound) {
			WriteError(w, http.StatusNotFound, "document not found")
			return
		}
		h.logger.Error().Err(err).Str("document_id", id).Msg("Failed to load document")
		WriteError(w, http.StatusInternalServerError, "failed to load document")
		return
	}

	WriteJSON(w, http.StatusOK, doc)
}

// DeleteHandler handles DELETE /api/documents/{id}
func (h *DocumentHandler) DeleteHandler(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.documents.Delete(r.Context(), id); err != nil {
		if errors.Is(err, interfaces.ErrDocumentNotFound) {
			WriteError(w, http.StatusNotFound, "document not found")
			return
		}
		h.logger.Error().Err(err).Str("document_id", id).Msg("Failed to delete document")
		WriteError(w, http.StatusInternalServerError, "failed to delete document")
		return
	}

	WriteSuccess(w, fmt.Sprintf("document %s deleted", id))
}

// FileHandler handles GET /api/documents/{id}/file, serving the raw PDF so
// the viewer can load it.
func (h *DocumentHandler) FileHandler(w http.ResponseWriter, r *http.Request, id string) {
	doc, err := h.documents.Get(id)
	if err != nil {
		if errors.Is(err, interfaces.ErrDocumentNotFound) {
			WriteError(w, http.StatusNotFound, "document not found")
			return
		}
		h.logger.Error().Err(err).Str("document_id", id).Msg("Failed to load document")
		WriteError(w, http.StatusInternalServerError, "failed to load document")
		return
	}

	content, err := h.documents.Content(r.Context(), doc)
	if err != nil {
		h.logger.Error().Err(err).Str("document_id", id).Msg("Failed to load document content")
		WriteError(w, http.StatusInternalServerError, "failed to load document content")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", sanitizeFilename(doc.Filename)))
	w.Write(content)
}

func isBodyTooLarge(err error) bool {
	var maxBytesErr *http.MaxBytesError
	return errors.As(err, &maxBytesErr)
}

func sanitizeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		if r == '"' || r == '\n' || r == '\r' {
			return '_'
		}
		return r
	}, name)
}
