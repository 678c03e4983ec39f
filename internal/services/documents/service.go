// Package documents owns the upload lifecycle: PDF validation, raw-byte
// storage, registration with the processing engine, and record management.
package documents

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lector/internal/common"
	"github.com/ternarybob/lector/internal/interfaces"
	"github.com/ternarybob/lector/internal/models"
)

var pdfMagic = []byte("%PDF-")

// Service manages uploaded documents.
type Service struct {
	config  *common.Config
	logger  arbor.ILogger
	storage interfaces.StorageManager
	engine  interfaces.DocumentEngine
	usage   interfaces.UsageRecorder
	tempDir string
}

// NewService creates the document service.
func NewService(cfg *common.Config, storage interfaces.StorageManager, engine interfaces.DocumentEngine, usage interfaces.UsageRecorder, logger arbor.ILogger) *Service {
	tempDir := filepath.Join(os.TempDir(), "lector-pdf")
	os.MkdirAll(tempDir, 0755)

	return &Service{
		config:  cfg,
		logger:  logger,
		storage: storage,
		engine:  engine,
		usage:   usage,
		tempDir: tempDir,
	}
}

// MaxUploadBytes returns the configured upload size cap in bytes. Handlers
// use it to bound the request body before reading.
func (s *Service) MaxUploadBytes() int64 {
	return int64(s.config.Upload.MaxSizeMB) * 1024 * 1024
}

// ValidationError marks rejections the handler should report as 400 rather
// than 500.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// Upload validates the PDF, stores its bytes, registers it with the engine,
// and persists the document record.
func (s *Service) Upload(ctx context.Context, filename string, content []byte) (*models.Document, error) {
	if len(content) == 0 {
		return nil, &ValidationError{Reason: "uploaded file is empty"}
	}

	maxSize := int64(s.config.Upload.MaxSizeMB) * 1024 * 1024
	if maxSize > 0 && int64(len(content)) > maxSize {
		return nil, &ValidationError{Reason: fmt.Sprintf("file exceeds maximum size of %d MB", s.config.Upload.MaxSizeMB)}
	}

	if !bytes.HasPrefix(content, pdfMagic) {
		return nil, &ValidationError{Reason: "file is not a PDF"}
	}

	pageCount, encrypted, err := s.inspectPDF(content)
	if err != nil {
		return nil, &ValidationError{Reason: fmt.Sprintf("file is not a valid PDF: %v", err)}
	}
	if encrypted {
		return nil, &ValidationError{Reason: "encrypted PDFs are not supported"}
	}

	doc := &models.Document{
		ID:        common.NewDocumentID(),
		Filename:  filepath.Base(filename),
		Status:    models.DocumentStatusUploaded,
		PageCount: pageCount,
		Size:      int64(len(content)),
	}
	doc.ContentKey = "pdf:" + doc.ID

	encoded := base64.StdEncoding.EncodeToString(content)
	if err := s.storage.KeyValueStorage().Set(ctx, doc.ContentKey, encoded, "raw PDF content for "+doc.Filename); err != nil {
		return nil, fmt.Errorf("failed to store PDF content: %w", err)
	}

	engineID, err := s.engine.UploadDocument(ctx, doc.Filename, content)
	if err != nil {
		doc.Status = models.DocumentStatusFailed
		if saveErr := s.storage.DocumentStorage().SaveDocument(doc); saveErr != nil {
			s.logger.Error().Err(saveErr).Str("document_id", doc.ID).Msg("Failed to save failed document record")
		}
		return nil, fmt.Errorf("engine upload failed: %w", err)
	}

	doc.EngineID = engineID
	doc.Status = models.DocumentStatusReady
	if err := s.storage.DocumentStorage().SaveDocument(doc); err != nil {
		return nil, fmt.Errorf("failed to save document record: %w", err)
	}

	s.usage.Incr(interfaces.MetricUploads)
	s.logger.Info().
		Str("document_id", doc.ID).
		Str("filename", doc.Filename).
		Int("pages", doc.PageCount).
		Int64("size", doc.Size).
		Msg("Document uploaded")

	return doc, nil
}

// inspectPDF runs pdfcpu over the bytes via a temp file and reports page
// count and encryption.
func (s *Service) inspectPDF(content []byte) (int, bool, error) {
	tempFile := filepath.Join(s.tempDir, fmt.Sprintf("upload_%d_%d.pdf", os.Getpid(), time.Now().UnixNano()))
	if err := os.WriteFile(tempFile, content, 0644); err != nil {
		return 0, false, fmt.Errorf("failed to write temp PDF file: %w", err)
	}
	defer os.Remove(tempFile)

	pdfCtx, err := api.ReadContextFile(tempFile)
	if err != nil {
		return 0, false, err
	}

	return pdfCtx.PageCount, pdfCtx.Encrypt != nil, nil
}

// Get returns a document record by ID.
func (s *Service) Get(id string) (*models.Document, error) {
	return s.storage.DocumentStorage().GetDocument(id)
}

// List returns document records, newest first.
func (s *Service) List(limit int) ([]*models.Document, error) {
	return s.storage.DocumentStorage().ListDocuments(limit)
}

// Content returns the raw PDF bytes for a document.
func (s *Service) Content(ctx context.Context, doc *models.Document) ([]byte, error) {
	encoded, err := s.storage.KeyValueStorage().Get(ctx, doc.ContentKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load PDF content for %s: %w", doc.ID, err)
	}
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("stored PDF content for %s is corrupt: %w", doc.ID, err)
	}
	return decoded, nil
}

// Delete removes the record, stored bytes, and the engine asset. Engine
// deletion is best-effort; the engine expires assets on its own schedule.
func (s *Service) Delete(ctx context.Context, id string) error {
	doc, err := s.storage.DocumentStorage().GetDocument(id)
	if err != nil {
		return err
	}

	if doc.EngineID != "" {
		if err := s.engine.DeleteDocument(ctx, doc.EngineID); err != nil {
			s.logger.Warn().Err(err).Str("document_id", id).Msg("Failed to delete engine asset")
		}
	}

	if err := s.storage.KeyValueStorage().Delete(ctx, doc.ContentKey); err != nil {
		s.logger.Warn().Err(err).Str("document_id", id).Msg("Failed to delete stored PDF content")
	}

	if err := s.storage.DocumentStorage().DeleteDocument(id); err != nil {
		return fmt.Errorf("failed to delete document record: %w", err)
	}

	s.logger.Info().Str("document_id", id).Msg("Document deleted")
	return nil
}

// DeleteOlderThan removes documents created before cutoff. Used by retention
// housekeeping; returns the number of documents removed.
func (s *Service) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	docs, err := s.storage.DocumentStorage().ListOlderThan(cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to list expired documents: %w", err)
	}

	deleted := 0
	for _, doc := range docs {
		if err := s.Delete(ctx, doc.ID); err != nil {
			s.logger.Warn().Err(err).Str("document_id", doc.ID).Msg("Retention delete failed")
			continue
		}
		deleted++
	}
	return deleted, nil
}

// Count returns the number of stored documents.
func (s *Service) Count() (int, error) {
	return s.storage.DocumentStorage().Count()
}

// IsPDFFilename reports whether the filename carries a .pdf extension.
// Uploads without it are rejected before content inspection.
func IsPDFFilename(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".pdf")
}
