package interfaces

import (
	"context"

	"github.com/ternarybob/lector/internal/models"
)

// DocumentEngine is the external document-processing collaborator. It owns
// all PDF parsing and OCR; lector only consumes the per-page line geometry
// it returns. A FetchLayout failure is fatal to the extraction request —
// there is no retry.
type DocumentEngine interface {
	// UploadDocument registers PDF bytes with the engine and returns the
	// engine's asset ID for later layout fetches.
	UploadDocument(ctx context.Context, filename string, content []byte) (string, error)

	// FetchLayout returns the ordered per-page text lines for a previously
	// uploaded document.
	FetchLayout(ctx context.Context, engineID string) ([]models.PageLayout, error)

	// DeleteDocument removes the asset from the engine. Best effort.
	DeleteDocument(ctx context.Context, engineID string) error
}
