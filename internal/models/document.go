package models

import "time"

// Document status values. A document moves uploaded -> ready once the
// engine has accepted it; failed records are kept for inspection.
const (
	DocumentStatusUploaded = "uploaded"
	DocumentStatusReady    = "ready"
	DocumentStatusFailed   = "failed"
)

// Document represents one uploaded PDF. The raw bytes live in KV storage
// under ContentKey; the record itself carries only metadata.
type Document struct {
	// Identity
	ID       string `json:"id"`       // doc_{uuid}
	Filename string `json:"filename"` // original upload filename

	// Engine tracking
	EngineID string `json:"engine_id,omitempty"` // asset ID assigned by the document engine
	Status   string `json:"status"`

	// PDF properties (from pdfcpu validation)
	PageCount int   `json:"page_count"`
	Size      int64 `json:"size"`

	// Storage
	ContentKey string `json:"content_key"` // KV key holding the base64 PDF bytes

	// Timestamps
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
