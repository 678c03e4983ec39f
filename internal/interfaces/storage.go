package interfaces

import (
	"context"
	"errors"
	"time"

	"github.com/ternarybob/lector/internal/models"
)

// ErrKeyNotFound is returned when a key is not found in the key/value store
var ErrKeyNotFound = errors.New("key not found")

// ErrDocumentNotFound is returned when a document record does not exist
var ErrDocumentNotFound = errors.New("document not found")

// KeyValuePair represents a single key/value pair with metadata
type KeyValuePair struct {
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// KeyValueStorage defines operations for generic key/value storage. It holds
// raw PDF payloads (base64), cached viewer tokens, and usage counters.
type KeyValueStorage interface {
	// Get retrieves a value by key, returns ErrKeyNotFound if missing
	Get(ctx context.Context, key string) (string, error)

	// Set inserts or updates a key/value pair with optional description
	Set(ctx context.Context, key string, value string, description string) error

	// Delete removes a key/value pair; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error

	// ListByPrefix returns all pairs whose key starts with prefix
	ListByPrefix(ctx context.Context, prefix string) ([]KeyValuePair, error)
}

// DocumentStorage defines persistence for uploaded document records.
type DocumentStorage interface {
	SaveDocument(doc *models.Document) error
	GetDocument(id string) (*models.Document, error)
	ListDocuments(limit int) ([]*models.Document, error)
	DeleteDocument(id string) error

	// ListOlderThan returns documents created before cutoff, for retention
	// housekeeping.
	ListOlderThan(cutoff time.Time) ([]*models.Document, error)

	// Count returns the number of stored document records.
	Count() (int, error)
}

// StorageManager bundles the storage backends behind one handle.
type StorageManager interface {
	DocumentStorage() DocumentStorage
	KeyValueStorage() KeyValueStorage

	// LoadEnvFile imports KEY=value pairs from a .env file into the KV
	// store. Missing files are ignored.
	LoadEnvFile(ctx context.Context, filePath string) error

	Close() error
}
