package badger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/lector/internal/interfaces"
	"github.com/ternarybob/lector/internal/models"
)

func openTestDB(t *testing.T) *BadgerDB {
	t.Helper()

	tmpDir := t.TempDir()

	options := badgerhold.DefaultOptions
	options.Dir = tmpDir
	options.ValueDir = tmpDir
	options.Logger = nil

	store, err := badgerhold.Open(options)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return &BadgerDB{store: store, logger: arbor.NewLogger()}
}

func TestDocumentStorageRoundTrip(t *testing.T) {
	db := openTestDB(t)
	storage := NewDocumentStorage(db, arbor.NewLogger())

	doc := &models.Document{
		ID:        "doc_test-1",
		Filename:  "report.pdf",
		Status:    models.DocumentStatusUploaded,
		PageCount: 3,
		Size:      1024,
	}
	require.NoError(t, storage.SaveDocument(doc))
	assert.False(t, doc.CreatedAt.IsZero())

	loaded, err := storage.GetDocument("doc_test-1")
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", loaded.Filename)
	assert.Equal(t, 3, loaded.PageCount)

	count, err := storage.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, storage.DeleteDocument("doc_test-1"))
	_, err = storage.GetDocument("doc_test-1")
	assert.ErrorIs(t, err, interfaces.ErrDocumentNotFound)

	// Deleting again is not an error
	assert.NoError(t, storage.DeleteDocument("doc_test-1"))
}

func TestDocumentStorageRequiresID(t *testing.T) {
	db := openTestDB(t)
	storage := NewDocumentStorage(db, arbor.NewLogger())

	err := storage.SaveDocument(&models.Document{Filename: "no-id.pdf"})
	assert.Error(t, err)
}

func TestDocumentStorageListOlderThan(t *testing.T) {
	db := openTestDB(t)
	storage := NewDocumentStorage(db, arbor.NewLogger())

	old := &models.Document{ID: "doc_old", Filename: "old.pdf", CreatedAt: time.Now().Add(-48 * time.Hour)}
	fresh := &models.Document{ID: "doc_fresh", Filename: "fresh.pdf", CreatedAt: time.Now()}
	require.NoError(t, storage.SaveDocument(old))
	require.NoError(t, storage.SaveDocument(fresh))

	stale, err := storage.ListOlderThan(time.Now().Add(-24 * time.Hour))
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, "doc_old", stale[0].ID)
}

func TestKVStorageRoundTrip(t *testing.T) {
	db := openTestDB(t)
	storage := NewKVStorage(db, arbor.NewLogger())
	ctx := context.Background()

	require.NoError(t, storage.Set(ctx, "Viewer_Token", "abc123", "cached viewer token"))

	// Keys are case-insensitive
	value, err := storage.Get(ctx, "viewer_token")
	require.NoError(t, err)
	assert.Equal(t, "abc123", value)

	_, err = storage.Get(ctx, "missing")
	assert.ErrorIs(t, err, interfaces.ErrKeyNotFound)

	require.NoError(t, storage.Delete(ctx, "viewer_token"))
	_, err = storage.Get(ctx, "viewer_token")
	assert.ErrorIs(t, err, interfaces.ErrKeyNotFound)

	// Deleting a missing key is fine
	assert.NoError(t, storage.Delete(ctx, "viewer_token"))
}

func TestKVStorageListByPrefix(t *testing.T) {
	db := openTestDB(t)
	storage := NewKVStorage(db, arbor.NewLogger())
	ctx := context.Background()

	require.NoError(t, storage.Set(ctx, "pdf:doc_1", "payload-1", ""))
	require.NoError(t, storage.Set(ctx, "pdf:doc_2", "payload-2", ""))
	require.NoError(t, storage.Set(ctx, "usage:uploads", "7", ""))

	pairs, err := storage.ListByPrefix(ctx, "pdf:")
	require.NoError(t, err)
	assert.Len(t, pairs, 2)
}
