package metrics

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lector/internal/interfaces"
)

type memKV struct {
	mu    sync.Mutex
	items map[string]string
}

func newMemKV() *memKV {
	return &memKV{items: make(map[string]string)}
}

func (m *memKV) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.items[key]
	if !ok {
		return "", interfaces.ErrKeyNotFound
	}
	return value, nil
}

func (m *memKV) Set(_ context.Context, key, value, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

func (m *memKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

func (m *memKV) ListByPrefix(_ context.Context, prefix string) ([]interfaces.KeyValuePair, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var pairs []interfaces.KeyValuePair
	for key, value := range m.items {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			pairs = append(pairs, interfaces.KeyValuePair{Key: key, Value: value})
		}
	}
	return pairs, nil
}

func TestRecorderIncrAndSnapshot(t *testing.T) {
	r := NewRecorder(nil, arbor.NewLogger())

	r.Incr(interfaces.MetricUploads)
	r.Incr(interfaces.MetricUploads)
	r.Add(interfaces.MetricPagesProcessed, 12)

	snapshot := r.Snapshot()
	assert.EqualValues(t, 2, snapshot[interfaces.MetricUploads])
	assert.EqualValues(t, 12, snapshot[interfaces.MetricPagesProcessed])
}

func TestRecorderSnapshotIsACopy(t *testing.T) {
	r := NewRecorder(nil, arbor.NewLogger())
	r.Incr(interfaces.MetricUploads)

	snapshot := r.Snapshot()
	snapshot[interfaces.MetricUploads] = 99

	assert.EqualValues(t, 1, r.Snapshot()[interfaces.MetricUploads])
}

func TestRecorderConcurrentIncrementsPersistFinalValue(t *testing.T) {
	kv := newMemKV()
	r := NewRecorder(kv, arbor.NewLogger())

	const workers = 50
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			r.Incr(interfaces.MetricRewriteCalls)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, workers, r.Snapshot()[interfaces.MetricRewriteCalls])

	// The stored value must match the in-memory counter: increments persist
	// under the lock, so no stale write can land last.
	stored, err := kv.Get(context.Background(), kvPrefix+interfaces.MetricRewriteCalls)
	require.NoError(t, err)
	assert.Equal(t, "50", stored)
}

func TestRecorderPersistsAndReloads(t *testing.T) {
	kv := newMemKV()

	first := NewRecorder(kv, arbor.NewLogger())
	first.Add(interfaces.MetricExtractRequests, 7)

	second := NewRecorder(kv, arbor.NewLogger())
	snapshot := second.Snapshot()
	require.EqualValues(t, 7, snapshot[interfaces.MetricExtractRequests])

	second.Incr(interfaces.MetricExtractRequests)
	assert.EqualValues(t, 8, second.Snapshot()[interfaces.MetricExtractRequests])
}
