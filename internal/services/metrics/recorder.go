// Package metrics implements the usage counters exposed on the status
// endpoint. Counters live in memory and are flushed to the KV store so they
// survive restarts; flushes are best-effort.
package metrics

import (
	"context"
	"strconv"
	"sync"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lector/internal/interfaces"
)

const kvPrefix = "metric:"

// Recorder is a thread-safe counter set backed by the KV store.
type Recorder struct {
	logger arbor.ILogger
	kv     interfaces.KeyValueStorage

	mu       sync.Mutex
	counters map[string]int64
}

// Compile-time interface assertion
var _ interfaces.UsageRecorder = (*Recorder)(nil)

// NewRecorder creates a usage recorder, loading persisted counter values from
// the KV store. A nil KV store gives a purely in-memory recorder for tests.
func NewRecorder(kv interfaces.KeyValueStorage, logger arbor.ILogger) *Recorder {
	r := &Recorder{
		logger:   logger,
		kv:       kv,
		counters: make(map[string]int64),
	}
	r.load()
	return r
}

func (r *Recorder) load() {
	if r.kv == nil {
		return
	}
	pairs, err := r.kv.ListByPrefix(context.Background(), kvPrefix)
	if err != nil {
		r.logger.Warn().Err(err).Msg("Failed to load persisted usage counters")
		return
	}
	for _, pair := range pairs {
		value, err := strconv.ParseInt(pair.Value, 10, 64)
		if err != nil {
			continue
		}
		r.counters[pair.Key[len(kvPrefix):]] = value
	}
}

// Incr adds one to the named counter.
func (r *Recorder) Incr(name string) {
	r.Add(name, 1)
}

// Add adds delta to the named counter and persists the new value. The flush
// happens under the lock so concurrent increments cannot persist out of
// order and leave a stale value in the store.
func (r *Recorder) Add(name string, delta int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.counters[name] += delta
	if r.kv == nil {
		return
	}
	value := r.counters[name]
	if err := r.kv.Set(context.Background(), kvPrefix+name, strconv.FormatInt(value, 10), "usage counter"); err != nil {
		r.logger.Warn().Err(err).Str("counter", name).Msg("Failed to persist usage counter")
	}
}

// Snapshot returns a copy of the current counter values.
func (r *Recorder) Snapshot() map[string]int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := make(map[string]int64, len(r.counters))
	for name, value := range r.counters {
		snapshot[name] = value
	}
	return snapshot
}
