package interfaces

// Counter names recorded by the extraction pipeline.
const (
	MetricPagesProcessed   = "pages_processed"
	MetricRewriteCalls     = "rewrite_calls"
	MetricRewriteAccepted  = "rewrite_accepted"
	MetricRewriteFallbacks = "rewrite_fallbacks"
	MetricExtractRequests  = "extract_requests"
	MetricUploads          = "uploads"
)

// UsageRecorder is the injected observability collaborator. The pipeline
// never keeps module-level counters; everything goes through this interface
// so tests can run without side effects.
type UsageRecorder interface {
	// Incr adds one to the named counter.
	Incr(name string)

	// Add adds delta to the named counter.
	Add(name string, delta int64)

	// Snapshot returns the current counter values.
	Snapshot() map[string]int64
}
