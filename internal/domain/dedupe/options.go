package dedupe

// Option applies a configuration option to the memory tracker.
type Option func(*memoryTracker)

// WithMaxSize sets how many IDs the tracker keeps before overwriting the
// oldest. A non-positive value disables eviction entirely.
func WithMaxSize(maxSize int) Option {
	return func(t *memoryTracker) {
		t.maxSize = maxSize
	}
}
