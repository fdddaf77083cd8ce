// Package dedupe tracks seen shot event IDs so clients replaying an
// offline sync queue never double-record a shot.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

const defaultMaxSize = 50000

// Tracker records seen event IDs to ensure at-most-once recording.
type Tracker interface {
	// SeenAndRecord atomically checks whether id was seen and records it
	// if not. Returns true when id was already seen.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord removes an ID so the event can be retried. Used when an
	// event was recorded but could not be enqueued (backpressure).
	Unrecord(ctx context.Context, id string)

	Size() int64
}

// memoryTracker implements Tracker with a map plus a fixed ring of
// insertion slots. When the ring is full the oldest surviving entry is
// overwritten, so replays of recent sync batches stay deduplicated while
// memory stays bounded. A non-positive max size disables eviction.
type memoryTracker struct {
	mu      sync.Mutex
	seen    map[string]int // id -> owning ring slot; -1 in unbounded mode
	ring    []string
	next    int
	maxSize int
	size    atomic.Int64
}

// NewMemoryTracker creates an in-memory tracker.
func NewMemoryTracker(opts ...Option) Tracker {
	t := &memoryTracker{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(t)
	}
	t.seen = make(map[string]int)
	if t.maxSize > 0 {
		t.ring = make([]string, t.maxSize)
	}
	return t
}

func (t *memoryTracker) SeenAndRecord(ctx context.Context, id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.seen[id]; ok {
		return true
	}

	if t.maxSize > 0 {
		// Reclaim the slot we are about to take. A stale slot whose id
		// was unrecorded or re-added elsewhere no longer owns its map
		// entry and must not delete it.
		if old := t.ring[t.next]; old != "" {
			if owner, ok := t.seen[old]; ok && owner == t.next {
				delete(t.seen, old)
				t.size.Add(-1)
			}
		}
		t.ring[t.next] = id
		t.seen[id] = t.next
		t.next = (t.next + 1) % t.maxSize
	} else {
		t.seen[id] = -1
	}

	t.size.Add(1)
	return false
}

func (t *memoryTracker) Unrecord(ctx context.Context, id string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.seen[id]; ok {
		delete(t.seen, id)
		t.size.Add(-1)
	}
	// The ring slot keeps the stale id; eviction checks ownership before
	// touching the map.
}

// Size returns the current number of tracked IDs.
func (t *memoryTracker) Size() int64 {
	return t.size.Load()
}
