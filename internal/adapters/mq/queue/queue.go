// Package queue buffers raw shot events between the HTTP surface and the
// classification workers. The in-memory implementation is a bounded
// channel; enqueue never blocks, so tap handlers can answer immediately
// and surface backpressure to the client instead of stalling.
package queue

import (
	"context"
	"sync"

	"github.com/openhoops/shotchart/internal/domain/model"
	"github.com/openhoops/shotchart/pkg/metrics"
)

const defaultCapacity = 10000

// Event is the payload type flowing through the queue.
type Event = model.ShotEvent

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds an event. Returns false when the queue is full or
	// closed and the event was not accepted.
	Enqueue(ctx context.Context, e Event) bool

	// Dequeue returns a channel delivering events until the queue closes.
	Dequeue(ctx context.Context) <-chan Event

	// Len returns the current number of queued events.
	Len(ctx context.Context) int

	// Close shuts the queue down. Queued events still drain to consumers.
	Close() error

	// IsClosed reports whether Close has been called.
	IsClosed() bool
}

// MemoryQueue implements Queue with a buffered channel.
type MemoryQueue struct {
	events   chan Event
	capacity int
	mu       sync.RWMutex
	closed   bool
}

// NewMemoryQueue creates an in-memory queue.
func NewMemoryQueue(opts ...Option) *MemoryQueue {
	q := &MemoryQueue{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.events = make(chan Event, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueDepth(0)

	return q
}

// Enqueue adds an event to the queue without blocking.
func (q *MemoryQueue) Enqueue(ctx context.Context, e Event) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueReject("closed")
		return false
	}
	if ctx.Err() != nil {
		metrics.RecordQueueReject("context_cancelled")
		return false
	}

	select {
	case q.events <- e:
		metrics.RecordShotEnqueued()
		metrics.UpdateQueueDepth(len(q.events))
		return true
	default:
		metrics.RecordQueueReject("full")
		return false
	}
}

// Dequeue returns a channel that receives events as they become
// available. The channel closes when the queue closes or ctx ends.
func (q *MemoryQueue) Dequeue(ctx context.Context) <-chan Event {
	out := make(chan Event)
	go func() {
		defer close(out)
		for e := range q.events {
			select {
			case out <- e:
				metrics.RecordShotDequeued()
				metrics.UpdateQueueDepth(len(q.events))
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued events.
func (q *MemoryQueue) Len(ctx context.Context) int {
	n := len(q.events)
	metrics.UpdateQueueDepth(n)
	return n
}

// Close shuts down the queue. Safe to call more than once.
func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.events)
	q.closed = true
	return nil
}

// IsClosed reports whether the queue has been closed.
func (q *MemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
