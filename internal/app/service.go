// Package app wires the recorder together: store, dedupe tracker, event
// queue, classification workers, and the live feed. It implements the
// dependencies required by the HTTP API.
package app

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/openhoops/shotchart/internal/adapters/live"
	eventqueue "github.com/openhoops/shotchart/internal/adapters/mq/queue"
	workerpool "github.com/openhoops/shotchart/internal/adapters/mq/worker"
	"github.com/openhoops/shotchart/internal/adapters/repository"
	"github.com/openhoops/shotchart/internal/domain/court"
	"github.com/openhoops/shotchart/internal/domain/dedupe"
	"github.com/openhoops/shotchart/internal/domain/model"
	"github.com/openhoops/shotchart/pkg/logger"
	"github.com/openhoops/shotchart/pkg/metrics"
)

// Default wiring configuration.
const (
	defaultQueueSize      = 10_000
	defaultDedupeSize     = 50_000
	defaultLiveSendBuffer = 16
)

// Service owns the ingest pipeline and exposes the handler dependencies.
type Service struct {
	mu sync.RWMutex

	// Core components
	store      repository.Store
	tracker    dedupe.Tracker
	eventQueue eventqueue.Queue
	workerPool *workerpool.Pool
	hub        *live.Hub

	// Configuration
	workerCount    int
	queueSize      int
	dedupeSize     int
	liveSendBuffer int
	defaultLevel   court.Level

	// State
	started bool
	stopCh  chan struct{}

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the persistence backend. Defaults to the in-memory
// store when unset.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithLiveHub sets the live-feed hub. Defaults to a fresh hub when
// unset.
func WithLiveHub(hub *live.Hub) Option {
	return func(s *Service) {
		if hub != nil {
			s.hub = hub
		}
	}
}

// WithWorkerCount sets the number of classification workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the event queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLiveSendBuffer sets the per-subscriber send buffer on the live
// feed hub created at start.
func WithLiveSendBuffer(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.liveSendBuffer = n
		}
	}
}

// WithDefaultLevel sets the court level applied when a team does not
// pick one.
func WithDefaultLevel(level court.Level) Option {
	return func(s *Service) {
		if level.Valid() {
			s.defaultLevel = level
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:    runtime.NumCPU() * 2,
		queueSize:      defaultQueueSize,
		dedupeSize:     defaultDedupeSize,
		liveSendBuffer: defaultLiveSendBuffer,
		defaultLevel:   court.HighSchool,
		stopCh:         make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the pipeline components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("app")
	}

	s.logger.Info(ctx, "starting shot recorder service...")

	if s.store == nil {
		s.store = repository.NewMemStore()
		s.logger.Info(ctx, "using in-memory store")
	}
	if s.hub == nil {
		s.hub = live.NewHub(
			live.WithSendBuffer(s.liveSendBuffer),
			live.WithLogger(s.logger.Named("live")),
		)
	}
	s.tracker = dedupe.NewMemoryTracker(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.eventQueue = eventqueue.NewMemoryQueue(
		eventqueue.WithCapacity(s.queueSize),
	)

	s.workerPool = workerpool.NewPool(s.workerCount, s.eventQueue, s.store, s.hub)
	s.workerPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "shot recorder service started",
		logger.Int("workers", s.workerPool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.String("defaultLevel", s.defaultLevel.String()),
	)

	return nil
}

// Stop gracefully shuts down the service. Queued events drain to the
// workers before the store closes.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping shot recorder service...")

	if s.eventQueue != nil {
		_ = s.eventQueue.Close()
	}
	if s.workerPool != nil {
		if err := s.workerPool.Shutdown(ctx); err != nil {
			s.logger.Warn(ctx, "worker pool shutdown incomplete", logger.Error(err))
		}
	}
	if s.hub != nil {
		s.hub.Close()
	}
	if s.store != nil {
		_ = s.store.Close()
	}

	select {
	case <-s.stopCh:
		// Channel already closed
	default:
		close(s.stopCh)
	}

	s.started = false
	s.logger.Info(ctx, "shot recorder service stopped")
}

// SeenAndRecord atomically checks if an event id was seen and records it
// if not. Returns true if the event was already seen.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.tracker.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordShotDuplicate()
	}
	return seen
}

// Unrecord removes an event ID from the seen list, allowing the client
// to retry after backpressure.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.tracker.Unrecord(ctx, id)
}

// Size returns the current number of entries in the dedupe tracker.
func (s *Service) Size() int64 {
	if s.tracker == nil {
		return 0
	}
	return s.tracker.Size()
}

// Enqueue submits a validated tap for asynchronous classification.
// Returns false when the queue rejects the event.
func (s *Service) Enqueue(ctx context.Context, ev model.ShotEvent) bool {
	if ev.TS.IsZero() {
		ev.TS = time.Now().UTC()
	}

	s.logger.Debug(ctx, "enqueueing shot event",
		logger.String("eventID", ev.EventID),
		logger.String("gameID", ev.GameID),
		logger.String("playerID", ev.PlayerID),
		logger.Int("quarter", ev.Quarter),
	)

	ok := s.eventQueue.Enqueue(ctx, ev)
	if ok {
		metrics.RecordShotAccepted()
		metrics.UpdateQueueDepth(s.eventQueue.Len(ctx))
	}
	return ok
}

// DefaultLevel is the court level applied when a team does not pick one.
func (s *Service) DefaultLevel() court.Level {
	return s.defaultLevel
}

// Hub exposes the live feed for the HTTP layer.
func (s *Service) Hub() *live.Hub {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hub
}

// Store exposes the persistence backend for the HTTP layer.
func (s *Service) Store() repository.Store {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":      s.started,
		"workerCount":  s.workerCount,
		"queueSize":    s.queueSize,
		"dedupeSize":   s.dedupeSize,
		"defaultLevel": s.defaultLevel.String(),
	}

	if s.started {
		queueLen := s.eventQueue.Len(ctx)
		storedShots := s.store.CountShots(ctx)

		stats["queueLength"] = queueLen
		stats["storedShots"] = storedShots
		stats["dedupeEntries"] = s.tracker.Size()

		// Update metrics
		metrics.UpdateQueueDepth(queueLen)
		metrics.UpdateStoreShotCount(storedShots)
		metrics.UpdateDedupeSize(int(s.tracker.Size()))
	}

	return stats
}
