// Package worker runs the classification stage of the ingest pipeline:
// workers drain raw taps off the queue, classify them against the game's
// court, persist them, and hand them to the live feed.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/openhoops/shotchart/internal/domain/court"
	"github.com/openhoops/shotchart/internal/domain/model"
	"github.com/openhoops/shotchart/pkg/logger"
	"github.com/openhoops/shotchart/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkersPerCPU  = 2
	metricsFlushInterval  = 5 * time.Second
	workerShutdownTimeout = 5 * time.Second
	poolShutdownTimeout   = 30 * time.Second
)

// Event is what workers read off the queue.
type Event = model.ShotEvent

// Store persists classified shots and resolves the game context a tap
// belongs to.
type Store interface {
	GameLevel(ctx context.Context, gameID string) (court.Level, error)
	InsertShot(ctx context.Context, s model.LiveShot) error
}

// Publisher receives classified shots for fan-out to live subscribers.
// Publish must not block; workers call it on the hot path.
type Publisher interface {
	Publish(gameID string, s model.LiveShot)
}

// Queue defines how workers receive events.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Event
}

// Worker processes queued taps until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	Shutdown(ctx context.Context) error
}

// ShotWorker implements Worker: one goroutine classifying and storing
// taps.
type ShotWorker struct {
	queue Queue
	store Store
	pub   Publisher
	name  string

	onProcessed func()

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewShotWorker creates a worker.
func NewShotWorker(queue Queue, store Store, pub Publisher, opts ...Option) *ShotWorker {
	w := &ShotWorker{
		queue:    queue,
		store:    store,
		pub:      pub,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *ShotWorker) Run(ctx context.Context) {
	defer close(w.done)

	events := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := w.process(ctx, ev); err != nil {
				w.logger.Error(ctx, "processing shot event failed",
					logger.String("event_id", ev.EventID),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *ShotWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("worker shutdown: %w", ctx.Err())
	}
}

// process classifies one tap and persists it.
func (w *ShotWorker) process(ctx context.Context, ev Event) error {
	start := time.Now()

	level, err := w.store.GameLevel(ctx, ev.GameID)
	if err != nil {
		metrics.RecordWorkerError("resolve_game")
		return fmt.Errorf("resolving game %s: %w", ev.GameID, err)
	}

	spec := court.SpecFor(level)
	shotType := court.Classify(ev.Pos, spec)
	zone := court.ZoneFor(ev.Pos, spec)
	dist := court.DistanceFromBasket(ev.Pos.X, ev.Pos.Y)

	// Explicit layup flags are honored inside the eligibility radius;
	// otherwise shots at the rim flag themselves.
	layup := false
	if dist <= court.LayupEligibleFt {
		if ev.LayupSet {
			layup = ev.Layup
		} else {
			layup = dist <= court.LayupAutoFt
		}
	}

	ts := ev.TS
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	shot := model.LiveShot{
		ShotID:     uuid.NewString(),
		EventID:    ev.EventID,
		GameID:     ev.GameID,
		PlayerID:   ev.PlayerID,
		Quarter:    ev.Quarter,
		Pos:        ev.Pos,
		Made:       ev.Made,
		Layup:      layup,
		ShotType:   shotType,
		Zone:       zone,
		DistanceFt: dist,
		TS:         ts,
	}

	if err := w.store.InsertShot(ctx, shot); err != nil {
		metrics.RecordWorkerError("store")
		return fmt.Errorf("storing shot %s: %w", ev.EventID, err)
	}

	if w.pub != nil {
		w.pub.Publish(ev.GameID, shot)
	}

	metrics.RecordShotProcessed(shotType.String(), ev.Made)
	metrics.RecordZoneShot(zone.String())
	metrics.RecordClassifyLatency(float64(time.Since(start).Milliseconds()))

	if w.onProcessed != nil {
		w.onProcessed()
	}
	return nil
}

// Pool manages a fixed set of workers over one queue.
type Pool struct {
	workers []*ShotWorker
	queue   Queue

	shutdown     chan struct{}
	shutdownOnce sync.Once

	processed atomic.Int64

	logger logger.Logger
}

// NewPool creates a worker pool. A non-positive workerCount sizes the
// pool from the CPU count.
func NewPool(workerCount int, queue Queue, store Store, pub Publisher) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkersPerCPU
	}

	p := &Pool{
		workers:  make([]*ShotWorker, workerCount),
		queue:    queue,
		shutdown: make(chan struct{}),
		logger:   logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		p.workers[i] = NewShotWorker(
			queue,
			store,
			pub,
			WithName("worker-"+strconv.Itoa(i)),
			WithProcessedHook(func() { p.processed.Add(1) }),
		)
	}

	metrics.UpdateWorkerActiveCount(workerCount)
	metrics.UpdateWorkerThroughput(0)

	return p
}

// Size returns the number of workers in the pool.
func (p *Pool) Size() int { return len(p.workers) }

// Start launches all workers plus the throughput reporter.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	go p.reportThroughput(ctx)
}

// reportThroughput converts the processed counter into a rate gauge.
func (p *Pool) reportThroughput(ctx context.Context) {
	ticker := time.NewTicker(metricsFlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.shutdown:
			return
		case <-ticker.C:
			n := p.processed.Swap(0)
			metrics.UpdateWorkerThroughput(float64(n) / metricsFlushInterval.Seconds())
		}
	}
}

// Stop stops all workers, giving each a bounded grace period.
func (p *Pool) Stop() {
	p.shutdownOnce.Do(func() { close(p.shutdown) })

	for _, w := range p.workers {
		ctx, cancel := context.WithTimeout(context.Background(), workerShutdownTimeout)
		if err := w.Shutdown(ctx); err != nil {
			p.logger.Warn(ctx, "worker did not stop in time", logger.String("worker", w.name))
		}
		cancel()
	}
}

// Shutdown closes the queue so no new taps are accepted, then stops the
// workers once the backlog drains or the timeout passes.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	p.shutdownOnce.Do(func() { close(p.shutdown) })

	for _, w := range p.workers {
		if err := w.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("stopping %s: %w", w.name, err)
		}
	}
	return nil
}
