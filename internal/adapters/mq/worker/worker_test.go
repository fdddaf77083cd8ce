package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	worker "github.com/openhoops/shotchart/internal/adapters/mq/worker"
	court "github.com/openhoops/shotchart/internal/domain/court"
	model "github.com/openhoops/shotchart/internal/domain/model"
	logging "github.com/openhoops/shotchart/pkg/logger"
)

// Mock implementations for testing.
type mockQueue struct {
	eventChan  chan worker.Event
	closeError error
	closeOnce  sync.Once
}

func newMockQueue() *mockQueue {
	return &mockQueue{
		eventChan: make(chan worker.Event, 128),
	}
}

func (mq *mockQueue) Dequeue(ctx context.Context) <-chan worker.Event {
	return mq.eventChan
}

func (mq *mockQueue) Close() error {
	mq.closeOnce.Do(func() { close(mq.eventChan) })
	return mq.closeError
}

func (mq *mockQueue) addEvent(event worker.Event) {
	mq.eventChan <- event
}

type mockStore struct {
	levels     map[string]court.Level
	insertErrs map[string]error
	shots      map[string]model.LiveShot
	mu         sync.RWMutex
}

func newMockStore() *mockStore {
	return &mockStore{
		levels:     make(map[string]court.Level),
		insertErrs: make(map[string]error),
		shots:      make(map[string]model.LiveShot),
	}
}

func (ms *mockStore) GameLevel(ctx context.Context, gameID string) (court.Level, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	if level, exists := ms.levels[gameID]; exists {
		return level, nil
	}
	return "", errors.New("game not found")
}

func (ms *mockStore) InsertShot(ctx context.Context, s model.LiveShot) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if err, exists := ms.insertErrs[s.EventID]; exists {
		return err
	}
	ms.shots[s.EventID] = s
	return nil
}

func (ms *mockStore) setLevel(gameID string, level court.Level) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.levels[gameID] = level
}

func (ms *mockStore) setInsertError(eventID string, err error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.insertErrs[eventID] = err
}

func (ms *mockStore) getShot(eventID string) (model.LiveShot, bool) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	shot, exists := ms.shots[eventID]
	return shot, exists
}

type mockPublisher struct {
	published []model.LiveShot
	mu        sync.RWMutex
}

func newMockPublisher() *mockPublisher {
	return &mockPublisher{}
}

func (mp *mockPublisher) Publish(gameID string, s model.LiveShot) {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.published = append(mp.published, s)
}

func (mp *mockPublisher) count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return len(mp.published)
}

func TestShotWorker(t *testing.T) {
	convey.Convey("Given a new ShotWorker", t, func() {
		// Initialize logging for tests
		_ = logging.Init()

		queue := newMockQueue()
		store := newMockStore()
		pub := newMockPublisher()
		store.setLevel("game-nba", court.NBA)
		store.setLevel("game-hs", court.HighSchool)

		convey.Convey("When creating a worker with default options", func() {
			worker := worker.NewShotWorker(queue, store, pub)

			convey.Convey("Then it should be created successfully", func() {
				convey.So(worker, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When creating a worker with custom options", func() {
			worker := worker.NewShotWorker(
				queue, store, pub,
				worker.WithName("test-worker"),
			)

			convey.Convey("Then it should be created successfully", func() {
				convey.So(worker, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When running a worker", func() {
			w := worker.NewShotWorker(queue, store, pub)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			go w.Run(ctx)

			// Give worker time to start
			time.Sleep(10 * time.Millisecond)

			convey.Convey("And when processing a shot at the rim", func() {
				queue.addEvent(worker.Event{
					EventID:  "event-rim",
					GameID:   "game-nba",
					PlayerID: "player-1",
					Quarter:  1,
					Pos:      court.Position{X: 0.5, Y: 0.12},
					Made:     true,
					TS:       time.Now(),
				})

				// Give worker time to process
				time.Sleep(50 * time.Millisecond)

				convey.Convey("Then it should store a classified layup", func() {
					shot, stored := store.getShot("event-rim")
					convey.So(stored, convey.ShouldBeTrue)
					convey.So(shot.ShotType, convey.ShouldEqual, court.TwoPointer)
					convey.So(shot.Zone, convey.ShouldEqual, court.ZoneRestricted)
					convey.So(shot.Layup, convey.ShouldBeTrue)
					convey.So(shot.ShotID, convey.ShouldNotBeEmpty)
					convey.So(shot.ShotID, convey.ShouldNotEqual, shot.EventID)
				})

				convey.Convey("Then it should publish the shot", func() {
					convey.So(pub.count(), convey.ShouldEqual, 1)
				})
			})

			convey.Convey("And when processing a straightaway deep ball", func() {
				queue.addEvent(worker.Event{
					EventID:  "event-deep",
					GameID:   "game-nba",
					PlayerID: "player-1",
					Quarter:  2,
					Pos:      court.Position{X: 0.5, Y: 0.75},
					Made:     false,
					TS:       time.Now(),
				})

				time.Sleep(50 * time.Millisecond)

				convey.Convey("Then it should classify a three with no layup flag", func() {
					shot, stored := store.getShot("event-deep")
					convey.So(stored, convey.ShouldBeTrue)
					convey.So(shot.ShotType, convey.ShouldEqual, court.ThreePointer)
					convey.So(shot.Layup, convey.ShouldBeFalse)
					convey.So(shot.DistanceFt, convey.ShouldBeGreaterThan, court.LayupEligibleFt)
				})
			})

			convey.Convey("And when processing a free throw", func() {
				queue.addEvent(worker.Event{
					EventID:  "event-ft",
					GameID:   "game-nba",
					PlayerID: "player-2",
					Quarter:  1,
					Pos:      court.Position{X: 0.5, Y: 19.0 / court.DepthFt},
					Made:     true,
					TS:       time.Now(),
				})

				time.Sleep(50 * time.Millisecond)

				convey.Convey("Then it should classify a free throw", func() {
					shot, stored := store.getShot("event-ft")
					convey.So(stored, convey.ShouldBeTrue)
					convey.So(shot.ShotType, convey.ShouldEqual, court.FreeThrow)
				})
			})

			convey.Convey("And when the client flags a layup inside the eligible radius", func() {
				queue.addEvent(worker.Event{
					EventID:  "event-runner",
					GameID:   "game-nba",
					PlayerID: "player-3",
					Quarter:  3,
					Pos:      court.Position{X: 0.5, Y: 11.75 / court.DepthFt},
					Made:     true,
					Layup:    true,
					LayupSet: true,
					TS:       time.Now(),
				})

				time.Sleep(50 * time.Millisecond)

				convey.Convey("Then the flag should be honored", func() {
					shot, stored := store.getShot("event-runner")
					convey.So(stored, convey.ShouldBeTrue)
					convey.So(shot.Layup, convey.ShouldBeTrue)
					convey.So(shot.DistanceFt, convey.ShouldBeGreaterThan, court.LayupAutoFt)
					convey.So(shot.DistanceFt, convey.ShouldBeLessThanOrEqualTo, court.LayupEligibleFt)
				})
			})

			convey.Convey("And when the client flags a layup from midrange", func() {
				queue.addEvent(worker.Event{
					EventID:  "event-jumper",
					GameID:   "game-nba",
					PlayerID: "player-3",
					Quarter:  3,
					Pos:      court.Position{X: 0.7, Y: 15.0 / court.DepthFt},
					Made:     false,
					Layup:    true,
					LayupSet: true,
					TS:       time.Now(),
				})

				time.Sleep(50 * time.Millisecond)

				convey.Convey("Then the flag should be dropped", func() {
					shot, stored := store.getShot("event-jumper")
					convey.So(stored, convey.ShouldBeTrue)
					convey.So(shot.Layup, convey.ShouldBeFalse)
					convey.So(shot.DistanceFt, convey.ShouldBeGreaterThan, court.LayupEligibleFt)
				})
			})

			convey.Convey("And when the same spot is taken at two levels", func() {
				pos := court.Position{X: 0.5, Y: 26.25 / court.DepthFt}
				queue.addEvent(worker.Event{
					EventID: "event-21ft-nba", GameID: "game-nba",
					PlayerID: "player-4", Quarter: 1, Pos: pos, TS: time.Now(),
				})
				queue.addEvent(worker.Event{
					EventID: "event-21ft-hs", GameID: "game-hs",
					PlayerID: "player-4", Quarter: 1, Pos: pos, TS: time.Now(),
				})

				time.Sleep(50 * time.Millisecond)

				convey.Convey("Then the game's level should decide the value", func() {
					nbaShot, _ := store.getShot("event-21ft-nba")
					hsShot, _ := store.getShot("event-21ft-hs")
					convey.So(nbaShot.ShotType, convey.ShouldEqual, court.TwoPointer)
					convey.So(hsShot.ShotType, convey.ShouldEqual, court.ThreePointer)
				})
			})

			convey.Convey("And when the event carries no timestamp", func() {
				queue.addEvent(worker.Event{
					EventID:  "event-no-ts",
					GameID:   "game-nba",
					PlayerID: "player-5",
					Quarter:  4,
					Pos:      court.Position{X: 0.5, Y: 0.3},
					Made:     true,
				})

				time.Sleep(50 * time.Millisecond)

				convey.Convey("Then the worker should stamp it", func() {
					shot, stored := store.getShot("event-no-ts")
					convey.So(stored, convey.ShouldBeTrue)
					convey.So(shot.TS.IsZero(), convey.ShouldBeFalse)
				})
			})

			convey.Convey("And when the game is unknown", func() {
				queue.addEvent(worker.Event{
					EventID:  "event-orphan",
					GameID:   "game-missing",
					PlayerID: "player-1",
					Quarter:  1,
					Pos:      court.Position{X: 0.5, Y: 0.3},
					TS:       time.Now(),
				})

				time.Sleep(50 * time.Millisecond)

				convey.Convey("Then nothing should be stored or published", func() {
					_, stored := store.getShot("event-orphan")
					convey.So(stored, convey.ShouldBeFalse)
					convey.So(pub.count(), convey.ShouldEqual, 0)
				})
			})

			convey.Convey("And when storing fails", func() {
				store.setInsertError("event-db-down", errors.New("insert error"))

				queue.addEvent(worker.Event{
					EventID:  "event-db-down",
					GameID:   "game-nba",
					PlayerID: "player-1",
					Quarter:  1,
					Pos:      court.Position{X: 0.5, Y: 0.3},
					TS:       time.Now(),
				})

				time.Sleep(50 * time.Millisecond)

				convey.Convey("Then the shot should not be published", func() {
					convey.So(pub.count(), convey.ShouldEqual, 0)
				})
			})

			convey.Convey("And when shutting down", func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
				defer shutdownCancel()

				err := w.Shutdown(shutdownCtx)

				convey.Convey("Then it should shutdown gracefully", func() {
					convey.So(err, convey.ShouldBeNil)
				})
			})
		})

		convey.Convey("When running without a publisher", func() {
			w := worker.NewShotWorker(queue, store, nil)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			go w.Run(ctx)
			time.Sleep(10 * time.Millisecond)

			queue.addEvent(worker.Event{
				EventID:  "event-quiet",
				GameID:   "game-nba",
				PlayerID: "player-1",
				Quarter:  1,
				Pos:      court.Position{X: 0.5, Y: 0.3},
				TS:       time.Now(),
			})

			time.Sleep(50 * time.Millisecond)

			convey.Convey("Then shots should still be stored", func() {
				_, stored := store.getShot("event-quiet")
				convey.So(stored, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When context is cancelled", func() {
			w := worker.NewShotWorker(queue, store, pub)
			ctx, cancel := context.WithCancel(context.Background())

			go w.Run(ctx)
			time.Sleep(10 * time.Millisecond)

			cancel()
			time.Sleep(50 * time.Millisecond)

			convey.Convey("Then a later shutdown should return immediately", func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
				defer shutdownCancel()
				convey.So(w.Shutdown(shutdownCtx), convey.ShouldBeNil)
			})
		})
	})
}

func TestWorkerPool(t *testing.T) {
	convey.Convey("Given a new worker Pool", t, func() {
		// Initialize logging for tests
		_ = logging.Init()

		queue := newMockQueue()
		store := newMockStore()
		pub := newMockPublisher()
		store.setLevel("game-1", court.College)

		convey.Convey("When creating a worker pool with default count", func() {
			pool := worker.NewPool(0, queue, store, pub)

			convey.Convey("Then it should size itself from the host", func() {
				convey.So(pool, convey.ShouldNotBeNil)
				convey.So(pool.Size(), convey.ShouldBeGreaterThan, 0)
			})
		})

		convey.Convey("When creating a worker pool with custom count", func() {
			pool := worker.NewPool(3, queue, store, pub)

			convey.Convey("Then it should honor the count", func() {
				convey.So(pool.Size(), convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When starting a worker pool", func() {
			pool := worker.NewPool(2, queue, store, pub)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			pool.Start(ctx)

			// Give workers time to start
			time.Sleep(20 * time.Millisecond)

			convey.Convey("And when processing multiple events", func() {
				for i := 0; i < 3; i++ {
					queue.addEvent(worker.Event{
						EventID:  fmt.Sprintf("event-%d", i),
						GameID:   "game-1",
						PlayerID: fmt.Sprintf("player-%d", i),
						Quarter:  1,
						Pos:      court.Position{X: 0.5, Y: 0.3},
						Made:     i%2 == 0,
						TS:       time.Now(),
					})
				}

				// Give workers time to process
				time.Sleep(100 * time.Millisecond)

				convey.Convey("Then all events should be processed", func() {
					for i := 0; i < 3; i++ {
						shot, stored := store.getShot(fmt.Sprintf("event-%d", i))
						convey.So(stored, convey.ShouldBeTrue)
						convey.So(shot.ShotType, convey.ShouldEqual, court.TwoPointer)
					}
					convey.So(pub.count(), convey.ShouldEqual, 3)
				})
			})

			convey.Convey("And when shutting down", func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
				defer shutdownCancel()

				err := pool.Shutdown(shutdownCtx)

				convey.Convey("Then it should shutdown gracefully", func() {
					convey.So(err, convey.ShouldBeNil)
				})
			})
		})

		convey.Convey("When stopping a worker pool", func() {
			pool := worker.NewPool(2, queue, store, pub)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			pool.Start(ctx)

			// Give workers time to start
			time.Sleep(20 * time.Millisecond)

			pool.Stop()

			convey.Convey("Then later events should sit unprocessed", func() {
				queue.addEvent(worker.Event{
					EventID:  "event-after-stop",
					GameID:   "game-1",
					PlayerID: "player-1",
					Quarter:  1,
					Pos:      court.Position{X: 0.5, Y: 0.3},
					TS:       time.Now(),
				})

				time.Sleep(50 * time.Millisecond)

				_, stored := store.getShot("event-after-stop")
				convey.So(stored, convey.ShouldBeFalse)
			})
		})
	})
}

func TestWorkerOptions(t *testing.T) {
	convey.Convey("Given worker options", t, func() {
		queue := newMockQueue()
		store := newMockStore()
		pub := newMockPublisher()

		convey.Convey("When using WithName", func() {
			w := worker.NewShotWorker(queue, store, pub, worker.WithName("test-worker"))

			convey.Convey("Then it should create the worker", func() {
				convey.So(w, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When using WithName with an empty name", func() {
			w := worker.NewShotWorker(queue, store, pub, worker.WithName(""))

			convey.Convey("Then the default should survive", func() {
				convey.So(w, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When using WithProcessedHook", func() {
			_ = logging.Init()
			store.setLevel("game-1", court.HighSchool)

			var processed sync.WaitGroup
			processed.Add(1)
			w := worker.NewShotWorker(queue, store, pub, worker.WithProcessedHook(processed.Done))

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go w.Run(ctx)

			queue.addEvent(worker.Event{
				EventID:  "event-hook",
				GameID:   "game-1",
				PlayerID: "player-1",
				Quarter:  1,
				Pos:      court.Position{X: 0.5, Y: 0.3},
				TS:       time.Now(),
			})

			convey.Convey("Then the hook should fire after processing", func() {
				done := make(chan struct{})
				go func() {
					processed.Wait()
					close(done)
				}()

				select {
				case <-done:
					convey.So(true, convey.ShouldBeTrue)
				case <-time.After(time.Second):
					convey.So("hook never fired", convey.ShouldBeEmpty)
				}
			})
		})
	})
}

func TestWorkerConcurrency(t *testing.T) {
	convey.Convey("Given a worker pool with multiple workers", t, func() {
		// Initialize logging for tests
		_ = logging.Init()

		queue := newMockQueue()
		store := newMockStore()
		pub := newMockPublisher()
		store.setLevel("game-1", court.NBA)

		pool := worker.NewPool(4, queue, store, pub)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		pool.Start(ctx)

		// Give workers time to start
		time.Sleep(20 * time.Millisecond)

		convey.Convey("When processing many concurrent events", func() {
			const eventCount = 100
			var wg sync.WaitGroup

			for i := 0; i < 5; i++ {
				wg.Add(1)
				go func(producerID int) {
					defer wg.Done()
					for j := 0; j < eventCount/5; j++ {
						queue.addEvent(worker.Event{
							EventID:  fmt.Sprintf("event-%d-%d", producerID, j),
							GameID:   "game-1",
							PlayerID: fmt.Sprintf("player-%d", producerID),
							Quarter:  1 + j%4,
							Pos:      court.Position{X: 0.5, Y: 0.3},
							Made:     j%2 == 0,
							TS:       time.Now(),
						})
					}
				}(i)
			}

			// Wait for all events to be added
			wg.Wait()

			// Give workers time to process
			time.Sleep(200 * time.Millisecond)

			convey.Convey("Then all events should be processed", func() {
				processedCount := 0
				for i := 0; i < 5; i++ {
					for j := 0; j < eventCount/5; j++ {
						if _, stored := store.getShot(fmt.Sprintf("event-%d-%d", i, j)); stored {
							processedCount++
						}
					}
				}
				convey.So(processedCount, convey.ShouldEqual, eventCount)
				convey.So(pub.count(), convey.ShouldEqual, eventCount)
			})
		})
	})
}

func TestWorkerErrorHandling(t *testing.T) {
	convey.Convey("Given a worker with error conditions", t, func() {
		// Initialize logging for tests
		_ = logging.Init()

		queue := newMockQueue()
		store := newMockStore()
		pub := newMockPublisher()
		store.setLevel("game-1", court.HighSchool)

		w := worker.NewShotWorker(queue, store, pub)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		go w.Run(ctx)

		// Give worker time to start
		time.Sleep(10 * time.Millisecond)

		convey.Convey("When storing consistently fails", func() {
			store.setInsertError("event-error", errors.New("persistent insert error"))

			queue.addEvent(worker.Event{
				EventID:  "event-error",
				GameID:   "game-1",
				PlayerID: "player-1",
				Quarter:  1,
				Pos:      court.Position{X: 0.5, Y: 0.3},
				TS:       time.Now(),
			})

			// Give worker time to process
			time.Sleep(50 * time.Millisecond)

			convey.Convey("Then the worker should keep going", func() {
				queue.addEvent(worker.Event{
					EventID:  "event-recovered",
					GameID:   "game-1",
					PlayerID: "player-1",
					Quarter:  1,
					Pos:      court.Position{X: 0.5, Y: 0.3},
					TS:       time.Now(),
				})

				time.Sleep(50 * time.Millisecond)

				_, stored := store.getShot("event-recovered")
				convey.So(stored, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the queue channel is closed", func() {
			_ = queue.Close()

			// Give worker time to detect closure
			time.Sleep(50 * time.Millisecond)

			convey.Convey("Then shutdown should return immediately", func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
				defer shutdownCancel()
				convey.So(w.Shutdown(shutdownCtx), convey.ShouldBeNil)
			})
		})
	})
}
