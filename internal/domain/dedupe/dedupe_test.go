package dedupe_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	dedupe "github.com/openhoops/shotchart/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMemoryTracker(t *testing.T) {
	Convey("Given a new memory tracker", t, func() {
		Convey("When creating with default options", func() {
			d := dedupe.NewMemoryTracker()

			So(d, ShouldNotBeNil)
			So(d.Size(), ShouldEqual, 0)
		})

		Convey("When recording shot events", func() {
			d := dedupe.NewMemoryTracker()

			Convey("And the event is new", func() {
				seen := d.SeenAndRecord(context.Background(), "tap-1")

				Convey("Then it is recorded as unseen", func() {
					So(seen, ShouldBeFalse)
					So(d.Size(), ShouldEqual, 1)
				})
			})

			Convey("And a sync queue replays the same event", func() {
				d.SeenAndRecord(context.Background(), "tap-1")
				seen := d.SeenAndRecord(context.Background(), "tap-1")

				Convey("Then the replay is flagged", func() {
					So(seen, ShouldBeTrue)
					So(d.Size(), ShouldEqual, 1)
				})
			})

			Convey("And a batch of distinct events arrives", func() {
				events := []string{"tap-1", "tap-2", "tap-3", "tap-4", "tap-5"}
				for _, ev := range events {
					So(d.SeenAndRecord(context.Background(), ev), ShouldBeFalse)
				}

				Convey("Then every one is tracked", func() {
					So(d.Size(), ShouldEqual, int64(len(events)))
					for _, ev := range events {
						So(d.SeenAndRecord(context.Background(), ev), ShouldBeTrue)
					}
				})
			})
		})

		Convey("When unrecording after a failed enqueue", func() {
			d := dedupe.NewMemoryTracker()

			Convey("And the event exists", func() {
				d.SeenAndRecord(context.Background(), "tap-1")
				d.Unrecord(context.Background(), "tap-1")

				Convey("Then the client can retry it", func() {
					So(d.Size(), ShouldEqual, 0)
					So(d.SeenAndRecord(context.Background(), "tap-1"), ShouldBeFalse)
				})
			})

			Convey("And the event does not exist", func() {
				d.Unrecord(context.Background(), "never-seen")

				So(d.Size(), ShouldEqual, 0)
			})
		})
	})
}

func TestMemoryTrackerEviction(t *testing.T) {
	Convey("Given a tracker bounded to three entries", t, func() {
		d := dedupe.NewMemoryTracker(dedupe.WithMaxSize(3))

		Convey("When a fourth event arrives", func() {
			for _, ev := range []string{"tap-1", "tap-2", "tap-3"} {
				So(d.SeenAndRecord(context.Background(), ev), ShouldBeFalse)
			}
			So(d.SeenAndRecord(context.Background(), "tap-4"), ShouldBeFalse)

			Convey("Then the oldest entry made room", func() {
				So(d.Size(), ShouldEqual, 3)
				So(d.SeenAndRecord(context.Background(), "tap-1"), ShouldBeFalse) // evicted, re-recorded
			})

			Convey("Then the newer entries survive", func() {
				So(d.SeenAndRecord(context.Background(), "tap-2"), ShouldBeTrue)
				So(d.SeenAndRecord(context.Background(), "tap-3"), ShouldBeTrue)
				So(d.SeenAndRecord(context.Background(), "tap-4"), ShouldBeTrue)
			})
		})
	})

	Convey("Given stale slots left by Unrecord", t, func() {
		d := dedupe.NewMemoryTracker(dedupe.WithMaxSize(2))

		Convey("When a slot's id was unrecorded before being overwritten", func() {
			d.SeenAndRecord(context.Background(), "x")
			d.SeenAndRecord(context.Background(), "y")
			d.Unrecord(context.Background(), "x")

			So(d.SeenAndRecord(context.Background(), "z"), ShouldBeFalse) // reuses x's slot
			So(d.Size(), ShouldEqual, 2)

			Convey("Then later eviction only removes live entries", func() {
				So(d.SeenAndRecord(context.Background(), "w"), ShouldBeFalse) // evicts y
				So(d.Size(), ShouldEqual, 2)
				So(d.SeenAndRecord(context.Background(), "z"), ShouldBeTrue)
				So(d.SeenAndRecord(context.Background(), "y"), ShouldBeFalse)
			})
		})

		Convey("When an id is re-added after unrecord into a new slot", func() {
			d.SeenAndRecord(context.Background(), "a")
			d.SeenAndRecord(context.Background(), "b")
			d.Unrecord(context.Background(), "a")
			So(d.SeenAndRecord(context.Background(), "a"), ShouldBeFalse)

			Convey("Then the re-added id is not clobbered by its old slot", func() {
				So(d.SeenAndRecord(context.Background(), "c"), ShouldBeFalse) // evicts b
				So(d.SeenAndRecord(context.Background(), "a"), ShouldBeTrue)
				So(d.SeenAndRecord(context.Background(), "b"), ShouldBeFalse)
			})
		})
	})

	Convey("Given a tracker of size one", t, func() {
		d := dedupe.NewMemoryTracker(dedupe.WithMaxSize(1))

		Convey("When events alternate", func() {
			So(d.SeenAndRecord(context.Background(), "tap-1"), ShouldBeFalse)
			So(d.SeenAndRecord(context.Background(), "tap-2"), ShouldBeFalse)
			So(d.Size(), ShouldEqual, 1)
			So(d.SeenAndRecord(context.Background(), "tap-1"), ShouldBeFalse)
			So(d.Size(), ShouldEqual, 1)
		})
	})
}

func TestMemoryTrackerUnbounded(t *testing.T) {
	Convey("Given an unbounded tracker", t, func() {
		for _, maxSize := range []int{0, -1} {
			d := dedupe.NewMemoryTracker(dedupe.WithMaxSize(maxSize))

			const numEvents = 1000
			for i := 0; i < numEvents; i++ {
				So(d.SeenAndRecord(context.Background(), fmt.Sprintf("tap-%d", i)), ShouldBeFalse)
			}

			Convey(fmt.Sprintf("Then nothing is evicted at maxSize=%d", maxSize), func() {
				So(d.Size(), ShouldEqual, int64(numEvents))
				for i := 0; i < numEvents; i++ {
					So(d.SeenAndRecord(context.Background(), fmt.Sprintf("tap-%d", i)), ShouldBeTrue)
				}
			})
		}
	})
}

func TestMemoryTrackerConcurrency(t *testing.T) {
	Convey("Given concurrent recorders", t, func() {
		d := dedupe.NewMemoryTracker(dedupe.WithMaxSize(10000))
		const numGoroutines = 10
		const eventsPerGoroutine = 100

		var wg sync.WaitGroup
		for i := 0; i < numGoroutines; i++ {
			wg.Add(1)
			go func(id int) {
				defer wg.Done()
				for j := 0; j < eventsPerGoroutine; j++ {
					d.SeenAndRecord(context.Background(), fmt.Sprintf("tap-%d-%d", id, j))
				}
			}(i)
		}
		wg.Wait()

		Convey("Then every distinct event lands exactly once", func() {
			So(d.Size(), ShouldEqual, int64(numGoroutines*eventsPerGoroutine))
		})

		Convey("When the same goroutines unrecord concurrently", func() {
			var und sync.WaitGroup
			for i := 0; i < numGoroutines; i++ {
				und.Add(1)
				go func(id int) {
					defer und.Done()
					for j := 0; j < eventsPerGoroutine; j++ {
						d.Unrecord(context.Background(), fmt.Sprintf("tap-%d-%d", id, j))
					}
				}(i)
			}
			und.Wait()

			Convey("Then the tracker drains to zero", func() {
				So(d.Size(), ShouldEqual, 0)
			})
		})
	})
}

func TestMemoryTrackerEdgeCases(t *testing.T) {
	Convey("Given odd inputs", t, func() {
		Convey("When recording the empty string", func() {
			d := dedupe.NewMemoryTracker()

			So(d.SeenAndRecord(context.Background(), ""), ShouldBeFalse)
			So(d.SeenAndRecord(context.Background(), ""), ShouldBeTrue)
		})

		Convey("When recording a very long id", func() {
			d := dedupe.NewMemoryTracker()
			long := strings.Repeat("a", 10000)

			So(d.SeenAndRecord(context.Background(), long), ShouldBeFalse)
			So(d.SeenAndRecord(context.Background(), long), ShouldBeTrue)
		})

		Convey("When passing a nil context", func() {
			d := dedupe.NewMemoryTracker()

			So(func() { d.SeenAndRecord(nil, "tap-1") }, ShouldNotPanic)
			So(func() { d.Unrecord(nil, "tap-1") }, ShouldNotPanic)
		})
	})
}
