package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/openhoops/shotchart/internal/app"
	"github.com/openhoops/shotchart/internal/domain/court"
	"github.com/openhoops/shotchart/internal/domain/model"
	"github.com/openhoops/shotchart/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := app.New()

		Convey("Then it should have sensible defaults", func() {
			So(svc, ShouldNotBeNil)
			So(svc.DefaultLevel(), ShouldEqual, court.HighSchool)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := app.New(
			app.WithWorkerCount(4),
			app.WithQueueSize(1_000),
			app.WithDedupeSize(500),
			app.WithDefaultLevel(court.NBA),
		)

		Convey("Then it should be created successfully", func() {
			So(svc, ShouldNotBeNil)
			So(svc.DefaultLevel(), ShouldEqual, court.NBA)
		})
	})

	Convey("Given an invalid default level option", t, func() {
		svc := app.New(app.WithDefaultLevel(court.Level("streetball")))

		Convey("Then the default should be left untouched", func() {
			So(svc.DefaultLevel(), ShouldEqual, court.HighSchool)
		})
	})
}

func TestService_Start(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := app.New()
		defer svc.Stop()

		Convey("When starting the service", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			err := svc.Start(ctx)

			Convey("Then it should start successfully", func() {
				So(err, ShouldBeNil)
			})

			Convey("And it should be marked as started", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
			})

			Convey("And it should expose the wired store and hub", func() {
				So(svc.Store(), ShouldNotBeNil)
				So(svc.Hub(), ShouldNotBeNil)
			})

			Convey("And starting again should be a no-op", func() {
				So(svc.Start(ctx), ShouldBeNil)
			})
		})
	})
}

func TestService_Stop(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := app.New()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := svc.Start(ctx)
		So(err, ShouldBeNil)

		Convey("When stopping the service", func() {
			svc.Stop()

			Convey("Then it should be marked as stopped", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, false)
			})

			Convey("And stopping again should be a no-op", func() {
				svc.Stop()
			})
		})
	})
}

func TestService_SeenAndRecord(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := app.New()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := svc.Start(ctx)
		So(err, ShouldBeNil)
		defer svc.Stop()

		Convey("When checking a new event ID", func() {
			seen := svc.SeenAndRecord(ctx, "event-123")

			Convey("Then it should not have been seen before", func() {
				So(seen, ShouldBeFalse)
			})
		})

		Convey("When checking the same event ID again", func() {
			svc.SeenAndRecord(ctx, "event-456")
			seen := svc.SeenAndRecord(ctx, "event-456")

			Convey("Then it should have been seen before", func() {
				So(seen, ShouldBeTrue)
			})
		})

		Convey("When unrecording a seen event ID", func() {
			svc.SeenAndRecord(ctx, "event-789")
			svc.Unrecord(ctx, "event-789")
			seen := svc.SeenAndRecord(ctx, "event-789")

			Convey("Then the event can be recorded again", func() {
				So(seen, ShouldBeFalse)
			})
		})
	})
}

func TestService_Enqueue(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := app.New(app.WithWorkerCount(2), app.WithQueueSize(100))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := svc.Start(ctx)
		So(err, ShouldBeNil)
		defer svc.Stop()

		Convey("When enqueueing a valid shot event", func() {
			ev := model.ShotEvent{
				EventID:  "event-123",
				GameID:   "game-1",
				PlayerID: "player-1",
				Quarter:  1,
				Pos:      court.Position{X: 0.5, Y: 0.3},
				Made:     true,
			}

			success := svc.Enqueue(ctx, ev)

			Convey("Then it should be enqueued successfully", func() {
				So(success, ShouldBeTrue)
			})
		})
	})
}

func TestService_GetStats(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := app.New()

		Convey("When getting stats before starting", func() {
			stats := svc.GetStats()

			Convey("Then it should return basic stats", func() {
				So(stats, ShouldNotBeNil)
				So(stats["started"], ShouldEqual, false)
				So(stats["defaultLevel"], ShouldEqual, "highschool")
			})
		})
	})
}
