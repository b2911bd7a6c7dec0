package scheduler_test

import (
	"context"
	"testing"
	"time"

	scheduler "github.com/user/swordfinder/internal/scheduler"
	"github.com/user/swordfinder/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestScheduler(t *testing.T) {
	Convey("Given a scheduler with a fixed clock", t, func() {
		now := time.Date(2025, 6, 11, 6, 0, 0, 0, time.UTC)
		s := scheduler.New(
			func(ctx context.Context, date string) error { return nil },
			scheduler.WithNow(func() time.Time { return now }),
		)

		Convey("Then yesterday is the previous calendar day", func() {
			So(s.Yesterday(), ShouldEqual, "2025-06-10")
		})

		Convey("When starting with an empty schedule", func() {
			So(s.Start(context.Background(), ""), ShouldBeNil)
		})

		Convey("When starting with a malformed expression", func() {
			So(s.Start(context.Background(), "not-a-cron"), ShouldNotBeNil)
		})

		Convey("When starting with a valid expression", func() {
			So(s.Start(context.Background(), "0 6 * * *"), ShouldBeNil)
			s.Stop()
		})
	})
}
