package video

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestPolicyRetry(t *testing.T) {
	Convey("Given a policy with stubbed sleeps", t, func() {
		var slept []time.Duration
		p := NewPolicy(3, 2*time.Second)
		p.sleep = func(ctx context.Context, d time.Duration) error {
			slept = append(slept, d)
			return nil
		}

		Convey("When the call succeeds on the first attempt", func() {
			calls := 0
			err := p.Retry(context.Background(), func() error {
				calls++
				return nil
			})

			So(err, ShouldBeNil)
			So(calls, ShouldEqual, 1)
			So(slept, ShouldBeEmpty)
		})

		Convey("When the call succeeds on the final attempt", func() {
			calls := 0
			err := p.Retry(context.Background(), func() error {
				calls++
				if calls < 3 {
					return errors.New("transient")
				}
				return nil
			})

			So(err, ShouldBeNil)
			So(calls, ShouldEqual, 3)

			Convey("Then the fixed delay was waited between attempts only", func() {
				So(slept, ShouldResemble, []time.Duration{2 * time.Second, 2 * time.Second})
			})
		})

		Convey("When every attempt fails", func() {
			boom := errors.New("boom")
			calls := 0
			err := p.Retry(context.Background(), func() error {
				calls++
				return boom
			})

			Convey("Then the last error surfaces after exactly max attempts", func() {
				So(err, ShouldEqual, boom)
				So(calls, ShouldEqual, 3)
				So(slept, ShouldHaveLength, 2)
			})
		})

		Convey("When the context is cancelled during the wait", func() {
			p.sleep = func(ctx context.Context, d time.Duration) error {
				return context.Canceled
			}
			calls := 0
			err := p.Retry(context.Background(), func() error {
				calls++
				return errors.New("transient")
			})

			So(err, ShouldEqual, context.Canceled)
			So(calls, ShouldEqual, 1)
		})
	})

	Convey("Given non-positive constructor arguments", t, func() {
		p := NewPolicy(0, 0)

		Convey("Then the defaults apply", func() {
			So(p.MaxAttempts(), ShouldEqual, 3)
			So(p.delay, ShouldEqual, 2*time.Second)
		})
	})
}
