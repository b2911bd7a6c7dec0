package scoring_test

import (
	"testing"

	"github.com/user/swordfinder/internal/domain/model"
	scoring "github.com/user/swordfinder/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func f(v float64) *float64 { return &v }

func located(plateX, plateZ, zoneTop, zoneBottom float64) *model.PitchEvent {
	return &model.PitchEvent{
		PlateX:     f(plateX),
		PlateZ:     f(plateZ),
		ZoneTop:    f(zoneTop),
		ZoneBottom: f(zoneBottom),
	}
}

func TestZonePenalty(t *testing.T) {
	Convey("Given a pitch with full location data", t, func() {
		Convey("When the pitch is inside the zone", func() {
			p := located(0.2, 2.5, 3.4, 1.6)
			So(scoring.ZonePenalty(p), ShouldEqual, 1.0)
		})

		Convey("When the pitch sits exactly on the horizontal edge", func() {
			p := located(0.83, 2.5, 3.4, 1.6)
			So(scoring.ZonePenalty(p), ShouldEqual, 1.0)
		})

		Convey("When the pitch misses outside and high", func() {
			// 0.67 ft out plus 0.6 ft high is 15.24 inches of miss.
			p := located(1.5, 4.0, 3.4, 1.6)
			So(scoring.ZonePenalty(p), ShouldAlmostEqual, 1.8466, 0.0001)
		})

		Convey("When the pitch misses inside, mirrored", func() {
			p := located(-1.5, 4.0, 3.4, 1.6)
			So(scoring.ZonePenalty(p), ShouldAlmostEqual, 1.8466, 0.0001)
		})

		Convey("When the pitch misses low", func() {
			// 0.5 ft below the zone floor is 6 inches.
			p := located(0.0, 1.1, 3.4, 1.6)
			So(scoring.ZonePenalty(p), ShouldAlmostEqual, 1.0+6.0/18.0, 0.0001)
		})

		Convey("When the miss distance reaches 36 inches", func() {
			p := located(3.83, 2.5, 3.4, 1.6)
			So(scoring.ZonePenalty(p), ShouldEqual, 3.0)
		})

		Convey("When the miss distance exceeds 36 inches", func() {
			p := located(6.0, 9.0, 3.4, 1.6)
			So(scoring.ZonePenalty(p), ShouldEqual, 3.0)
		})
	})

	Convey("Given a pitch with missing location data", t, func() {
		Convey("Then each missing field yields the exact neutral penalty", func() {
			p := located(1.5, 4.0, 3.4, 1.6)
			p.PlateX = nil
			So(scoring.ZonePenalty(p), ShouldEqual, 1.0)

			q := located(1.5, 4.0, 3.4, 1.6)
			q.PlateZ = nil
			So(scoring.ZonePenalty(q), ShouldEqual, 1.0)

			r := located(1.5, 4.0, 3.4, 1.6)
			r.ZoneTop = nil
			So(scoring.ZonePenalty(r), ShouldEqual, 1.0)

			s := located(1.5, 4.0, 3.4, 1.6)
			s.ZoneBottom = nil
			So(scoring.ZonePenalty(s), ShouldEqual, 1.0)
		})

		Convey("And a nil event yields the neutral penalty", func() {
			So(scoring.ZonePenalty(nil), ShouldEqual, 1.0)
		})
	})
}
