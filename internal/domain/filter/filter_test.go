package filter_test

import (
	"testing"

	filter "github.com/user/swordfinder/internal/domain/filter"
	"github.com/user/swordfinder/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func f(v float64) *float64 { return &v }

func candidate() *model.PitchEvent {
	return &model.PitchEvent{
		GameDate:        "2025-06-10",
		GamePK:          777001,
		AtBatNumber:     12,
		PitchNumber:     5,
		Inning:          4,
		Outcome:         "swinging_strike",
		AtBatEnd:        "strikeout",
		BatSpeed:        f(45.8),
		SwingPathTilt:   f(42.0),
		InterceptOffset: f(23.2),
	}
}

func TestIsCandidate(t *testing.T) {
	Convey("Given a pitch that passes every predicate", t, func() {
		p := candidate()
		So(filter.IsCandidate(p), ShouldBeTrue)

		Convey("When the outcome is not a swinging strike", func() {
			p.Outcome = "foul_tip"
			So(filter.IsCandidate(p), ShouldBeFalse)
		})

		Convey("When the outcome is a blocked swinging strike", func() {
			p.Outcome = "swinging_strike_blocked"
			So(filter.IsCandidate(p), ShouldBeTrue)
		})

		Convey("When bat speed sits exactly on the 60 mph bound", func() {
			p.BatSpeed = f(60.0)
			So(filter.IsCandidate(p), ShouldBeFalse)
		})

		Convey("When bat speed sits just under the bound", func() {
			p.BatSpeed = f(59.99)
			So(filter.IsCandidate(p), ShouldBeTrue)
		})

		Convey("When swing path tilt sits exactly on the 30 degree bound", func() {
			p.SwingPathTilt = f(30.0)
			So(filter.IsCandidate(p), ShouldBeFalse)
		})

		Convey("When swing path tilt sits just over the bound", func() {
			p.SwingPathTilt = f(30.01)
			So(filter.IsCandidate(p), ShouldBeTrue)
		})

		Convey("When intercept offset sits exactly on the 14 inch bound", func() {
			p.InterceptOffset = f(14.0)
			So(filter.IsCandidate(p), ShouldBeFalse)
		})

		Convey("When intercept offset sits just over the bound", func() {
			p.InterceptOffset = f(14.01)
			So(filter.IsCandidate(p), ShouldBeTrue)
		})

		Convey("When a swing metric is missing", func() {
			p.BatSpeed = nil
			So(filter.IsCandidate(p), ShouldBeFalse)

			q := candidate()
			q.SwingPathTilt = nil
			So(filter.IsCandidate(q), ShouldBeFalse)

			r := candidate()
			r.InterceptOffset = nil
			So(filter.IsCandidate(r), ShouldBeFalse)
		})

		Convey("When the event is nil", func() {
			So(filter.IsCandidate(nil), ShouldBeFalse)
		})
	})
}

func TestCandidates(t *testing.T) {
	Convey("Given an at-bat that ends in a strikeout", t, func() {
		midWhiff := candidate()
		midWhiff.PitchNumber = 3

		terminal := candidate()
		terminal.PitchNumber = 6

		Convey("When both a mid at-bat whiff and the terminal pitch qualify", func() {
			out := filter.Candidates([]*model.PitchEvent{midWhiff, terminal})

			Convey("Then only the terminal pitch is a candidate", func() {
				So(out, ShouldHaveLength, 1)
				So(out[0].PitchNumber, ShouldEqual, 6)
			})
		})

		Convey("When the at-bat did not end in a strikeout", func() {
			terminal.AtBatEnd = "field_out"
			out := filter.Candidates([]*model.PitchEvent{midWhiff, terminal})
			So(out, ShouldBeEmpty)
		})

		Convey("When the terminal pitch fails a predicate", func() {
			terminal.BatSpeed = f(71.2)
			out := filter.Candidates([]*model.PitchEvent{midWhiff, terminal})

			Convey("Then the earlier whiff does not take its place", func() {
				So(out, ShouldBeEmpty)
			})
		})

		Convey("When two games share an at-bat number", func() {
			other := candidate()
			other.GamePK = 777002
			out := filter.Candidates([]*model.PitchEvent{terminal, other})

			Convey("Then each game's at-bat is grouped separately", func() {
				So(out, ShouldHaveLength, 2)
			})
		})
	})
}
