package repository_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	repository "github.com/user/swordfinder/internal/adapters/repository"
	"github.com/user/swordfinder/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func f(v float64) *float64 { return &v }
func s(v string) *string   { return &v }

func openStore(t *testing.T) *repository.SQLiteStore {
	t.Helper()
	store, err := repository.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func upsert(t *testing.T, store *repository.SQLiteStore, events ...*model.PitchEvent) {
	t.Helper()
	if _, err := store.UpsertPitchEvents(context.Background(), events); err != nil {
		t.Fatalf("upsert events: %v", err)
	}
}

func event(atBat int) *model.PitchEvent {
	return &model.PitchEvent{
		GameDate:        "2025-06-10",
		GamePK:          777001,
		AtBatNumber:     atBat,
		PitchNumber:     5,
		Inning:          4,
		Outcome:         "swinging_strike",
		AtBatEnd:        "strikeout",
		BatSpeed:        f(45.8),
		SwingPathTilt:   f(42.0),
		InterceptOffset: f(23.2),
		PitcherName:     "Doe, Jordan",
		BatterName:      "Roe, Casey",
		PitchType:       "SL",
	}
}

func TestPitchEventRoundTrip(t *testing.T) {
	Convey("Given an open store", t, func() {
		ctx := context.Background()
		store := openStore(t)

		Convey("When upserting events for a date", func() {
			written, err := store.UpsertPitchEvents(ctx, []*model.PitchEvent{event(1), event(2)})
			So(err, ShouldBeNil)
			So(written, ShouldEqual, 2)

			events, err := store.PitchEventsForDate(ctx, "2025-06-10")
			So(err, ShouldBeNil)
			So(events, ShouldHaveLength, 2)

			Convey("Then optional metrics survive the round trip", func() {
				So(events[0].BatSpeed, ShouldNotBeNil)
				So(*events[0].BatSpeed, ShouldEqual, 45.8)
			})

			Convey("And a missing metric stays missing", func() {
				p := event(3)
				p.BatSpeed = nil
				upsert(t, store, p)

				events, err := store.PitchEventsForDate(ctx, "2025-06-10")
				So(err, ShouldBeNil)
				for _, e := range events {
					if e.AtBatNumber == 3 {
						So(e.BatSpeed, ShouldBeNil)
					}
				}
			})

			Convey("And re-upserting the same key replaces, not duplicates", func() {
				p := event(1)
				p.PitchType = "FF"
				upsert(t, store, p)

				events, err := store.PitchEventsForDate(ctx, "2025-06-10")
				So(err, ShouldBeNil)
				So(events, ShouldHaveLength, 2)
			})

			Convey("And an unrelated date reads empty", func() {
				events, err := store.PitchEventsForDate(ctx, "2025-06-11")
				So(err, ShouldBeNil)
				So(events, ShouldBeEmpty)
			})
		})

		Convey("When backfilling a play id", func() {
			p := event(1)
			upsert(t, store, p)
			So(store.SetPlayID(ctx, p.Key(), "play-uuid-1"), ShouldBeNil)

			events, err := store.PitchEventsForDate(ctx, "2025-06-10")
			So(err, ShouldBeNil)
			So(events[0].PlayID, ShouldEqual, "play-uuid-1")
		})
	})
}

func TestResultSetRoundTrip(t *testing.T) {
	Convey("Given a store with pitch events", t, func() {
		ctx := context.Background()
		store := openStore(t)

		p := event(1)
		upsert(t, store, p)

		Convey("When no result set exists for the date", func() {
			_, err := store.ResultSet(ctx, "2025-06-10")
			So(err, ShouldWrap, repository.ErrNotFound)
		})

		Convey("When saving a completed set", func() {
			set := &model.QueryResultSet{
				Date: "2025-06-10",
				Swings: []model.ScoredSwing{{
					Pitch:          p,
					RawMetric:      0.6508,
					UniversalScore: 82.54,
					DailyScore:     100.0,
					Rank:           1,
				}},
				Completed:    true,
				TotalPitches: 240,
				ComputedAt:   time.Now().UTC(),
			}
			So(store.SaveResultSet(ctx, set), ShouldBeNil)

			loaded, err := store.ResultSet(ctx, "2025-06-10")
			So(err, ShouldBeNil)
			So(loaded.Completed, ShouldBeTrue)
			So(loaded.TotalPitches, ShouldEqual, 240)
			So(loaded.Swings, ShouldHaveLength, 1)
			So(loaded.Swings[0].Rank, ShouldEqual, 1)
			So(loaded.Swings[0].Pitch.PitcherName, ShouldEqual, "Doe, Jordan")

			Convey("And invalidation drops it", func() {
				So(store.InvalidateResultSet(ctx, "2025-06-10"), ShouldBeNil)

				_, err := store.ResultSet(ctx, "2025-06-10")
				So(err, ShouldWrap, repository.ErrNotFound)
			})
		})

		Convey("When saving an empty completed set", func() {
			set := &model.QueryResultSet{
				Date:       "2025-06-12",
				Completed:  true,
				ComputedAt: time.Now().UTC(),
			}
			So(store.SaveResultSet(ctx, set), ShouldBeNil)

			loaded, err := store.ResultSet(ctx, "2025-06-12")
			So(err, ShouldBeNil)
			So(loaded.Completed, ShouldBeTrue)
			So(loaded.Swings, ShouldBeEmpty)
		})
	})
}

func TestVideoAssetRoundTrip(t *testing.T) {
	Convey("Given an open store", t, func() {
		ctx := context.Background()
		store := openStore(t)

		Convey("When the identifier is unknown", func() {
			_, err := store.VideoAsset(ctx, "missing")
			So(err, ShouldWrap, repository.ErrNotFound)
		})

		Convey("When upserting an asset", func() {
			asset := &model.VideoAsset{
				Identifier: "play-uuid-1",
				PageURL:    "https://host/sporty-videos?playId=play-uuid-1",
				MediaURL:   "https://cdn/clip.mp4",
				LocalPath:  "static/videos/play-uuid-1.mp4",
				ByteSize:   1024,
				State:      model.VideoDownloaded,
			}
			So(store.UpsertVideoAsset(ctx, asset), ShouldBeNil)

			loaded, err := store.VideoAsset(ctx, "play-uuid-1")
			So(err, ShouldBeNil)
			So(loaded.State, ShouldEqual, model.VideoDownloaded)
			So(loaded.ByteSize, ShouldEqual, 1024)
		})
	})
}

func TestApplyPatch(t *testing.T) {
	Convey("Given a store with a partially populated event", t, func() {
		ctx := context.Background()
		store := openStore(t)

		p := event(1)
		p.PlateX = nil
		p.PlateZ = f(2.5)
		upsert(t, store, p)

		Convey("When applying a patch batch", func() {
			updated, err := store.ApplyPatch(ctx, []repository.PatchRecord{
				{
					Key:    p.Key(),
					PlateX: f(1.5),
					PlateZ: f(9.9), // should not overwrite the stored 2.5
					PlayID: s("play-uuid-1"),
				},
				{
					// Unknown key: fill-if-null never inserts.
					Key:    model.PitchKey{GamePK: 999999, AtBatNumber: 1, PitchNumber: 1},
					PlateX: f(0.1),
				},
			})
			So(err, ShouldBeNil)

			Convey("Then only the existing row counts as updated", func() {
				So(updated, ShouldEqual, 1)
			})

			Convey("And null columns fill while populated ones stay", func() {
				events, err := store.PitchEventsForDate(ctx, "2025-06-10")
				So(err, ShouldBeNil)
				So(events, ShouldHaveLength, 1)
				So(*events[0].PlateX, ShouldEqual, 1.5)
				So(*events[0].PlateZ, ShouldEqual, 2.5)
				So(events[0].PlayID, ShouldEqual, "play-uuid-1")
			})
		})
	})
}

func TestStats(t *testing.T) {
	Convey("Given a store with mixed content", t, func() {
		ctx := context.Background()
		store := openStore(t)

		upsert(t, store, event(1), event(2))
		So(store.UpsertVideoAsset(ctx, &model.VideoAsset{
			Identifier: "a", State: model.VideoDownloaded, ByteSize: 100,
		}), ShouldBeNil)
		So(store.UpsertVideoAsset(ctx, &model.VideoAsset{
			Identifier: "b", State: model.VideoFailed,
		}), ShouldBeNil)

		Convey("Then counts reflect the rows", func() {
			st, err := store.Stats(ctx)
			So(err, ShouldBeNil)
			So(st.PitchEvents, ShouldEqual, 2)
			So(st.VideosDownloaded, ShouldEqual, 1)
			So(st.VideoBytes, ShouldEqual, 100)
		})
	})
}
