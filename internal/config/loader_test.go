package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	config "github.com/user/swordfinder/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLoad(t *testing.T) {
	Convey("Given a clean environment", t, func() {
		// Convey re-runs this closure for every leaf, but t.Setenv only
		// restores values when the whole test ends, so clear any vars set
		// by a previously executed branch.
		for _, key := range []string{"SWORD_ADDR", "SWORD_TOP_N", "SWORD_MEDIA_DIR", "SWORD_CONFIG"} {
			t.Setenv(key, "")
			So(os.Unsetenv(key), ShouldBeNil)
		}
		ctx := context.Background()

		Convey("When loading with no overrides", func() {
			cfg, err := config.Load(ctx)
			So(err, ShouldBeNil)

			Convey("Then the defaults apply", func() {
				So(cfg.Addr, ShouldEqual, ":8080")
				So(cfg.TopN, ShouldEqual, 5)
				So(cfg.DownloadAttempts, ShouldEqual, 3)
				So(cfg.DownloadBackoff, ShouldEqual, 2*time.Second)
				So(cfg.JobBatchSize, ShouldEqual, 1000)
				So(cfg.PrewarmSchedule, ShouldBeEmpty)
			})
		})

		Convey("When environment variables override defaults", func() {
			t.Setenv("SWORD_ADDR", ":9090")
			t.Setenv("SWORD_TOP_N", "10")
			t.Setenv("SWORD_MEDIA_DIR", "/tmp/clips")

			cfg, err := config.Load(ctx)
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":9090")
			So(cfg.TopN, ShouldEqual, 10)
			So(cfg.MediaDir, ShouldEqual, "/tmp/clips")

			Convey("And untouched fields keep their defaults", func() {
				So(cfg.DatabasePath, ShouldEqual, "data/swordfinder.db")
			})
		})

		Convey("When a YAML file provides values and env overrides it", func() {
			path := filepath.Join(t.TempDir(), "config.yaml")
			So(os.WriteFile(path, []byte("addr: \":7070\"\ntop_n: 3\n"), 0o600), ShouldBeNil)
			t.Setenv("SWORD_CONFIG", path)
			t.Setenv("SWORD_TOP_N", "7")

			cfg, err := config.Load(ctx)
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":7070")
			So(cfg.TopN, ShouldEqual, 7)
		})

		Convey("When validation fails", func() {
			t.Setenv("SWORD_TOP_N", "0")

			_, err := config.Load(ctx)
			So(err, ShouldWrap, config.ErrInvalidConfig)
		})

		Convey("When the config file is missing", func() {
			t.Setenv("SWORD_CONFIG", "/nonexistent/config.yaml")

			_, err := config.Load(ctx)
			So(err, ShouldWrap, config.ErrLoadConfig)
		})
	})
}
