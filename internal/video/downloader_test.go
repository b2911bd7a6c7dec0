package video_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/user/swordfinder/internal/domain/model"
	video "github.com/user/swordfinder/internal/video"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDownload(t *testing.T) {
	Convey("Given a host serving a clip", t, func() {
		var hits atomic.Int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			_, _ = w.Write([]byte("clip-bytes"))
		}))
		defer srv.Close()

		dir := t.TempDir()
		d := video.NewDownloader(dir, video.WithDownloaderPolicy(fastPolicy()))

		Convey("When downloading a new identifier", func() {
			asset, err := d.Download(context.Background(), "abc-123", srv.URL+"/clip.mp4")

			So(err, ShouldBeNil)
			So(asset.State, ShouldEqual, model.VideoDownloaded)
			So(asset.LocalPath, ShouldEqual, filepath.Join(dir, "abc-123.mp4"))
			So(asset.ByteSize, ShouldEqual, int64(len("clip-bytes")))

			data, readErr := os.ReadFile(asset.LocalPath)
			So(readErr, ShouldBeNil)
			So(string(data), ShouldEqual, "clip-bytes")

			Convey("And downloading it again touches no network", func() {
				before := hits.Load()
				again, err := d.Download(context.Background(), "abc-123", srv.URL+"/clip.mp4")

				So(err, ShouldBeNil)
				So(again.State, ShouldEqual, model.VideoDownloaded)
				So(again.ByteSize, ShouldEqual, asset.ByteSize)
				So(hits.Load(), ShouldEqual, before)
			})
		})

		Convey("When the identifier or media url is missing", func() {
			_, err := d.Download(context.Background(), "", srv.URL)
			So(err, ShouldWrap, video.ErrEmptyInput)

			_, err = d.Download(context.Background(), "abc-123", "")
			So(err, ShouldWrap, video.ErrEmptyInput)
		})
	})

	Convey("Given a host that always fails", t, func() {
		var hits atomic.Int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		dir := t.TempDir()
		d := video.NewDownloader(dir, video.WithDownloaderPolicy(fastPolicy()))

		Convey("When retries are exhausted", func() {
			asset, err := d.Download(context.Background(), "bad-999", srv.URL+"/clip.mp4")

			Convey("Then failure is a state, not an error", func() {
				So(err, ShouldBeNil)
				So(asset.State, ShouldEqual, model.VideoFailed)
			})

			Convey("And every attempt was made", func() {
				So(hits.Load(), ShouldEqual, 3)
			})

			Convey("And no partial file is left on disk", func() {
				_, statErr := os.Stat(filepath.Join(dir, "bad-999.mp4"))
				So(os.IsNotExist(statErr), ShouldBeTrue)
			})
		})
	})
}
