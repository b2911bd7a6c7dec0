package video_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	video "github.com/user/swordfinder/internal/video"
	"github.com/user/swordfinder/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

const playPage = `<html><body>
<div class="video-box">
  <video controls>
    <source src="https://cdn.example.com/clips/%s.mp4" type="video/mp4">
  </video>
</div>
</body></html>`

func fastPolicy() video.Policy {
	return video.NewPolicy(3, time.Millisecond)
}

func TestResolverPageURL(t *testing.T) {
	Convey("Given a resolver", t, func() {
		r := video.NewResolver("https://host.example.com")

		Convey("Then the variant form carries both query parameters", func() {
			So(r.PageURL("abc-123", "HOME"), ShouldEqual,
				"https://host.example.com/sporty-videos?playId=abc-123&videoType=HOME")
		})

		Convey("And the empty variant yields the variant-less form", func() {
			So(r.PageURL("abc-123", ""), ShouldEqual,
				"https://host.example.com/sporty-videos?playId=abc-123")
		})
	})
}

func TestResolvePage(t *testing.T) {
	Convey("Given a host where only the NETWORK variant exists", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("videoType") == "NETWORK" {
				w.WriteHeader(http.StatusOK)
				return
			}
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		r := video.NewResolver(srv.URL, video.WithResolverPolicy(fastPolicy()))

		Convey("When resolving the page", func() {
			page := r.ResolvePage(context.Background(), "abc-123")

			Convey("Then the first existing variant wins", func() {
				So(page, ShouldContainSubstring, "videoType=NETWORK")
			})
		})
	})

	Convey("Given a host where no variant exists", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		r := video.NewResolver(srv.URL, video.WithResolverPolicy(fastPolicy()))

		Convey("Then the variant-less form is the fallback", func() {
			page := r.ResolvePage(context.Background(), "abc-123")
			So(page, ShouldNotContainSubstring, "videoType")
			So(page, ShouldContainSubstring, "playId=abc-123")
		})
	})

	Convey("Given an unreachable host", t, func() {
		r := video.NewResolver("http://127.0.0.1:1", video.WithResolverPolicy(fastPolicy()))

		Convey("Then probing still returns the fallback instead of erroring", func() {
			page := r.ResolvePage(context.Background(), "abc-123")
			So(page, ShouldContainSubstring, "playId=abc-123")
		})
	})
}

func TestResolve(t *testing.T) {
	Convey("Given a host serving a playable page", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodHead {
				w.WriteHeader(http.StatusOK)
				return
			}
			fmt.Fprintf(w, playPage, r.URL.Query().Get("playId"))
		}))
		defer srv.Close()

		r := video.NewResolver(srv.URL, video.WithResolverPolicy(fastPolicy()))

		Convey("When resolving an identifier", func() {
			page, media, err := r.Resolve(context.Background(), "abc-123")

			So(err, ShouldBeNil)
			So(page, ShouldContainSubstring, "playId=abc-123")
			So(media, ShouldEqual, "https://cdn.example.com/clips/abc-123.mp4")
		})
	})

	Convey("Given a page without the expected video structure", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "<html><body><p>nothing here</p></body></html>")
		}))
		defer srv.Close()

		r := video.NewResolver(srv.URL, video.WithResolverPolicy(fastPolicy()))

		Convey("Then resolution reports no media", func() {
			_, _, err := r.Resolve(context.Background(), "abc-123")
			So(err, ShouldWrap, video.ErrNoMedia)
		})
	})
}
