package playbyplay_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	playbyplay "github.com/user/swordfinder/internal/playbyplay"
	"github.com/user/swordfinder/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

const feedDoc = `{
  "liveData": {
    "plays": {
      "allPlays": [
        {
          "about": {"inning": 3},
          "playEvents": [
            {"pitchNumber": 1, "playId": ""},
            {"pitchNumber": 2, "playId": "play-uuid-2"}
          ]
        },
        {
          "about": {"inning": 7},
          "playEvents": [
            {"pitchNumber": 4, "uuid": "fallback-uuid-4"}
          ]
        }
      ]
    }
  }
}`

func TestLookupPlayID(t *testing.T) {
	Convey("Given a live feed endpoint", t, func() {
		var requested string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requested = r.URL.Path
			fmt.Fprint(w, feedDoc)
		}))
		defer srv.Close()

		c := playbyplay.NewClient(srv.URL)

		Convey("When the inning and pitch number match", func() {
			id, err := c.LookupPlayID(context.Background(), 777001, 3, 2)

			So(err, ShouldBeNil)
			So(id, ShouldEqual, "play-uuid-2")
			So(requested, ShouldEqual, "/api/v1.1/game/777001/feed/live")
		})

		Convey("When only the uuid field carries the identifier", func() {
			id, err := c.LookupPlayID(context.Background(), 777001, 7, 4)

			So(err, ShouldBeNil)
			So(id, ShouldEqual, "fallback-uuid-4")
		})

		Convey("When no pitch matches", func() {
			_, err := c.LookupPlayID(context.Background(), 777001, 9, 1)
			So(err, ShouldWrap, playbyplay.ErrNotFound)
		})

		Convey("When the matching pitch has no identifier at all", func() {
			_, err := c.LookupPlayID(context.Background(), 777001, 3, 1)
			So(err, ShouldWrap, playbyplay.ErrNotFound)
		})
	})

	Convey("Given a feed endpoint returning an error status", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		c := playbyplay.NewClient(srv.URL)

		Convey("Then lookup surfaces the failure", func() {
			_, err := c.LookupPlayID(context.Background(), 777001, 3, 2)
			So(err, ShouldNotBeNil)
		})
	})
}
