package site

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	. "github.com/smartystreets/goconvey/convey"
)

func get(h http.Handler, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func TestSiteHandler(t *testing.T) {
	Convey("Given a mux with the site registered", t, func() {
		mux := http.NewServeMux()
		Register(context.Background(), mux)

		Convey("Then / returns the banner", func() {
			w := get(mux, http.MethodGet, "/")
			So(w.Code, ShouldEqual, http.StatusOK)
			var body map[string]string
			So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
			So(body["message"], ShouldEqual, "Podcast Clip Platform API")
		})

		Convey("Then embedded assets are served", func() {
			w := get(mux, http.MethodGet, "/app.js")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "/api/clips")
		})

		Convey("Then assets are also reachable under /static/", func() {
			w := get(mux, http.MethodGet, "/static/app.js")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("Then unknown frontend paths fall back to index.html", func() {
			w := get(mux, http.MethodGet, "/clips/some-deep-link")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldContainSubstring, "text/html")
			So(w.Body.String(), ShouldContainSubstring, "<title>Podcast Clips</title>")
		})

		Convey("Then unknown API paths are 404", func() {
			for _, p := range []string{"/api/nope", "/api/clips/x/y/z", "/api"} {
				w := get(mux, http.MethodGet, p)
				So(w.Code, ShouldEqual, http.StatusNotFound)
			}
		})

		Convey("Then writes to frontend paths are rejected", func() {
			w := get(mux, http.MethodPost, "/whatever")
			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestRootHandlerWithoutIndex(t *testing.T) {
	Convey("Given a file system without index.html", t, func() {
		h := NewRootHandler(fstest.MapFS{"app.js": {Data: []byte("x")}})

		Convey("Then the fallback is 404", func() {
			w := get(http.HandlerFunc(h.HandleFrontend), http.MethodGet, "/missing")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Then existing files are still served", func() {
			w := get(http.HandlerFunc(h.HandleFrontend), http.MethodGet, "/app.js")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldEqual, "x")
		})
	})
}

func TestSiteHandlerWithNilMux(t *testing.T) {
	Convey("Given a nil mux", t, func() {
		So(func() { Register(context.Background(), nil) }, ShouldPanic)
	})
}
