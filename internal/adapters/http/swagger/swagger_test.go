package swagger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/smartystreets/goconvey/convey"
	"go.yaml.in/yaml/v3"
)

func TestSwaggerHandler(t *testing.T) {
	convey.Convey("Given a swagger handler", t, func() {
		ctx := context.Background()
		mux := http.NewServeMux()

		convey.Convey("When registering the swagger handler", func() {
			Register(ctx, mux)

			convey.Convey("Then it should handle /openapi.yaml route", func() {
				req := httptest.NewRequest("GET", "/openapi.yaml", http.NoBody)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)

				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(w.Header().Get("Content-Type"), convey.ShouldEqual, "application/yaml; charset=utf-8")
				convey.So(w.Body.Len(), convey.ShouldBeGreaterThan, 0)
			})

			convey.Convey("And it should handle /api-docs route", func() {
				req := httptest.NewRequest("GET", "/api-docs", http.NoBody)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)

				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(w.Header().Get("Content-Type"), convey.ShouldEqual, "text/html; charset=utf-8")
				convey.So(w.Body.String(), convey.ShouldContainSubstring, `spec-url="/openapi.yaml"`)
			})

			convey.Convey("And it should only answer GET", func() {
				req := httptest.NewRequest("POST", "/openapi.yaml", http.NoBody)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)

				convey.So(w.Code, convey.ShouldEqual, http.StatusMethodNotAllowed)
			})
		})
	})

	convey.Convey("Given a nil mux", t, func() {
		convey.So(func() { Register(context.Background(), nil) }, convey.ShouldPanic)
	})
}

func TestOpenAPIDocument(t *testing.T) {
	convey.Convey("Given the embedded OpenAPI document", t, func() {
		var doc struct {
			OpenAPI string                    `yaml:"openapi"`
			Paths   map[string]map[string]any `yaml:"paths"`
		}
		convey.So(yaml.Unmarshal(OpenAPI, &doc), convey.ShouldBeNil)

		convey.Convey("Then every served route is documented", func() {
			convey.So(doc.OpenAPI, convey.ShouldStartWith, "3.")
			convey.So(doc.Paths["/api/clips"], convey.ShouldContainKey, "get")
			convey.So(doc.Paths["/api/clips/{clip_id}"], convey.ShouldContainKey, "get")
			convey.So(doc.Paths["/api/clips/{clip_id}/vote"], convey.ShouldContainKey, "post")
			convey.So(doc.Paths["/api/stats"], convey.ShouldContainKey, "get")
			convey.So(doc.Paths["/healthz"], convey.ShouldContainKey, "get")
		})
	})
}
