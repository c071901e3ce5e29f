package swagger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/smartystreets/goconvey/convey"
	"gopkg.in/yaml.v3"
)

func TestSwaggerHandler(t *testing.T) {
	convey.Convey("Given a router with the API document routes", t, func() {
		r := chi.NewRouter()
		Register(context.Background(), r)

		convey.Convey("Then /openapi.yaml serves a parseable document", func() {
			req := httptest.NewRequest(http.MethodGet, "/openapi.yaml", http.NoBody)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Header().Get("Content-Type"), convey.ShouldEqual, "application/yaml; charset=utf-8")

			var doc struct {
				OpenAPI string         `yaml:"openapi"`
				Paths   map[string]any `yaml:"paths"`
			}
			convey.So(yaml.Unmarshal(w.Body.Bytes(), &doc), convey.ShouldBeNil)
			convey.So(doc.OpenAPI, convey.ShouldStartWith, "3.")
			convey.So(doc.Paths, convey.ShouldContainKey, "/v1/benchmarks")
			convey.So(doc.Paths, convey.ShouldContainKey, "/v1/benchmarks/jobs/{id}")
		})

		convey.Convey("Then /api-docs serves the viewer", func() {
			req := httptest.NewRequest(http.MethodGet, "/api-docs", http.NoBody)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Body.String(), convey.ShouldContainSubstring, `spec-url="/openapi.yaml"`)
		})
	})
}
