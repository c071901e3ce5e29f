// Package swagger serves the OpenAPI document and a ReDoc viewer.
package swagger

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Register attaches the API document routes to r.
//
//	GET /openapi.yaml -> embedded OpenAPI document
//	GET /api-docs     -> ReDoc HTML
func Register(_ context.Context, r chi.Router) {
	if r == nil {
		panic("router is nil")
	}
	r.Get("/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
		_, _ = w.Write(OpenAPI)
	})
	r.Get("/api-docs", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(indexHTML))
	})
}

const indexHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8">
    <title>peerbench API</title>
    <style>body{margin:0;padding:0}</style>
  </head>
  <body>
    <redoc spec-url="/openapi.yaml"></redoc>
    <script src="https://cdn.redoc.ly/redoc/latest/bundles/redoc.standalone.js"></script>
  </body>
</html>`
