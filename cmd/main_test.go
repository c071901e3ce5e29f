package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	repository "github.com/okian/peerbench/internal/adapters/repository"
	service "github.com/okian/peerbench/internal/app"
	"github.com/okian/peerbench/internal/config"
	"github.com/okian/peerbench/internal/domain/model"
	"github.com/okian/peerbench/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func writePoolFile(t *testing.T, n int) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("candidates:\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, `  - profile:
      organization_id: peer-%02d
      sector: education
      size_class: medium
      geography: US-OR
      program_types: [literacy]
    metrics:
      scores: {data_quality: %d, cost_efficiency: %d}
      data_quality: 90
`, i, 50+i*5, 50+i*5)
	}
	path := filepath.Join(t.TempDir(), "pool.yaml")
	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNewEngine(t *testing.T) {
	convey.Convey("Given the default configuration", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then the engine uses the embedded catalog", func() {
			engine, err := newEngine(cfg)
			convey.So(err, convey.ShouldBeNil)
			convey.So(engine.Catalog().Has("program_effectiveness"), convey.ShouldBeTrue)
		})

		convey.Convey("When a catalog file is configured", func() {
			path := filepath.Join(t.TempDir(), "catalog.yaml")
			convey.So(os.WriteFile(path, []byte("metrics:\n  - {key: wait_time, category: access, valid_range: {min: 0, max: 100}}\n"), 0o600), convey.ShouldBeNil)
			cfg.CatalogPath = path

			convey.Convey("Then it replaces the embedded catalog", func() {
				engine, err := newEngine(cfg)
				convey.So(err, convey.ShouldBeNil)
				convey.So(engine.Catalog().Keys(), convey.ShouldResemble, []string{"wait_time"})
			})
		})

		convey.Convey("When the catalog file is missing", func() {
			cfg.CatalogPath = "/non/existent/catalog.yaml"
			_, err := newEngine(cfg)
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestNewPoolSource(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given the default configuration", t, func() {
		cfg := config.New(ctx)

		convey.Convey("When no pool is configured", func() {
			pool, closeFn, err := newPoolSource(ctx, cfg, logger.Nop())

			convey.Convey("Then requests must carry their own candidates", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(pool, convey.ShouldBeNil)
				convey.So(closeFn, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When a pool file is configured", func() {
			cfg.PoolFile = writePoolFile(t, 6)
			pool, closeFn, err := newPoolSource(ctx, cfg, logger.Nop())
			convey.So(err, convey.ShouldBeNil)
			defer closeFn()

			convey.Convey("Then a loaded snapshot serves the candidates", func() {
				snapshots, ok := pool.(*repository.SnapshotPool)
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(snapshots.Snapshot(), convey.ShouldNotBeNil)
				cs, err := pool.Candidates(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(cs), convey.ShouldEqual, 6)
			})
		})

		convey.Convey("When the pool file is missing", func() {
			cfg.PoolFile = "/non/existent/pool.yaml"
			_, _, err := newPoolSource(ctx, cfg, logger.Nop())
			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("When the database url is malformed", func() {
			cfg.DatabaseURL = "postgres://%zz"
			cfg.PoolFile = writePoolFile(t, 6)
			_, _, err := newPoolSource(ctx, cfg, logger.Nop())
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestRouter(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given a router over a running service with a pool file", t, func() {
		cfg := config.New(ctx)
		cfg.PoolFile = writePoolFile(t, 8)
		pool, closeFn, err := newPoolSource(ctx, cfg, logger.Nop())
		convey.So(err, convey.ShouldBeNil)

		engine, err := newEngine(cfg)
		convey.So(err, convey.ShouldBeNil)
		svc := service.New(
			service.WithLogger(logger.Nop()),
			service.WithEngine(engine),
			service.WithPoolSource(pool),
			service.WithWorkerCount(1),
		)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		h := newRouter(ctx, svc)

		convey.Reset(func() {
			svc.Stop()
			closeFn()
		})

		convey.Convey("Then health and documentation routes are mounted", func() {
			for _, path := range []string{"/healthz", "/metrics", "/openapi.yaml", "/api-docs"} {
				w := httptest.NewRecorder()
				h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			}
		})

		convey.Convey("When a report request carries no candidates", func() {
			body, _ := json.Marshal(map[string]any{
				"organization_id": "org-1",
				"profile": model.OrganizationProfile{
					OrganizationID: "org-1",
					Sector:         "education",
					SizeClass:      model.SizeMedium,
					Geography:      "US-OR",
					ProgramTypes:   []string{"literacy"},
				},
				"metrics": model.OrganizationMetrics{
					Scores:      map[string]float64{"data_quality": 30, "cost_efficiency": 75},
					DataQuality: 80,
				},
			})
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/benchmarks", bytes.NewReader(body)))

			convey.Convey("Then the configured pool supplies the peers", func() {
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				var r model.Report
				convey.So(json.Unmarshal(w.Body.Bytes(), &r), convey.ShouldBeNil)
				convey.So(r.PeerGroup.OrganizationCount, convey.ShouldEqual, 8)
			})
		})

		convey.Convey("Then service gauges can be refreshed", func() {
			convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)
		})
	})
}

func TestServiceMetricsUpdater(t *testing.T) {
	convey.Convey("Given a cancelled context", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		svc := service.New(service.WithLogger(logger.Nop()))

		convey.Convey("Then the updater returns", func() {
			done := make(chan struct{})
			go func() {
				startServiceMetricsUpdater(ctx, svc)
				close(done)
			}()
			select {
			case <-done:
			case <-time.After(2 * time.Second):
				t.Fatal("updater did not stop")
			}
		})
	})
}
