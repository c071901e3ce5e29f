package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/okian/peerbench/internal/adapters/http/api"
	"github.com/okian/peerbench/internal/adapters/http/swagger"
	repository "github.com/okian/peerbench/internal/adapters/repository"
	service "github.com/okian/peerbench/internal/app"
	"github.com/okian/peerbench/internal/config"
	"github.com/okian/peerbench/internal/domain/benchmark"
	"github.com/okian/peerbench/internal/domain/catalog"
	"github.com/okian/peerbench/internal/domain/peer"
	"github.com/okian/peerbench/pkg/logger"
	"github.com/okian/peerbench/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout            = 10 * time.Second
	writeTimeout           = 30 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	shutdownTimeout        = 30 * time.Second
	serviceMetricsInterval = 5 * time.Second
)

func main() {
	if err := run(); err != nil {
		// the logger may not be configured yet
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func run() error {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithLevel(cfg.LogLevel)); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()
	log := logger.Get()

	engine, err := newEngine(cfg)
	if err != nil {
		return err
	}

	pool, closePool, err := newPoolSource(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closePool()

	opts := []service.Option{
		service.WithLogger(log.Named("service")),
		service.WithEngine(engine),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithQueueSize(cfg.QueueSize),
		service.WithDedupeSize(cfg.DedupeSize),
		service.WithReportStoreSize(cfg.ReportStoreSize),
		service.WithBatchConcurrency(cfg.BatchConcurrency),
	}
	if pool != nil {
		opts = append(opts, service.WithPoolSource(pool))
	}
	svc := service.New(opts...)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}
	defer svc.Stop()

	go startServiceMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newRouter(ctx, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
	return nil
}

// newEngine builds the benchmarking engine from configuration.
func newEngine(cfg *config.Config) (*benchmark.Engine, error) {
	cat := catalog.Default()
	if cfg.CatalogPath != "" {
		loaded, err := catalog.LoadFile(cfg.CatalogPath)
		if err != nil {
			return nil, err
		}
		cat = loaded
	}
	return benchmark.NewEngine(cat,
		benchmark.WithPeerOptions(
			peer.WithWeights(cfg.MatcherWeights()),
			peer.WithMinPeers(cfg.MinCohortSize),
			peer.WithMaxPeers(cfg.MaxPeers),
			peer.WithBudgetTolerance(cfg.BudgetTolerance),
		),
		benchmark.WithPriorityWeights(cfg.PriorityWeights()),
		benchmark.WithProjections(cfg.Projections()),
		benchmark.WithHeuristics(cfg.Heuristics()),
	), nil
}

// newPoolSource picks the peer pool backing requests without candidates.
// PostgreSQL wins over a pool file. The returned source is nil when neither
// is configured.
func newPoolSource(ctx context.Context, cfg *config.Config, log logger.Logger) (repository.PoolSource, func(), error) {
	var (
		source  repository.PoolSource
		closeFn = func() {}
	)
	switch {
	case cfg.DatabaseURL != "":
		pg, err := repository.ConnectPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		source, closeFn = pg, pg.Close
	case cfg.PoolFile != "":
		static, err := repository.LoadStaticPool(cfg.PoolFile)
		if err != nil {
			return nil, nil, err
		}
		source = static
	default:
		return nil, closeFn, nil
	}

	snapshots := repository.NewSnapshotPool(source, repository.WithSnapshotLogger(log.Named("pool")))
	if err := snapshots.Refresh(ctx); err != nil {
		closeFn()
		return nil, nil, err
	}
	if interval := cfg.PoolRefreshInterval(); interval > 0 {
		if err := snapshots.StartRefresh(ctx, interval); err != nil {
			closeFn()
			return nil, nil, err
		}
	}
	return snapshots, func() {
		snapshots.Stop()
		closeFn()
	}, nil
}

// newRouter mounts the API and the API documentation.
func newRouter(ctx context.Context, svc *service.Service) http.Handler {
	r := chi.NewRouter()
	api.NewServer(svc).Register(ctx, r)
	swagger.Register(ctx, r)
	return r
}

// startServiceMetricsUpdater refreshes service gauges until ctx is done.
func startServiceMetricsUpdater(ctx context.Context, svc *service.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

// updateServiceMetrics pushes the service stats into gauges.
func updateServiceMetrics(svc *service.Service) {
	stats := svc.GetStats()
	if workerCount, ok := stats["workerCount"].(int); ok {
		metrics.UpdateWorkerCount(workerCount)
	}
	if storedJobs, ok := stats["storedJobs"].(int); ok {
		metrics.UpdateStoredJobs(storedJobs)
	}
}
