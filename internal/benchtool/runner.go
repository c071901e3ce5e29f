package benchtool

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/okian/peerbench/internal/domain/benchmark"
	"github.com/okian/peerbench/internal/domain/catalog"
	"github.com/okian/peerbench/internal/domain/job"
	"github.com/okian/peerbench/internal/domain/model"
	"github.com/okian/peerbench/pkg/logger"
)

const percentageMultiplier = 100

// Run submits cfg.Requests synthetic jobs and waits for each to finish.
// Rejected and failed jobs are counted, not returned as errors.
func Run(ctx context.Context, cfg *Config, c *catalog.Catalog, log logger.Logger) (*Stats, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	stats := &Stats{StartTime: time.Now()}

	log.Info(ctx, "starting peerbench load test",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("requests", cfg.Requests),
		logger.Int("poolSize", cfg.PoolSize),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout))

	client := NewClient(cfg.BaseURL, cfg.Timeout)
	if err := client.Health(ctx); err != nil {
		return nil, err
	}

	// the generator is not safe for concurrent use
	gen := NewGenerator(c, "", cfg.Seed)
	requests := make([]benchmark.Request, cfg.Requests)
	for i := range requests {
		requests[i] = gen.Request(fmt.Sprintf("bench-%d-%d", cfg.Seed, i), cfg.PoolSize)
	}

	var submitted, duplicates, rejected, completed, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i := range requests {
		g.Go(func() error {
			j, err := client.SubmitJob(gctx, requests[i])
			switch {
			case errors.Is(err, ErrBackpressure):
				rejected.Add(1)
				return nil
			case err != nil:
				return fmt.Errorf("submit %s: %w", requests[i].RequestID, err)
			}
			submitted.Add(1)
			if j.Duplicate {
				// an earlier run with the same seed already took this request id
				duplicates.Add(1)
			}

			done, err := client.Wait(gctx, j.ID, cfg.PollInterval)
			if err != nil {
				return fmt.Errorf("wait %s: %w", j.ID, err)
			}
			if done.Status == job.StatusCompleted {
				completed.Add(1)
			} else {
				failed.Add(1)
			}
			if cfg.Verbose {
				log.Info(gctx, "job finished",
					logger.String("job_id", done.ID),
					logger.String("status", string(done.Status)),
					logger.String("error_kind", done.ErrorKind))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats.Submitted = int(submitted.Load())
	stats.Duplicates = int(duplicates.Load())
	stats.Rejected = int(rejected.Load())
	stats.Completed = int(completed.Load())
	stats.Failed = int(failed.Load())
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(ctx, log, stats)
	return stats, nil
}

// LocalReport decodes a YAML or JSON benchmark request from r and runs it
// through engine without a server.
func LocalReport(r io.Reader, engine *benchmark.Engine) (model.Report, error) {
	var req benchmark.Request
	if err := yaml.NewDecoder(r).Decode(&req); err != nil {
		return model.Report{}, fmt.Errorf("%w: decode request: %w", ErrInvalidConfig, err)
	}
	return engine.Run(req)
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var successRate, jobsPerSecond float64
	if stats.Submitted > 0 {
		successRate = float64(stats.Completed) / float64(stats.Submitted) * percentageMultiplier
	}
	if stats.Duration > 0 {
		jobsPerSecond = float64(stats.Submitted) / stats.Duration.Seconds()
	}
	log.Info(ctx, "final statistics",
		logger.Int("submitted", stats.Submitted),
		logger.Int("duplicates", stats.Duplicates),
		logger.Int("rejected", stats.Rejected),
		logger.Int("completed", stats.Completed),
		logger.Int("failed", stats.Failed),
		logger.Duration("duration", stats.Duration),
		logger.Float64("successRate", successRate),
		logger.Float64("jobsPerSecond", jobsPerSecond))
}
