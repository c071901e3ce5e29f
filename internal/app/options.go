package service

import (
	"time"

	repository "github.com/okian/peerbench/internal/adapters/repository"
	"github.com/okian/peerbench/internal/domain/benchmark"
	"github.com/okian/peerbench/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithEngine sets the benchmarking engine.
func WithEngine(e *benchmark.Engine) Option {
	return func(s *Service) {
		if e != nil {
			s.engine = e
		}
	}
}

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of queued jobs.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the request id cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithReportStoreSize bounds the number of retained jobs and their reports.
func WithReportStoreSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.reportStoreSize = size
		}
	}
}

// WithBatchConcurrency limits how many reports of a batch run at once.
func WithBatchConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.batchConcurrency = n
		}
	}
}

// WithPoolSource sets the candidate pool used when a request carries none.
func WithPoolSource(p repository.PoolSource) Option {
	return func(s *Service) {
		s.pool = p
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the clock used for job timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
