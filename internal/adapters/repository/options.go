package repository

import (
	"time"

	"github.com/okian/peerbench/pkg/logger"
)

// Option applies a configuration option to the MemoryJobStore.
type Option func(*MemoryJobStore)

// WithMaxJobs bounds the number of retained jobs; the oldest are evicted first.
// Values <= 0 keep every job.
func WithMaxJobs(n int) Option {
	return func(s *MemoryJobStore) {
		s.maxJobs = n
	}
}

// SnapshotOption applies a configuration option to the SnapshotPool.
type SnapshotOption func(*SnapshotPool)

// WithSnapshotLogger sets the logger used for refresh reporting.
func WithSnapshotLogger(l logger.Logger) SnapshotOption {
	return func(p *SnapshotPool) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithSnapshotClock overrides the clock that stamps snapshots.
func WithSnapshotClock(now func() time.Time) SnapshotOption {
	return func(p *SnapshotPool) {
		if now != nil {
			p.now = now
		}
	}
}
