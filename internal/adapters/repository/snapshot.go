package repository

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/okian/peerbench/internal/domain/model"
	"github.com/okian/peerbench/pkg/logger"
	"github.com/okian/peerbench/pkg/metrics"
)

// Snapshot is an immutable copy of the candidate pool.
type Snapshot struct {
	Candidates []model.Candidate
	TakenAt    time.Time
}

// SnapshotPool caches the upstream pool. Readers always see a complete
// snapshot; a failed refresh keeps the previous one.
type SnapshotPool struct {
	source  PoolSource
	current atomic.Pointer[Snapshot]
	now     func() time.Time
	logger  logger.Logger

	refreshMu sync.Mutex
	schedMu   sync.Mutex
	scheduler *gocron.Scheduler
}

var _ PoolSource = (*SnapshotPool)(nil)

// NewSnapshotPool wraps a source. No data is loaded until the first refresh.
func NewSnapshotPool(source PoolSource, opts ...SnapshotOption) *SnapshotPool {
	p := &SnapshotPool{
		source: source,
		now:    time.Now,
		logger: logger.Get().Named("snapshot_pool"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Refresh loads a new snapshot from the source.
func (p *SnapshotPool) Refresh(ctx context.Context) error {
	p.refreshMu.Lock()
	defer p.refreshMu.Unlock()

	start := time.Now()
	candidates, err := p.source.Candidates(ctx)
	metrics.RecordPoolRefresh(metrics.OutcomeOf(err), time.Since(start))
	if err != nil {
		p.logger.Warn(ctx, "peer pool refresh failed", logger.Error(err))
		return fmt.Errorf("refresh peer pool: %w", err)
	}

	snap := &Snapshot{
		Candidates: append([]model.Candidate(nil), candidates...),
		TakenAt:    p.now().UTC(),
	}
	p.current.Store(snap)
	metrics.UpdatePoolSnapshot(len(snap.Candidates), snap.TakenAt)
	p.logger.Debug(ctx, "peer pool refreshed", logger.Int("candidates", len(snap.Candidates)))
	return nil
}

// Snapshot returns the current snapshot, or nil before the first refresh.
func (p *SnapshotPool) Snapshot() *Snapshot {
	return p.current.Load()
}

// Candidates implements PoolSource. The first call loads the snapshot.
func (p *SnapshotPool) Candidates(ctx context.Context) ([]model.Candidate, error) {
	snap := p.current.Load()
	if snap == nil {
		if err := p.Refresh(ctx); err != nil {
			return nil, err
		}
		snap = p.current.Load()
	}
	return append([]model.Candidate(nil), snap.Candidates...), nil
}

// StartRefresh refreshes every interval until ctx is done or Stop is called.
func (p *SnapshotPool) StartRefresh(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("refresh interval must be positive, got %s", interval)
	}
	p.schedMu.Lock()
	defer p.schedMu.Unlock()
	if p.scheduler != nil {
		return nil
	}

	s := gocron.NewScheduler(time.UTC)
	_, err := s.Every(interval).WaitForSchedule().Do(func() {
		_ = p.Refresh(ctx)
	})
	if err != nil {
		return fmt.Errorf("schedule peer pool refresh: %w", err)
	}
	s.StartAsync()
	p.scheduler = s
	p.logger.Info(ctx, "peer pool refresh scheduled", logger.Duration("interval", interval))

	go func() {
		<-ctx.Done()
		p.Stop()
	}()
	return nil
}

// Stop halts scheduled refreshes.
func (p *SnapshotPool) Stop() {
	p.schedMu.Lock()
	defer p.schedMu.Unlock()
	if p.scheduler != nil {
		p.scheduler.Stop()
		p.scheduler = nil
	}
}
