// Package service exposes the benchmarking engine to the HTTP API, both
// synchronously and as asynchronous jobs.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	jobqueue "github.com/okian/peerbench/internal/adapters/mq/queue"
	workerpool "github.com/okian/peerbench/internal/adapters/mq/worker"
	repository "github.com/okian/peerbench/internal/adapters/repository"
	"github.com/okian/peerbench/internal/domain/benchmark"
	"github.com/okian/peerbench/internal/domain/catalog"
	"github.com/okian/peerbench/internal/domain/dedupe"
	"github.com/okian/peerbench/internal/domain/insight"
	"github.com/okian/peerbench/internal/domain/job"
	"github.com/okian/peerbench/internal/domain/model"
	"github.com/okian/peerbench/pkg/logger"
	"github.com/okian/peerbench/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// Operation names used for metrics and logs.
const (
	OpFindPeerGroup  = "find_peer_group"
	OpCompare        = "compare"
	OpRank           = "rank"
	OpAnalyzeGaps    = "analyze_gaps"
	OpPrioritizeGaps = "prioritize_gaps"
	OpPlan           = "build_plan"
	OpCompose        = "compose_insights"
	OpReport         = "report"
	OpBatch          = "batch"
	OpSubmitJob      = "submit_job"
)

// Service implements the API dependencies for the benchmarking system.
type Service struct {
	mu sync.RWMutex

	// submitMu orders request id dedupe with the job store write.
	submitMu sync.Mutex

	// Core components
	engine  *benchmark.Engine
	pool    repository.PoolSource
	jobs    repository.JobStore
	deduper dedupe.Deduper
	queue   jobqueue.Queue
	workers *workerpool.Pool

	// Configuration
	workerCount      int
	queueSize        int
	dedupeSize       int
	reportStoreSize  int
	batchConcurrency int

	// State
	started bool
	cancel  context.CancelFunc

	now    func() time.Time
	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:      runtime.NumCPU(),
		queueSize:        1024,
		dedupeSize:       50000,
		reportStoreSize:  10000,
		batchConcurrency: runtime.NumCPU(),
		now:              time.Now,
		logger:           logger.Get().Named("service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.engine == nil {
		s.engine = benchmark.NewEngine(catalog.Default())
	}
	s.jobs = repository.NewMemoryJobStore(repository.WithMaxJobs(s.reportStoreSize))
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	return s
}

// Start creates the job queue and starts the worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.logger.Info(ctx, "starting benchmarking service...")

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.queue = jobqueue.NewInMemoryQueue(jobqueue.WithCapacity(s.queueSize))
	s.workers = workerpool.NewPool(s.workerCount, s.queue, reportRunner{s: s}, s.jobs,
		workerpool.WithLogger(s.logger),
		workerpool.WithClock(s.now),
	)
	s.workers.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "benchmarking service started",
		logger.Int("workers", s.workers.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("reportStoreSize", s.reportStoreSize),
	)
	return nil
}

// Stop drains queued jobs and stops the workers.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping benchmarking service...")

	if err := s.workers.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool did not drain", logger.Error(err))
	}
	s.cancel()

	s.started = false
	s.logger.Info(ctx, "benchmarking service stopped")
}

// Catalog returns the metric definitions in catalog order.
func (s *Service) Catalog() []model.MetricDefinition {
	return s.engine.Catalog().Metrics()
}

// Sectors returns the sectors the catalog accepts.
func (s *Service) Sectors() []string {
	return s.engine.Catalog().Sectors()
}

// FindPeerGroup selects the cohort. An empty pool falls back to the
// configured pool source.
func (s *Service) FindPeerGroup(ctx context.Context, organizationID string, profile model.OrganizationProfile, pool []model.Candidate, criteria *model.MatchCriteria) (group model.PeerGroup, err error) {
	defer s.observe(ctx, OpFindPeerGroup, time.Now(), &err)

	pool, err = s.candidates(ctx, pool)
	if err != nil {
		return model.PeerGroup{}, err
	}
	group, err = s.engine.FindPeerGroup(organizationID, profile, pool, criteria)
	if err != nil {
		return model.PeerGroup{}, err
	}
	metrics.ObserveCohortSize(group.OrganizationCount)
	return group, nil
}

// CompareToPeerGroup positions an organization's scores within a cohort.
func (s *Service) CompareToPeerGroup(ctx context.Context, scores model.OrganizationMetrics, group model.PeerGroup, filter []string) (out []model.MetricComparison, err error) {
	defer s.observe(ctx, OpCompare, time.Now(), &err)

	out, err = s.engine.Compare(scores, group, filter)
	if err != nil {
		return nil, err
	}
	for _, c := range out {
		metrics.RecordComparisonTier(c.SignificanceTier)
	}
	return out, nil
}

// Rank derives category and overall standings.
func (s *Service) Rank(ctx context.Context, comparisons []model.MetricComparison, previous []model.Ranking) []model.Ranking {
	defer s.observe(ctx, OpRank, time.Now(), nil)
	return s.engine.Rank(comparisons, previous)
}

// AnalyzeGaps extracts underperforming metrics.
func (s *Service) AnalyzeGaps(ctx context.Context, comparisons []model.MetricComparison) []model.PerformanceGap {
	defer s.observe(ctx, OpAnalyzeGaps, time.Now(), nil)
	gaps := s.engine.AnalyzeGaps(comparisons)
	for _, g := range gaps {
		metrics.RecordGapUrgency(g.Urgency)
	}
	return gaps
}

// PrioritizeGaps orders gaps for remediation.
func (s *Service) PrioritizeGaps(ctx context.Context, gaps []model.PerformanceGap) []model.GapPriority {
	defer s.observe(ctx, OpPrioritizeGaps, time.Now(), nil)
	return s.engine.Prioritize(gaps)
}

// BuildImprovementPlan builds the phased plan.
func (s *Service) BuildImprovementPlan(ctx context.Context, priorities []model.GapPriority) model.ImprovementPlan {
	defer s.observe(ctx, OpPlan, time.Now(), nil)
	return s.engine.Plan(priorities)
}

// ComposeInsights builds insights and recommendations. Peer examples are
// included only when the group is given.
func (s *Service) ComposeInsights(ctx context.Context, comparisons []model.MetricComparison, rankings []model.Ranking, group *model.PeerGroup) model.Composition {
	defer s.observe(ctx, OpCompose, time.Now(), nil)
	var opts []insight.Option
	if group != nil {
		opts = append(opts, insight.WithPeerGroup(*group))
	}
	return s.engine.Compose(comparisons, rankings, opts...)
}

// BuildReport runs the full pipeline for one request.
func (s *Service) BuildReport(ctx context.Context, req benchmark.Request) (report model.Report, err error) { //nolint:gocritic // hugeParam: request is a value
	defer s.observe(ctx, OpReport, time.Now(), &err)

	req.Candidates, err = s.candidates(ctx, req.Candidates)
	if err != nil {
		return model.Report{}, err
	}
	report, err = s.engine.Run(req)
	if err != nil {
		return model.Report{}, err
	}
	metrics.ObserveCohortSize(report.PeerGroup.OrganizationCount)
	for _, c := range report.Comparisons {
		metrics.RecordComparisonTier(c.SignificanceTier)
	}
	for _, g := range report.Gaps {
		metrics.RecordGapUrgency(g.Urgency)
	}
	return report, nil
}

// BuildReports runs requests in parallel. Reports keep request order and any
// failure fails the whole batch.
func (s *Service) BuildReports(ctx context.Context, reqs []benchmark.Request) (out []model.Report, err error) {
	defer s.observe(ctx, OpBatch, time.Now(), &err)

	if len(reqs) == 0 {
		return nil, ErrEmptyBatch
	}
	reports := make([]model.Report, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.batchConcurrency)
	for i := range reqs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := s.BuildReport(gctx, reqs[i])
			if err != nil {
				return fmt.Errorf("request %d: %w", i, err)
			}
			reports[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// SubmitJob queues a request for asynchronous processing. A request id that
// was already submitted returns the existing job instead of queuing again.
func (s *Service) SubmitJob(ctx context.Context, req benchmark.Request) (j job.Job, err error) { //nolint:gocritic // hugeParam: request is a value
	defer s.observe(ctx, OpSubmitJob, time.Now(), &err)

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return job.Job{}, ErrNotStarted
	}

	s.submitMu.Lock()
	defer s.submitMu.Unlock()

	id := job.ID(req.RequestID)
	if req.RequestID != "" && s.deduper.SeenAndRecord(ctx, id) {
		existing, err := s.jobs.Get(ctx, id)
		if err == nil {
			metrics.RecordJobDuplicate()
			existing.Duplicate = true
			s.logger.Debug(ctx, "duplicate job submission", logger.String("job_id", id), logger.String("request_id", req.RequestID))
			return existing, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return job.Job{}, err
		}
		// evicted from the store; run it again
	}

	j = job.Job{
		ID:             id,
		RequestID:      req.RequestID,
		OrganizationID: req.OrganizationID,
		Status:         job.StatusQueued,
		SubmittedAt:    s.now().UTC(),
	}
	if err := s.jobs.Put(ctx, j); err != nil {
		s.forget(ctx, req.RequestID, id)
		return job.Job{}, err
	}
	if err := s.queue.Enqueue(ctx, job.Task{JobID: id, Request: req}); err != nil {
		s.jobs.Delete(ctx, id)
		s.forget(ctx, req.RequestID, id)
		if errors.Is(err, jobqueue.ErrFull) {
			return job.Job{}, ErrBackpressure
		}
		return job.Job{}, fmt.Errorf("enqueue job: %w", err)
	}
	metrics.RecordJob(string(job.StatusQueued))
	s.logger.Debug(ctx, "job queued", logger.String("job_id", id), logger.String("organization_id", req.OrganizationID))
	return j, nil
}

// Job returns the current state of a job.
func (s *Service) Job(ctx context.Context, id string) (job.Job, error) {
	return s.jobs.Get(ctx, id)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":          s.started,
		"workerCount":      s.workerCount,
		"queueSize":        s.queueSize,
		"dedupeSize":       s.dedupeSize,
		"reportStoreSize":  s.reportStoreSize,
		"batchConcurrency": s.batchConcurrency,
		"catalogMetrics":   len(s.engine.Catalog().Keys()),
		"storedJobs":       s.jobs.Count(ctx),
		"seenRequests":     s.deduper.Size(),
	}
	if s.started {
		queueLen := s.queue.Len(ctx)
		stats["queueLength"] = queueLen
		metrics.UpdateQueueSize(queueLen)
	}
	if sp, ok := s.pool.(*repository.SnapshotPool); ok {
		if snap := sp.Snapshot(); snap != nil {
			stats["poolSize"] = len(snap.Candidates)
			stats["poolTakenAt"] = snap.TakenAt
		}
	}
	return stats
}

func (s *Service) candidates(ctx context.Context, pool []model.Candidate) ([]model.Candidate, error) {
	if len(pool) > 0 {
		return pool, nil
	}
	if s.pool == nil {
		return nil, nil
	}
	out, err := s.pool.Candidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoPool, err)
	}
	return out, nil
}

func (s *Service) forget(ctx context.Context, requestID, id string) {
	if requestID != "" {
		s.deduper.Unrecord(ctx, id)
	}
}

func (s *Service) observe(ctx context.Context, op string, start time.Time, errp *error) {
	var err error
	if errp != nil {
		err = *errp
	}
	metrics.RecordOperation(op, metrics.OutcomeOf(err), time.Since(start))
	if err == nil {
		return
	}
	metrics.RecordError(model.Kind(err))
	s.logger.Debug(ctx, "operation failed", logger.String("operation", op), logger.Error(err))
}

// reportRunner lets workers run jobs through the service pipeline.
type reportRunner struct {
	s *Service
}

func (r reportRunner) Run(req benchmark.Request) (model.Report, error) { //nolint:gocritic // hugeParam: request is a value
	return r.s.BuildReport(context.Background(), req)
}
