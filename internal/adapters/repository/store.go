// Package repository holds job state and peer-pool sources.
package repository

import (
	"container/list"
	"context"
	"fmt"
	"sync"

	"github.com/okian/peerbench/internal/domain/job"
	"github.com/okian/peerbench/pkg/metrics"
)

const defaultMaxJobs = 10000

// JobStore provides read/write access to asynchronous job state.
type JobStore interface {
	// Put stores a job, replacing any job with the same id.
	Put(ctx context.Context, j job.Job) error

	// Get returns a copy of the job. Returns ErrNotFound if the id is unknown.
	Get(ctx context.Context, id string) (job.Job, error)

	// Update applies fn to the stored job under the store lock.
	// Returns ErrNotFound if the id is unknown.
	Update(ctx context.Context, id string, fn func(*job.Job)) error

	// Delete forgets a job. Unknown ids are ignored.
	Delete(ctx context.Context, id string)

	// Count returns the number of retained jobs.
	Count(ctx context.Context) int
}

// MemoryJobStore is a bounded in-memory JobStore.
type MemoryJobStore struct {
	mu      sync.RWMutex
	jobs    map[string]*list.Element
	order   *list.List
	maxJobs int
}

var _ JobStore = (*MemoryJobStore)(nil)

// NewMemoryJobStore creates a job store.
func NewMemoryJobStore(opts ...Option) *MemoryJobStore {
	s := &MemoryJobStore{
		jobs:    make(map[string]*list.Element),
		order:   list.New(),
		maxJobs: defaultMaxJobs,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Put implements JobStore.
func (s *MemoryJobStore) Put(_ context.Context, j job.Job) error {
	if j.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidJob)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.jobs[j.ID]; ok {
		stored := j
		el.Value = &stored
		return nil
	}
	stored := j
	s.jobs[j.ID] = s.order.PushBack(&stored)
	for s.maxJobs > 0 && s.order.Len() > s.maxJobs {
		oldest := s.order.Front()
		s.order.Remove(oldest)
		delete(s.jobs, oldest.Value.(*job.Job).ID)
	}
	metrics.UpdateStoredJobs(s.order.Len())
	return nil
}

// Get implements JobStore.
func (s *MemoryJobStore) Get(_ context.Context, id string) (job.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	el, ok := s.jobs[id]
	if !ok {
		return job.Job{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return *el.Value.(*job.Job), nil
}

// Update implements JobStore.
func (s *MemoryJobStore) Update(_ context.Context, id string, fn func(*job.Job)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	el, ok := s.jobs[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	updated := *el.Value.(*job.Job)
	fn(&updated)
	updated.ID = id
	el.Value = &updated
	return nil
}

// Delete implements JobStore.
func (s *MemoryJobStore) Delete(_ context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if el, ok := s.jobs[id]; ok {
		s.order.Remove(el)
		delete(s.jobs, id)
		metrics.UpdateStoredJobs(s.order.Len())
	}
}

// Count implements JobStore.
func (s *MemoryJobStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.order.Len()
}
