package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/peerbench/internal/adapters/mq/worker"
	"github.com/okian/peerbench/internal/domain/benchmark"
	"github.com/okian/peerbench/internal/domain/job"
	"github.com/okian/peerbench/internal/domain/model"
	"github.com/okian/peerbench/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

type mockQueue struct {
	ch chan job.Task
}

func newMockQueue() *mockQueue { return &mockQueue{ch: make(chan job.Task, 10)} }

func (q *mockQueue) Dequeue(context.Context) <-chan job.Task { return q.ch }

func (q *mockQueue) Close() error {
	close(q.ch)
	return nil
}

type mockRunner struct {
	fail map[string]error
}

func (r *mockRunner) Run(req benchmark.Request) (model.Report, error) {
	if err, ok := r.fail[req.OrganizationID]; ok {
		return model.Report{}, err
	}
	return model.Report{ID: "report-" + req.OrganizationID, OrganizationID: req.OrganizationID}, nil
}

type mockStore struct {
	mu   sync.Mutex
	jobs map[string]*job.Job
	seen map[string][]job.Status
}

func newMockStore(ids ...string) *mockStore {
	s := &mockStore{jobs: map[string]*job.Job{}, seen: map[string][]job.Status{}}
	for _, id := range ids {
		s.jobs[id] = &job.Job{ID: id, Status: job.StatusQueued}
	}
	return s
}

func (s *mockStore) Update(_ context.Context, id string, fn func(*job.Job)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return errors.New("unknown job")
	}
	fn(j)
	s.seen[id] = append(s.seen[id], j.Status)
	return nil
}

func (s *mockStore) get(id string) job.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.jobs[id]
}

func waitTerminal(s *mockStore, id string) job.Job {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if j := s.get(id); j.Status.Terminal() {
			return j
		}
		time.Sleep(5 * time.Millisecond)
	}
	return s.get(id)
}

func TestWorker(t *testing.T) {
	convey.Convey("Given a worker with a queue, runner and store", t, func() {
		q := newMockQueue()
		store := newMockStore("job-ok", "job-bad")
		runner := &mockRunner{fail: map[string]error{
			"org-bad": &model.InsufficientCohortError{Have: 2, Need: 5},
		}}
		w := worker.NewInMemoryWorker(q, runner, store, worker.WithName("test"), worker.WithLogger(logger.Nop()))

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		convey.Convey("When a job succeeds", func() {
			q.ch <- job.Task{JobID: "job-ok", Request: benchmark.Request{OrganizationID: "org-ok"}}
			j := waitTerminal(store, "job-ok")

			convey.Convey("Then it moves through running to completed with a report", func() {
				convey.So(j.Status, convey.ShouldEqual, job.StatusCompleted)
				convey.So(j.Report, convey.ShouldNotBeNil)
				convey.So(j.Report.ID, convey.ShouldEqual, "report-org-ok")
				convey.So(j.StartedAt, convey.ShouldNotBeNil)
				convey.So(j.CompletedAt, convey.ShouldNotBeNil)
				convey.So(store.seen["job-ok"], convey.ShouldResemble, []job.Status{job.StatusRunning, job.StatusCompleted})
			})
		})

		convey.Convey("When a job fails", func() {
			q.ch <- job.Task{JobID: "job-bad", Request: benchmark.Request{OrganizationID: "org-bad"}}
			j := waitTerminal(store, "job-bad")

			convey.Convey("Then the failure kind is recorded without a report", func() {
				convey.So(j.Status, convey.ShouldEqual, job.StatusFailed)
				convey.So(j.Report, convey.ShouldBeNil)
				convey.So(j.ErrorKind, convey.ShouldEqual, model.KindInsufficientCohort)
				convey.So(j.Error, convey.ShouldContainSubstring, "2 peers matched")
			})
		})

		convey.Convey("When the worker is shut down", func() {
			err := w.Shutdown(context.Background())
			convey.So(err, convey.ShouldBeNil)
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool of workers", t, func() {
		q := newMockQueue()
		ids := make([]string, 0, 8)
		for i := 0; i < 8; i++ {
			ids = append(ids, fmt.Sprintf("job-%d", i))
		}
		store := newMockStore(ids...)
		p := worker.NewPool(3, q, &mockRunner{}, store, worker.WithLogger(logger.Nop()))
		convey.So(p.Size(), convey.ShouldEqual, 3)

		p.Start(context.Background())
		for i, id := range ids {
			q.ch <- job.Task{JobID: id, Request: benchmark.Request{OrganizationID: fmt.Sprintf("org-%d", i)}}
		}

		convey.Convey("Then every job completes and shutdown drains the queue", func() {
			for _, id := range ids {
				convey.So(waitTerminal(store, id).Status, convey.ShouldEqual, job.StatusCompleted)
			}
			convey.So(p.Shutdown(context.Background()), convey.ShouldBeNil)
		})
	})
}
