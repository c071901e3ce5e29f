package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/peerbench/internal/domain/job"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMemoryJobStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given an empty job store", t, func() {
		s := NewMemoryJobStore()
		So(s.Count(ctx), ShouldEqual, 0)

		Convey("When a job is stored", func() {
			So(s.Put(ctx, job.Job{ID: "a", Status: job.StatusQueued}), ShouldBeNil)

			Convey("Then it can be read back", func() {
				j, err := s.Get(ctx, "a")
				So(err, ShouldBeNil)
				So(j.Status, ShouldEqual, job.StatusQueued)
				So(s.Count(ctx), ShouldEqual, 1)
			})

			Convey("Then updates are applied in place", func() {
				err := s.Update(ctx, "a", func(j *job.Job) {
					j.Status = job.StatusRunning
					j.ID = "renamed"
				})
				So(err, ShouldBeNil)
				j, _ := s.Get(ctx, "a")
				So(j.Status, ShouldEqual, job.StatusRunning)
				So(j.ID, ShouldEqual, "a")
			})

			Convey("Then a returned copy does not alias the store", func() {
				j, _ := s.Get(ctx, "a")
				j.Status = job.StatusFailed
				again, _ := s.Get(ctx, "a")
				So(again.Status, ShouldEqual, job.StatusQueued)
			})
		})

		Convey("When a job is deleted", func() {
			So(s.Put(ctx, job.Job{ID: "gone"}), ShouldBeNil)
			s.Delete(ctx, "gone")
			s.Delete(ctx, "never-existed")
			_, err := s.Get(ctx, "gone")
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
			So(s.Count(ctx), ShouldEqual, 0)
		})

		Convey("When an unknown id is requested", func() {
			_, err := s.Get(ctx, "missing")
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
			err = s.Update(ctx, "missing", func(*job.Job) {})
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
		})

		Convey("When a job has no id", func() {
			So(errors.Is(s.Put(ctx, job.Job{}), ErrInvalidJob), ShouldBeTrue)
		})
	})

	Convey("Given a bounded job store", t, func() {
		s := NewMemoryJobStore(WithMaxJobs(3))
		for i := 0; i < 5; i++ {
			So(s.Put(ctx, job.Job{ID: fmt.Sprintf("j%d", i)}), ShouldBeNil)
		}

		Convey("Then the oldest jobs are evicted", func() {
			So(s.Count(ctx), ShouldEqual, 3)
			_, err := s.Get(ctx, "j0")
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
			_, err = s.Get(ctx, "j4")
			So(err, ShouldBeNil)
		})

		Convey("Then replacing a job does not grow the store", func() {
			So(s.Put(ctx, job.Job{ID: "j4", Status: job.StatusCompleted}), ShouldBeNil)
			So(s.Count(ctx), ShouldEqual, 3)
			j, _ := s.Get(ctx, "j4")
			So(j.Status, ShouldEqual, job.StatusCompleted)
		})
	})

	Convey("Given concurrent writers", t, func() {
		s := NewMemoryJobStore(WithMaxJobs(0))
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				id := fmt.Sprintf("c%d", i)
				_ = s.Put(ctx, job.Job{ID: id})
				_ = s.Update(ctx, id, func(j *job.Job) { j.Status = job.StatusCompleted })
			}(i)
		}
		wg.Wait()
		So(s.Count(ctx), ShouldEqual, 50)
	})
}
