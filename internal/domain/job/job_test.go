package job_test

import (
	"testing"

	"github.com/okian/peerbench/internal/domain/job"
	. "github.com/smartystreets/goconvey/convey"
)

func TestJobID(t *testing.T) {
	Convey("Given request ids", t, func() {
		So(job.ID("req-1"), ShouldEqual, job.ID("req-1"))
		So(job.ID("req-1"), ShouldNotEqual, job.ID("req-2"))
		So(job.ID(""), ShouldNotEqual, job.ID(""))
	})

	Convey("Given statuses", t, func() {
		So(job.StatusCompleted.Terminal(), ShouldBeTrue)
		So(job.StatusFailed.Terminal(), ShouldBeTrue)
		So(job.StatusQueued.Terminal(), ShouldBeFalse)
		So(job.StatusRunning.Terminal(), ShouldBeFalse)
	})
}
