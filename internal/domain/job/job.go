// Package job describes asynchronous benchmarking jobs.
package job

import (
	"time"

	"github.com/google/uuid"
	"github.com/okian/peerbench/internal/domain/benchmark"
	"github.com/okian/peerbench/internal/domain/model"
)

// Status is the lifecycle state of a job.
type Status string

// Job statuses.
const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Terminal reports whether no further transitions happen.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

var jobNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("peerbench/job"))

// Job is the stored state of one asynchronous benchmarking request.
type Job struct {
	ID             string        `json:"id"`
	RequestID      string        `json:"request_id,omitempty"`
	OrganizationID string        `json:"organization_id"`
	Status         Status        `json:"status"`
	Report         *model.Report `json:"report,omitempty"`
	Error          string        `json:"error,omitempty"`
	ErrorKind      string        `json:"error_kind,omitempty"`
	SubmittedAt    time.Time     `json:"submitted_at"`
	StartedAt      *time.Time    `json:"started_at,omitempty"`
	CompletedAt    *time.Time    `json:"completed_at,omitempty"`

	// Duplicate marks a submission answered with an earlier job.
	Duplicate bool `json:"duplicate,omitempty"`
}

// Task is the unit of work carried by the queue.
type Task struct {
	JobID   string
	Request benchmark.Request
}

// ID returns the job identifier for a request. Requests carrying a request
// id always map to the same job; others get a random id.
func ID(requestID string) string {
	if requestID == "" {
		return uuid.NewString()
	}
	return uuid.NewSHA1(jobNamespace, []byte(requestID)).String()
}
