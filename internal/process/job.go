// internal/process/job.go
package process

import "time"

// JobStatus represents where a print job stands in the release pipeline.
type JobStatus string

const (
	JobStatusPending  JobStatus = "pending"
	JobStatusApproved JobStatus = "approved"
	JobStatusDenied   JobStatus = "denied"
	JobStatusReleased JobStatus = "released"
	JobStatusFailed   JobStatus = "failed"
)

// Job captures the minimal metadata tracked for one invocation for auditing.
type Job struct {
	ID        string
	RequestID string
	Status    JobStatus
	Error     string
	StartedAt time.Time
}

func NewJob(id, requestID string) *Job {
	return &Job{
		ID:        id,
		RequestID: requestID,
		Status:    JobStatusPending,
		StartedAt: time.Now(),
	}
}

func MarkApproved(j *Job) { j.Status = JobStatusApproved }
func MarkReleased(j *Job) { j.Status = JobStatusReleased }
func MarkDenied(j *Job, err error) {
	j.Status = JobStatusDenied
	if err != nil {
		j.Error = err.Error()
	}
}
func MarkFailed(j *Job, err error) {
	j.Status = JobStatusFailed
	if err != nil {
		j.Error = err.Error()
	}
}

// Elapsed returns the time spent on the job so far.
func (j *Job) Elapsed() time.Duration {
	if j.StartedAt.IsZero() {
		return 0
	}
	return time.Since(j.StartedAt)
}
