package process

import (
	"errors"
	"testing"
)

func TestNewJobStartsPending(t *testing.T) {
	job := NewJob("42", "req-1")

	if job.ID != "42" || job.RequestID != "req-1" {
		t.Fatalf("unexpected job identity: %+v", job)
	}
	if job.Status != JobStatusPending {
		t.Fatalf("job status not pending: %v", job.Status)
	}
	if job.StartedAt.IsZero() {
		t.Fatal("job start time not recorded")
	}
}

func TestMarkApprovedThenReleased(t *testing.T) {
	job := NewJob("42", "req-1")
	MarkApproved(job)
	if job.Status != JobStatusApproved {
		t.Fatalf("job status not approved: %v", job.Status)
	}
	MarkReleased(job)
	if job.Status != JobStatusReleased {
		t.Fatalf("job status not released: %v", job.Status)
	}
}

func TestMarkDeniedRecordsError(t *testing.T) {
	job := NewJob("42", "req-1")
	MarkDenied(job, errors.New("blocked by policy"))

	if job.Status != JobStatusDenied {
		t.Fatalf("job status not denied: %v", job.Status)
	}
	if job.Error != "blocked by policy" {
		t.Fatalf("unexpected error: %q", job.Error)
	}
}

func TestMarkFailedSetsStatusAndError(t *testing.T) {
	job := NewJob("42", "req-1")
	MarkFailed(job, errors.New("boom"))

	if job.Status != JobStatusFailed {
		t.Fatalf("job status not failed: %v", job.Status)
	}
	if job.Error == "" {
		t.Fatal("job error not recorded")
	}
}

func TestMarkFailedDoesNotOverwriteErrorWhenNil(t *testing.T) {
	job := NewJob("42", "req-1")
	MarkFailed(job, nil)

	if job.Status != JobStatusFailed {
		t.Fatalf("job status not failed: %v", job.Status)
	}
	if job.Error != "" {
		t.Fatalf("expected empty error string, got %q", job.Error)
	}
}
