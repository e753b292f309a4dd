// pkg/schema/events.go
package schema

// ApprovalRequest is the body posted to the approval service. Copies is
// forwarded exactly as the scheduler passed it.
type ApprovalRequest struct {
	JobID   string `json:"job_id"`
	User    string `json:"user"`
	Title   string `json:"title"`
	Printer string `json:"printer"`
	Copies  string `json:"copies"`
}

type Decision string

const (
	DecisionApproved  Decision = "approved"
	DecisionDenied    Decision = "denied"
	DecisionTransient Decision = "transient_failure"
)

type Stage string

const (
	StageClassify    Stage = "classify"
	StageResolveURI  Stage = "resolve_uri"
	StageApprove     Stage = "approve"
	StageLocate      Stage = "locate_backend"
	StageMaterialize Stage = "materialize"
	StageDelegate    Stage = "delegate"
	StageCompleted   Stage = "completed"
)

type FailureType string

const (
	FailureTypeRetryable FailureType = "retryable"
	FailureTypePermanent FailureType = "permanent"
)

// JobDecision is published once per job invocation after the outcome is known.
type JobDecision struct {
	RequestID        string      `json:"request_id"`
	JobID            string      `json:"job_id"`
	User             string      `json:"user"`
	Title            string      `json:"title"`
	Printer          string      `json:"printer"`
	Copies           string      `json:"copies"`
	Scheme           string      `json:"scheme,omitempty"`
	Status           string      `json:"status"`
	Decision         Decision    `json:"decision,omitempty"`
	Stage            Stage       `json:"stage"`
	ExitCode         int         `json:"exit_code"`
	BackendExitCode  *int        `json:"backend_exit_code,omitempty"`
	Error            string      `json:"error,omitempty"`
	FailureType      FailureType `json:"failure_type,omitempty"`
	ProcessingTimeMs int64       `json:"processing_time_ms"`
	HappenedAt       int64       `json:"happened_at"`
}
