// internal/backend/status.go
package backend

import "errors"

// ExitStatus is the code a backend reports to the scheduler when it exits.
type ExitStatus int

const (
	StatusOK     ExitStatus = 0 // job printed (or nothing to do)
	StatusRetry  ExitStatus = 1 // scheduler retries the job later
	StatusCancel ExitStatus = 4 // scheduler cancels the job permanently
)

func (s ExitStatus) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusRetry:
		return "retry"
	case StatusCancel:
		return "cancel"
	default:
		return "unknown"
	}
}

var (
	ErrInvalidArguments = errors.New("invalid backend arguments")
	ErrInvalidDeviceURI = errors.New("invalid device uri")
	ErrMissingRealURI   = errors.New("real device uri missing")
	ErrMissingScheme    = errors.New("device uri has no scheme")
	ErrInvalidScheme    = errors.New("device uri scheme not allowed")
	ErrBackendNotFound  = errors.New("backend not found or not executable")
	ErrBackendFailed    = errors.New("backend exited with failure")
)
