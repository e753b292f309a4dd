// internal/backend/invocation.go
package backend

import "fmt"

// Invocation is the job described by the scheduler's positional arguments:
//
//	job-id user title copies options [file]
type Invocation struct {
	JobID   string
	User    string
	Title   string
	Copies  string
	Options string
	// JobFile is empty when the job data arrives on standard input.
	JobFile string

	discovery bool
}

// Discovery reports whether the scheduler is only probing the backend.
func (inv Invocation) Discovery() bool { return inv.discovery }

// Args returns the positional arguments handed to the real backend.
func (inv Invocation) Args(jobFile string) []string {
	return []string{inv.JobID, inv.User, inv.Title, inv.Copies, inv.Options, jobFile}
}

// ParseArgs classifies the arguments following the program name. Fewer than
// five arguments is a discovery probe, five means the job is on stdin and six
// names a file that already holds it.
func ParseArgs(args []string) (Invocation, error) {
	switch n := len(args); {
	case n < 5:
		return Invocation{discovery: true}, nil
	case n > 6:
		return Invocation{}, fmt.Errorf("%w: got %d arguments, want 5 or 6", ErrInvalidArguments, n)
	}

	inv := Invocation{
		JobID:   args[0],
		User:    args[1],
		Title:   args[2],
		Copies:  args[3],
		Options: args[4],
	}
	if len(args) == 6 {
		inv.JobFile = args[5]
	}
	return inv, nil
}
