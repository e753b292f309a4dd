// internal/spool/materialize.go
package spool

import (
	"fmt"
	"io"
	"os"
)

// Job is job data available as a file on disk.
type Job struct {
	Path string
	// Size is only known for data copied from a stream.
	Size int64

	owned bool
}

// Owned reports whether Path is a temporary file created by Materialize.
func (j *Job) Owned() bool { return j != nil && j.owned }

// Cleanup removes the temporary file, if one was created. Files supplied by
// the caller are never touched. It is safe to call more than once.
func (j *Job) Cleanup() error {
	if !j.Owned() {
		return nil
	}
	j.owned = false
	if err := os.Remove(j.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove spool file: %w", err)
	}
	return nil
}

// Materialize returns the job data as a file. When jobFile is set it is used
// as-is; otherwise all of stdin is copied into a new temporary file in dir
// (the OS default when empty) which the caller must Cleanup.
func Materialize(jobFile string, stdin io.Reader, dir string) (*Job, error) {
	if jobFile != "" {
		return &Job{Path: jobFile}, nil
	}
	if stdin == nil {
		return nil, fmt.Errorf("no job file and no input stream")
	}

	temp, err := os.CreateTemp(dir, "printmanager-job-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	n, err := io.Copy(temp, stdin)
	if err != nil {
		temp.Close()
		os.Remove(temp.Name())
		return nil, fmt.Errorf("copy job data to disk: %w", err)
	}
	if err := temp.Sync(); err != nil {
		temp.Close()
		os.Remove(temp.Name())
		return nil, fmt.Errorf("sync temp file: %w", err)
	}
	if err := temp.Close(); err != nil {
		os.Remove(temp.Name())
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	return &Job{Path: temp.Name(), Size: n, owned: true}, nil
}
