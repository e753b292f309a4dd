// internal/backend/delegate.go
package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"
)

// DefaultDir is where the scheduler installs its backends.
const DefaultDir = "/usr/lib/cups/backend"

// stopGrace bounds how long a cancelled backend may keep its pipes open.
const stopGrace = 10 * time.Second

// Streams are the standard streams handed to the real backend.
type Streams struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Delegate runs the real backend for an unwrapped device URI.
type Delegate struct {
	dir    string
	logger *slog.Logger
}

// NewDelegate looks up backends in dir.
func NewDelegate(dir string, logger *slog.Logger) *Delegate {
	if dir == "" {
		dir = DefaultDir
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Delegate{dir: dir, logger: logger}
}

// Dir returns the backend directory.
func (d *Delegate) Dir() string { return d.dir }

// Locate returns the path of the backend for scheme, which must be an
// executable regular file.
func (d *Delegate) Locate(scheme string) (string, error) {
	path := filepath.Join(d.dir, scheme)
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrBackendNotFound, path, err)
	}
	if !info.Mode().IsRegular() || info.Mode().Perm()&0o111 == 0 {
		return "", fmt.Errorf("%w: %s (mode %s)", ErrBackendNotFound, path, info.Mode())
	}
	return path, nil
}

// Run executes the backend at path for inv with the job data in jobFile and
// waits for it. env is passed through with DEVICE_URI set to uri.RealURI.
// It returns the child's exit code; any code other than zero is reported as
// ErrBackendFailed.
func (d *Delegate) Run(ctx context.Context, path string, inv Invocation, uri DeviceURI, jobFile string, env Environ, streams Streams) (int, error) {
	cmd := exec.CommandContext(ctx, path, inv.Args(jobFile)...)
	cmd.Env = env.With(DeviceURIEnv, uri.RealURI)
	cmd.Stdin = streams.Stdin
	cmd.Stdout = streams.Stdout
	cmd.Stderr = streams.Stderr
	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGTERM)
	}
	cmd.WaitDelay = stopGrace

	d.logger.Debug("starting backend", "path", path, "args", cmd.Args[1:])
	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if err == nil {
		d.logger.Info("backend finished", "path", path, "elapsed_ms", elapsed.Milliseconds())
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		if ctx.Err() != nil {
			return code, fmt.Errorf("%w: %s stopped: %w", ErrBackendFailed, filepath.Base(path), ctx.Err())
		}
		return code, fmt.Errorf("%w: %s exit status %d", ErrBackendFailed, filepath.Base(path), code)
	}
	return -1, fmt.Errorf("%w: run %s: %w", ErrBackendFailed, path, err)
}
