// internal/adapter/adapter.go
package adapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tendant/printmanager/internal/backend"
	"github.com/tendant/printmanager/internal/process"
	"github.com/tendant/printmanager/internal/spool"
	"github.com/tendant/printmanager/pkg/schema"
)

// Approver decides whether a job may reach the printer.
type Approver interface {
	Decide(ctx context.Context, requestID string, req schema.ApprovalRequest) (schema.Decision, error)
}

// EventPublisher receives the outcome of every job invocation.
type EventPublisher interface {
	Publish(ctx context.Context, event schema.JobDecision) error
}

type Config struct {
	BackendDir string
	TempDir    string
	// DenyAction is the exit status reported when the approval service
	// rejects a job: StatusCancel or StatusRetry.
	DenyAction backend.ExitStatus
}

// Result is the terminal outcome of one invocation.
type Result struct {
	Status          backend.ExitStatus
	Stage           schema.Stage
	Decision        schema.Decision
	Scheme          string
	BackendExitCode *int
	Err             error
}

// Adapter gates jobs on approval before handing them to the real backend.
type Adapter struct {
	cfg          Config
	approver     Approver
	delegate     *backend.Delegate
	events       EventPublisher
	logger       *slog.Logger
	newRequestID func() string
}

// New builds an adapter. events may be nil.
func New(cfg Config, approver Approver, events EventPublisher, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DenyAction != backend.StatusRetry {
		cfg.DenyAction = backend.StatusCancel
	}
	return &Adapter{
		cfg:          cfg,
		approver:     approver,
		delegate:     backend.NewDelegate(cfg.BackendDir, logger),
		events:       events,
		logger:       logger,
		newRequestID: uuid.NewString,
	}
}

// Run processes the backend arguments (without the program name). It never
// exits the process; the caller turns Result.Status into the exit code.
func (a *Adapter) Run(ctx context.Context, args []string, env backend.Environ, streams backend.Streams) Result {
	inv, err := backend.ParseArgs(args)
	if err == nil && inv.Discovery() {
		return Result{Status: backend.StatusOK, Stage: schema.StageClassify}
	}

	requestID := a.newRequestID()
	logger := a.logger.With("request_id", requestID)
	job := process.NewJob(inv.JobID, requestID)

	var res Result
	if err != nil {
		res = retry(schema.StageClassify, err)
	} else {
		logger = logger.With("job_id", inv.JobID)
		logger.Info("new print job received",
			"user", inv.User,
			"title", inv.Title,
			"copies", inv.Copies,
			"options", inv.Options,
			"job_file", inv.JobFile,
		)
		res = a.process(ctx, inv, env, streams, job, requestID, logger)
	}

	switch {
	case res.Status == backend.StatusOK:
		process.MarkReleased(job)
		logger.Info("job released to printer", "scheme", res.Scheme, "elapsed_ms", job.Elapsed().Milliseconds())
	case res.Decision == schema.DecisionDenied:
		process.MarkDenied(job, res.Err)
		logger.Error("job rejected", "exit_status", res.Status.String(), "err", res.Err)
	default:
		process.MarkFailed(job, res.Err)
		logger.Error("job failed, scheduler will retry", "stage", res.Stage, "exit_status", res.Status.String(), "err", res.Err)
	}

	a.publish(ctx, inv, env, job, res, logger)
	return res
}

func (a *Adapter) process(ctx context.Context, inv backend.Invocation, env backend.Environ, streams backend.Streams, job *process.Job, requestID string, logger *slog.Logger) Result {
	uri, err := backend.ResolveDeviceURI(env.Get(backend.DeviceURIEnv, ""))
	if err != nil {
		return retry(schema.StageResolveURI, err)
	}
	logger = logger.With("scheme", uri.Scheme)

	decision, err := a.approver.Decide(ctx, requestID, schema.ApprovalRequest{
		JobID:   inv.JobID,
		User:    inv.User,
		Title:   inv.Title,
		Printer: env.Get(backend.PrinterEnv, "unknown"),
		Copies:  inv.Copies,
	})
	switch {
	case decision == schema.DecisionDenied:
		return Result{Status: a.cfg.DenyAction, Stage: schema.StageApprove, Decision: decision, Scheme: uri.Scheme, Err: err}
	case decision != schema.DecisionApproved || err != nil:
		res := retry(schema.StageApprove, err)
		res.Decision, res.Scheme = schema.DecisionTransient, uri.Scheme
		return res
	}
	process.MarkApproved(job)

	approved := func(stage schema.Stage, err error) Result {
		res := retry(stage, err)
		res.Decision, res.Scheme = schema.DecisionApproved, uri.Scheme
		return res
	}

	path, err := a.delegate.Locate(uri.Scheme)
	if err != nil {
		return approved(schema.StageLocate, err)
	}

	data, err := spool.Materialize(inv.JobFile, streams.Stdin, a.cfg.TempDir)
	if err != nil {
		return approved(schema.StageMaterialize, err)
	}
	defer func() {
		if err := data.Cleanup(); err != nil {
			logger.Warn("cleanup failed", "path", data.Path, "err", err)
		}
	}()
	if data.Owned() {
		logger.Info("spooled job data from stdin", "path", data.Path, "bytes", data.Size)
	}

	childStreams := streams
	if data.Owned() {
		childStreams.Stdin = nil
	}
	code, err := a.delegate.Run(ctx, path, inv, uri, data.Path, env, childStreams)
	if err != nil {
		res := approved(schema.StageDelegate, err)
		if code >= 0 {
			res.BackendExitCode = &code
		}
		return res
	}
	return Result{
		Status:          backend.StatusOK,
		Stage:           schema.StageCompleted,
		Decision:        schema.DecisionApproved,
		Scheme:          uri.Scheme,
		BackendExitCode: &code,
	}
}

func (a *Adapter) publish(ctx context.Context, inv backend.Invocation, env backend.Environ, job *process.Job, res Result, logger *slog.Logger) {
	if a.events == nil {
		return
	}

	event := schema.JobDecision{
		RequestID:        job.RequestID,
		JobID:            inv.JobID,
		User:             inv.User,
		Title:            inv.Title,
		Printer:          env.Get(backend.PrinterEnv, "unknown"),
		Copies:           inv.Copies,
		Scheme:           res.Scheme,
		Status:           string(job.Status),
		Decision:         res.Decision,
		Stage:            res.Stage,
		ExitCode:         int(res.Status),
		BackendExitCode:  res.BackendExitCode,
		ProcessingTimeMs: job.Elapsed().Milliseconds(),
		HappenedAt:       time.Now().Unix(),
	}
	if res.Err != nil {
		event.Error = res.Err.Error()
		event.FailureType = classifyError(res)
	}

	if err := a.events.Publish(context.WithoutCancel(ctx), event); err != nil {
		logger.Warn("publish job decision failed", "err", err)
	}
}

func retry(stage schema.Stage, err error) Result {
	return Result{Status: backend.StatusRetry, Stage: stage, Err: err}
}

func classifyError(res Result) schema.FailureType {
	if res.Status == backend.StatusCancel {
		return schema.FailureTypePermanent
	}
	if errors.Is(res.Err, context.Canceled) {
		return schema.FailureTypePermanent
	}
	return schema.FailureTypeRetryable
}
