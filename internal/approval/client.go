// internal/approval/client.go
package approval

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tendant/printmanager/pkg/schema"
)

// DefaultTimeout bounds a single approval round-trip.
const DefaultTimeout = 30 * time.Second

// maxBodyLog caps how much of a rejection body is kept for diagnostics.
const maxBodyLog = 4 << 10

var (
	ErrDenied      = errors.New("approval denied")
	ErrUnreachable = errors.New("approval service unreachable")
)

// DeniedError carries the approval service's answer for a rejected job.
type DeniedError struct {
	StatusCode int
	Body       string
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("approval denied with status %d", e.StatusCode)
}

func (e *DeniedError) Unwrap() error { return ErrDenied }

// Client asks a remote service whether a job may be printed.
type Client struct {
	endpoint   string
	token      string
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

type Option func(*Client)

func WithToken(token string) Option { return func(c *Client) { c.token = token } }

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient builds a client for endpoint. An empty endpoint approves every
// job without contacting anything.
func NewClient(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint:   strings.TrimSpace(endpoint),
		timeout:    DefaultTimeout,
		httpClient: &http.Client{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enabled reports whether an endpoint is configured.
func (c *Client) Enabled() bool { return c.endpoint != "" }

// Endpoint returns the configured endpoint.
func (c *Client) Endpoint() string { return c.endpoint }

// Decide posts req and maps the outcome onto a decision. Only HTTP 200
// approves. Any other status is a denial and returns a *DeniedError; failing
// to get an answer at all returns an error wrapping ErrUnreachable.
func (c *Client) Decide(ctx context.Context, requestID string, req schema.ApprovalRequest) (schema.Decision, error) {
	logger := c.logger.With("job_id", req.JobID)
	if !c.Enabled() {
		logger.Info("approval endpoint not configured, releasing job without approval")
		return schema.DecisionApproved, nil
	}

	body, err := json.Marshal(req)
	if err != nil {
		return schema.DecisionTransient, fmt.Errorf("%w: encode request: %v", ErrUnreachable, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return schema.DecisionTransient, fmt.Errorf("%w: build request: %v", ErrUnreachable, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", "printmanager")
	if requestID != "" {
		httpReq.Header.Set("X-Request-ID", requestID)
	}
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	logger.Info("requesting approval", "endpoint", c.endpoint, "user", req.User, "printer", req.Printer)
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		logger.Error("approval request failed", "err", err)
		return schema.DecisionTransient, fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyLog))
		logger.Info("approval granted")
		return schema.DecisionApproved, nil
	}

	text, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyLog))
	denied := &DeniedError{StatusCode: resp.StatusCode, Body: string(text)}
	logger.Error("approval denied, job will not be printed", "status", resp.StatusCode, "response", denied.Body)
	return schema.DecisionDenied, denied
}
