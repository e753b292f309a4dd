// internal/bus/nats.go
package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/tendant/printmanager/pkg/schema"
)

const DefaultSubject = "printmanager.jobs.decided"

type Client struct{ nc *nats.Conn }

// Connect dials url for a short-lived process: a few quick reconnects, no
// endless retry loop.
func Connect(url string, timeout time.Duration) (*Client, error) {
	nc, err := nats.Connect(url,
		nats.Name("printmanager"),
		nats.MaxReconnects(2),
		nats.ReconnectWait(250*time.Millisecond),
		nats.Timeout(timeout),
	)
	if err != nil {
		return nil, err
	}
	return &Client{nc: nc}, nil
}

func (c *Client) Close() {
	if c.nc != nil {
		_ = c.nc.Drain()
	}
}

func (c *Client) Conn() *nats.Conn { return c.nc }

func (c *Client) PublishJSON(subject string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.nc.Publish(subject, b)
}

// Publisher sends job decisions to NATS. It dials only when an event is
// published, so invocations that never reach a decision stay offline.
type Publisher struct {
	url     string
	subject string
	timeout time.Duration
}

// NewPublisher returns a publisher for url. An empty url disables publishing.
func NewPublisher(url, subject string, timeout time.Duration) *Publisher {
	if subject == "" {
		subject = DefaultSubject
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Publisher{url: url, subject: subject, timeout: timeout}
}

func (p *Publisher) Enabled() bool { return p != nil && p.url != "" }

func (p *Publisher) Subject() string { return p.subject }

// Publish delivers event and waits for the server to acknowledge the flush.
func (p *Publisher) Publish(ctx context.Context, event schema.JobDecision) error {
	if !p.Enabled() {
		return nil
	}

	c, err := Connect(p.url, p.timeout)
	if err != nil {
		return fmt.Errorf("connect to NATS: %w", err)
	}
	defer c.Close()

	if err := c.PublishJSON(p.subject, event); err != nil {
		return fmt.Errorf("publish %s: %w", p.subject, err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := c.Conn().FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flush %s: %w", p.subject, err)
	}
	return nil
}
