// Package notify publishes build results to subscribers.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/retry"
)

// BuildCompleted is the payload published after every finished build.
type BuildCompleted struct {
	BuildID   string         `json:"build_id"`
	Status    string         `json:"status"`
	Pages     map[string]int `json:"pages"`
	Routes    int            `json:"routes"`
	TableHash string         `json:"table_hash"`
	Warnings  int            `json:"warnings"`
	Timestamp time.Time      `json:"timestamp"`
}

// Publisher delivers build events.
type Publisher interface {
	PublishBuildCompleted(ctx context.Context, event BuildCompleted) error
	Close() error
}

// NoopPublisher drops every event. It is used when no NATS URL is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishBuildCompleted(context.Context, BuildCompleted) error { return nil }
func (NoopPublisher) Close() error                                                { return nil }

// conn is the subset of *nats.Conn the publisher uses.
type conn interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Close()
}

// NATSPublisher publishes events as JSON on a core NATS subject.
type NATSPublisher struct {
	conn    conn
	subject string
	policy  retry.Policy
}

// New returns a NATS publisher for cfg, or NoopPublisher when notifications
// are not configured.
func New(cfg config.NotificationsConfig) (Publisher, error) {
	if cfg.NATSURL == "" {
		return NoopPublisher{}, nil
	}
	nc, err := nats.Connect(cfg.NATSURL,
		nats.Name("docsite"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(3),
	)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryTransport, "failed to connect to NATS").
			Retryable().
			WithContext("url", cfg.NATSURL).
			Build()
	}
	slog.Info("NATS build notifications enabled", slog.String("subject", cfg.Subject))
	r := cfg.Retry
	policy := retry.NewPolicy(retry.BackoffMode(r.Backoff), r.Initial, r.Max, r.MaxRetries)
	return &NATSPublisher{conn: nc, subject: cfg.Subject, policy: policy}, nil
}

// PublishBuildCompleted publishes event and waits for the server to
// acknowledge the flush. Transient failures are retried per the policy.
func (p *NATSPublisher) PublishBuildCompleted(ctx context.Context, event BuildCompleted) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to marshal build event").Build()
	}
	if err := retry.Do(ctx, p.policy, func(ctx context.Context) error { return p.publish(ctx, data) }); err != nil {
		return err
	}
	slog.Debug("Published build event", logfields.BuildID(event.BuildID), slog.String("subject", p.subject))
	return nil
}

func (p *NATSPublisher) publish(ctx context.Context, data []byte) error {
	if err := p.conn.Publish(p.subject, data); err != nil {
		return errors.WrapError(err, errors.CategoryTransport, "failed to publish build event").
			Retryable().
			WithContext("subject", p.subject).
			Build()
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return errors.WrapError(err, errors.CategoryTransport, "failed to flush build event").
			Retryable().
			WithContext("subject", p.subject).
			Build()
	}
	return nil
}

// Close closes the NATS connection.
func (p *NATSPublisher) Close() error {
	p.conn.Close()
	return nil
}
