package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/samirrijal/safetyfan/internal/core/domain"
)

const (
	StreamName       = "SAFETY_FANS"
	SubjectAll       = "fans.>"
	SubjectComputed  = "fans.computed"
	SubjectArchived  = "fans.archived"
	computedWildcard = SubjectComputed + ".>"
)

// ComputedSubject returns the subject a computed fan is published on.
// Fans without a trajectory mode go to "fans.computed.any".
func ComputedSubject(mode domain.TrajectoryMode) string {
	if mode == "" {
		return SubjectComputed + ".any"
	}
	return SubjectComputed + "." + string(mode)
}

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and ensures the fan stream exists.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	cfg := &nats.StreamConfig{
		Name:      StreamName,
		Subjects:  []string{SubjectAll},
		Retention: nats.InterestPolicy,
		MaxAge:    7 * 24 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(cfg); err != nil {
		if _, err := js.UpdateStream(cfg); err != nil {
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

func (p *Publisher) PublishFanComputed(ctx context.Context, event *domain.FanComputedEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(ComputedSubject(event.Mode), data, nats.Context(ctx), nats.MsgId(event.FanID))
	return err
}

func (p *Publisher) PublishFanArchived(ctx context.Context, event *domain.FanArchivedEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(SubjectArchived+"."+event.FanID, data, nats.Context(ctx))
	return err
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("safetyfan"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
