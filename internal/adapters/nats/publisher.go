package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"baymap/internal/bay"
)

// StreamName is the JetStream stream holding bay change events.
const StreamName = "BAYMAP_BAYS"

// Publisher implements bay.Publisher using NATS JetStream. Events go to
// <subject>.<kind>, e.g. baymap.bays.created.
type Publisher struct {
	conn    *nats.Conn
	js      nats.JetStreamContext
	subject string
}

// NewPublisher connects to NATS and makes sure the stream exists.
func NewPublisher(url, subject string) (*Publisher, error) {
	conn, err := Connect(url)
	if err != nil {
		return nil, err
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	cfg := nats.StreamConfig{
		Name:      StreamName,
		Subjects:  []string{subject + ".>"},
		Retention: nats.LimitsPolicy,
		MaxAge:    7 * 24 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(&cfg); err != nil {
		// Stream may already exist, try update
		if _, err := js.UpdateStream(&cfg); err != nil {
			conn.Close()
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js, subject: subject}, nil
}

var _ bay.Publisher = (*Publisher)(nil)

func (p *Publisher) PublishBayEvent(ctx context.Context, ev bay.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(p.subject+"."+string(ev.Kind), data, nats.Context(ctx))
	return err
}

// Conn exposes the connection for health checks and subscribers.
func (p *Publisher) Conn() *nats.Conn { return p.conn }

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// Connect opens a plain NATS connection with reconnects.
func Connect(url string) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.Name("baymap"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return conn, nil
}
