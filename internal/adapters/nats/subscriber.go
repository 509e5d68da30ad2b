package natsadapter

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"baymap/internal/bay"
)

// Subscriber delivers live bay events to the editor so it can reload when
// another operator saves. It uses a plain subscription: missed events are
// not replayed, the editor only needs to know that the list changed.
type Subscriber struct {
	conn   *nats.Conn
	sub    *nats.Subscription
	events chan bay.Event
}

// Subscribe listens on <subject>.>.
func Subscribe(url, subject string) (*Subscriber, error) {
	conn, err := Connect(url)
	if err != nil {
		return nil, err
	}
	s := &Subscriber{conn: conn, events: make(chan bay.Event, 64)}
	s.sub, err = conn.Subscribe(subject+".>", s.handle)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("subscribe %s: %w", subject, err)
	}
	return s, nil
}

func (s *Subscriber) handle(msg *nats.Msg) {
	var ev bay.Event
	if err := json.Unmarshal(msg.Data, &ev); err != nil {
		slog.Warn("bay_event_decode_failed", "subject", msg.Subject, "error", err)
		return
	}
	select {
	case s.events <- ev:
	default:
		// a reload is already pending
	}
}

// Events yields decoded events. It is never closed.
func (s *Subscriber) Events() <-chan bay.Event { return s.events }

func (s *Subscriber) Close() {
	_ = s.sub.Unsubscribe()
	_ = s.conn.Drain()
}
