package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"meetmap/internal/logging"

	"github.com/nats-io/nats.go"
)

// NATS publishes location events on a subject and delivers every event
// received on it, including its own, to a Sink.
type NATS struct {
	conn    *nats.Conn
	subject string
}

func NewNATS(url, subject string) (*NATS, error) {
	conn, err := nats.Connect(url,
		nats.Name("meetmap"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &NATS{conn: conn, subject: subject}, nil
}

func (n *NATS) PublishLocation(_ context.Context, ev LocationEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal location event: %w", err)
	}
	if err := n.conn.Publish(n.subject, data); err != nil {
		return fmt.Errorf("nats publish: %w", err)
	}
	return nil
}

// Subscribe forwards events to sink until ctx is done.
func (n *NATS) Subscribe(ctx context.Context, sink Sink) error {
	log := logging.Component("events")
	sub, err := n.conn.Subscribe(n.subject, func(msg *nats.Msg) {
		ev, err := decodeLocationEvent(msg.Data)
		if err != nil {
			log.Warn("dropping malformed location event", "err", err)
			return
		}
		sink.UpdateLocation(ev)
	})
	if err != nil {
		return fmt.Errorf("nats subscribe %s: %w", n.subject, err)
	}
	go func() {
		<-ctx.Done()
		_ = sub.Unsubscribe()
	}()
	return nil
}

func (n *NATS) Close() {
	n.conn.Close()
}

func decodeLocationEvent(data []byte) (LocationEvent, error) {
	var ev LocationEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return ev, err
	}
	if ev.UserID == 0 {
		return ev, fmt.Errorf("location event without user_id")
	}
	return ev, nil
}
