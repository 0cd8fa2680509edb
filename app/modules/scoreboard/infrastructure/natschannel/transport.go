package natschannel

import (
	"fmt"

	nc "github.com/nats-io/nats.go"
	scoreboardservice "github.com/capital-ladder/backend/app/modules/scoreboard/application"
)

// Transport carries score updates over core NATS. No JetStream here: the
// channel is fire-and-forget with no replay, matching the session's
// last-write-wins contract.
type Transport struct {
	conn *nc.Conn
}

// NewTransport wraps an existing NATS connection.
func NewTransport(conn *nc.Conn) *Transport {
	return &Transport{conn: conn}
}

// Publish sends data on subject.
func (t *Transport) Publish(subject string, data []byte) error {
	if err := t.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("nats publish failed: %w", err)
	}
	return nil
}

// Subscribe delivers every message on subject to handler.
func (t *Transport) Subscribe(subject string, handler func(data []byte)) (scoreboardservice.Subscription, error) {
	sub, err := t.conn.Subscribe(subject, func(msg *nc.Msg) {
		handler(msg.Data)
	})
	if err != nil {
		return nil, fmt.Errorf("nats subscribe failed: %w", err)
	}
	return sub, nil
}
