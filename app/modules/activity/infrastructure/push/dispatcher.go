package push

import (
	"context"
	"encoding/json"
	"fmt"

	nc "github.com/nats-io/nats.go"
)

// DispatchSubject is where delivery requests are handed off to the push
// delivery worker.
const DispatchSubject = "push.dispatch"

// Request is one delivery handed to the worker.
type Request struct {
	Token string            `json:"token"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// Dispatcher hands push deliveries to the external delivery worker over core
// NATS. The core does not wait for, or consume, any delivery result.
type Dispatcher struct {
	conn *nc.Conn
}

// NewDispatcher wraps an existing NATS connection.
func NewDispatcher(conn *nc.Conn) *Dispatcher {
	return &Dispatcher{conn: conn}
}

// Send publishes one delivery request.
func (d *Dispatcher) Send(_ context.Context, token, title, body string, data map[string]string) error {
	payload, err := json.Marshal(Request{Token: token, Title: title, Body: body, Data: data})
	if err != nil {
		return fmt.Errorf("failed to marshal push request: %w", err)
	}
	if err := d.conn.Publish(DispatchSubject, payload); err != nil {
		return fmt.Errorf("failed to dispatch push request: %w", err)
	}
	return nil
}
