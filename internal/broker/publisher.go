// Package broker wraps the RabbitMQ connection used for cross-service
// propagation. One connection and one channel are opened per process and
// shared by every saga instance; queues are declared durable once at
// construction. Publishing is fire-and-forget: no confirmation is awaited,
// failures are logged and returned so the caller can proceed regardless.
package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Queue names owned by this core.
const (
	// LinkageQueue carries seat link/unlink messages consumed by the
	// schedule service.
	LinkageQueue = "schedule.linkage"
	// EntityCreatedQueue carries creation notifications for peers that
	// mirror entities (e.g. search indexes).
	EntityCreatedQueue = "entity.created"
)

// Publisher is the process-wide message publisher. Concurrent Publish calls
// rely on the amqp client's channel thread-safety contract; no additional
// locking is layered on top.
type Publisher struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// New dials the broker, opens a channel and declares each named queue as
// durable. Declaration is idempotent on the broker side, so restarts and
// multiple processes declaring the same queue are harmless.
func New(url string, queues ...string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("broker dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("broker channel: %w", err)
	}
	for _, q := range queues {
		if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return nil, fmt.Errorf("declare queue %q: %w", q, err)
		}
	}
	return &Publisher{conn: conn, ch: ch}, nil
}

// Publish serializes payload to JSON and hands it to the named queue with
// persistent delivery. The error is logged here and returned so callers that
// treat publish failures as an accepted consistency gap can ignore it
// without losing the trace.
func (p *Publisher) Publish(ctx context.Context, queue string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("broker: marshal for %s failed: %v", queue, err)
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := p.ch.PublishWithContext(ctx, "", queue, false, false, pub); err != nil {
		log.Printf("broker: publish to %s failed: %v", queue, err)
		return err
	}
	return nil
}

// Close releases the channel and connection. Intended for process shutdown
// only; the publisher has no other teardown.
func (p *Publisher) Close() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
