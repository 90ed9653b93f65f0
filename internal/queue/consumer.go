// Package queue contains the background consumer for the schedule.linkage
// queue. It applies link/unlink messages to the local seat-slot rows with
// set-to-value semantics, so redelivered messages and reconciliation sweeps
// are safe to re-apply.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/cinemahub/cinema-booking/internal/broker"
	"github.com/cinemahub/cinema-booking/internal/repository"
)

// LinkageApplier points one seat-slot at an invoice (or away from one).
// *repository.ScheduleRepo satisfies it.
type LinkageApplier interface {
	SetInvoiceID(ctx context.Context, movieID uint64, date, timeOfDay string, seatID uint64, invoiceID *uint64) error
}

// errBadMessage marks deliveries that can never succeed no matter how often
// they are retried. They are rejected without requeue; everything else is
// requeued so a transient database outage does not lose linkage messages.
var errBadMessage = errors.New("unprocessable linkage message")

// StartLinkageConsumer connects to RabbitMQ, declares the durable
// schedule.linkage queue and consumes it forever, applying each message via
// the applier. It runs a reconnect loop with capped exponential backoff and
// never returns under normal operation. Poison messages (undecodable or
// incomplete) are rejected without requeue so they cannot wedge the queue;
// messages that fail on infrastructure errors are requeued.
func StartLinkageConsumer(url string, applier LinkageApplier) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("linkage-consumer: dial failed: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := consumeLoop(conn, applier); err != nil {
			log.Printf("linkage-consumer: consume loop ended: %v; reconnecting", err)
			_ = conn.Close()
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection, applier LinkageApplier) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("linkage-consumer: set QoS failed: %v", err)
	}

	if _, err := ch.QueueDeclare(broker.LinkageQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(broker.LinkageQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		err := handleLinkage(context.Background(), applier, d.Body)
		switch {
		case err == nil:
			_ = d.Ack(false)
		case errors.Is(err, errBadMessage):
			log.Printf("linkage-consumer: message rejected: %v", err)
			_ = d.Nack(false, false)
		default:
			log.Printf("linkage-consumer: apply failed, message requeued: %v", err)
			_ = d.Nack(false, true)
		}
	}
	return errors.New("deliveries channel closed")
}

// handleLinkage decodes and applies one linkage message. A slot that does
// not exist is logged and acked: the row will not materialize on redelivery,
// so requeueing would only loop.
func handleLinkage(ctx context.Context, applier LinkageApplier, body []byte) error {
	var msg broker.ScheduleLinkage
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("%w: unmarshal: %v", errBadMessage, err)
	}
	if msg.MovieID == 0 || msg.SeatID == 0 || msg.Date == "" || msg.Time == "" {
		return fmt.Errorf("%w: incomplete: %s", errBadMessage, body)
	}

	err := applier.SetInvoiceID(ctx, msg.MovieID, msg.Date, msg.Time, msg.SeatID, msg.InvoiceID)
	if errors.Is(err, repository.ErrScheduleNotFound) {
		log.Printf("linkage-consumer: no slot for movie=%d date=%s time=%s seat=%d, message dropped",
			msg.MovieID, msg.Date, msg.Time, msg.SeatID)
		return nil
	}
	return err
}
