package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/booking-reconciliation/internal/importer"
	"github.com/iliyamo/booking-reconciliation/internal/model"
	"github.com/iliyamo/booking-reconciliation/internal/remote"
)

// Importer is what the consumer hands decoded requests to.
// *importer.Service satisfies it.
type Importer interface {
	Import(ctx context.Context, source string, rec *remote.ReservationRecord) (*model.Booking, error)
}

// Consumer reads ImportRequest messages from Queue and imports each one.
// Outcomes are appended to Audit when it is set.
type Consumer struct {
	URL      string
	Queue    string
	Importer Importer
	Audit    *AuditLog
}

// Run connects to RabbitMQ, declares the queue (durable) and consumes
// until ctx is cancelled.  Connection failures are retried with
// exponential backoff capped at 30s.  A message whose import failed for
// a transient reason (lock wait timeout, database error) is requeued
// once; anything else, or a second failure, is rejected for good.  Every
// failure is logged and audited.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			log.Printf("import-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Printf("import-consumer: consume loop ended: %v; reconnecting", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	// imports are serialized per booking anyway; keep prefetch small
	if err := ch.Qos(5, 0, false); err != nil {
		log.Printf("import-consumer: set QoS failed: %v", err)
	}
	if _, err := ch.QueueDeclare(c.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(c.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.handle(ctx, d.Body); err != nil {
				again := requeue(err, d.Redelivered)
				log.Printf("import-consumer: handle message failed (requeue=%t): %v", again, err)
				_ = d.Nack(false, again)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

var errDecode = errors.New("undecodable import request")

// requeue reports whether a failed delivery deserves another attempt.
// Bad payloads and unknown references fail the same way every time.
func requeue(err error, redelivered bool) bool {
	if redelivered {
		return false
	}
	switch {
	case errors.Is(err, errDecode),
		errors.Is(err, importer.ErrMalformedRecord),
		errors.Is(err, importer.ErrCustomerNotFound),
		errors.Is(err, importer.ErrAddOnNotFound):
		return false
	}
	return true
}

// handle decodes and imports one message body.
func (c *Consumer) handle(ctx context.Context, body []byte) error {
	var req ImportRequest
	if err := json.Unmarshal(body, &req); err != nil {
		err = fmt.Errorf("%w: %v", errDecode, err)
		c.Audit.Failure(req, err)
		return err
	}
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	b, err := c.Importer.Import(ctx, req.Source, &req.Reservation)
	if err != nil {
		c.Audit.Failure(req, err)
		return fmt.Errorf("import reservation %d: %w", req.Reservation.ID, err)
	}
	c.Audit.Success(req, b)
	return nil
}
