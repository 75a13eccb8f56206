// Package service provides the outbound side of the message broker:
// publishing domain events to RabbitMQ after imports commit.
package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/booking-reconciliation/internal/model"
	q "github.com/iliyamo/booking-reconciliation/internal/queue"
)

// Publisher publishes BookingImportedEvent messages to Queue.  It dials
// the broker per publish; imports are infrequent enough that holding a
// channel open is not worth the reconnect handling.
type Publisher struct {
	URL   string
	Queue string
}

// BookingImported publishes the event for b.  Messages are persistent
// and the queue durable.  Errors are logged and returned so the caller
// can choose to ignore them.
func (p *Publisher) BookingImported(ctx context.Context, b *model.Booking) error {
	body, err := json.Marshal(q.NewBookingImportedEvent(b))
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	conn, err := amqp.Dial(p.URL)
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		p.Queue, // name
		true,    // durable
		false,   // autoDelete
		false,   // exclusive
		false,   // noWait
		nil,     // args
	); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		MessageId:    b.Identity.String(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.Queue, false, false, pub); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}
