// Package service publishes domain events to RabbitMQ.  Errors are logged
// and returned so callers can ignore failures without interrupting the
// request flow.
package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/rental-listing-service/internal/config"
	"github.com/iliyamo/rental-listing-service/internal/queue"
)

// EventPublisher emits booking events.  Handlers accept a nil publisher,
// which disables publishing.
type EventPublisher interface {
	PublishBookingCreated(ctx context.Context, ev queue.BookingCreatedEvent) error
}

// AMQPPublisher dials the broker per publish.  Booking creation is rare
// enough that a long-lived channel is not worth the reconnect handling.
type AMQPPublisher struct {
	cfg config.QueueConfig
}

// NewAMQPPublisher returns a publisher for cfg, or nil when publishing is
// disabled.
func NewAMQPPublisher(cfg config.QueueConfig) *AMQPPublisher {
	if !cfg.Enabled {
		return nil
	}
	return &AMQPPublisher{cfg: cfg}
}

// PublishBookingCreated publishes ev as persistent JSON to the booking
// queue through the default exchange.
func (p *AMQPPublisher) PublishBookingCreated(ctx context.Context, ev queue.BookingCreatedEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	conn, err := amqp.Dial(p.cfg.URL)
	if err != nil {
		log.Warn().Err(err).Msg("rabbitmq: dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Warn().Err(err).Msg("rabbitmq: channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	// durable so messages survive broker restarts
	if _, err := ch.QueueDeclare(p.cfg.BookingQueue, true, false, false, false, nil); err != nil {
		log.Warn().Err(err).Str("queue", p.cfg.BookingQueue).Msg("rabbitmq: queue declare failed")
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		MessageId:    ev.BookingID,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.cfg.BookingQueue, false, false, pub); err != nil {
		log.Warn().Err(err).Str("booking_id", ev.BookingID).Msg("rabbitmq: publish failed")
		return err
	}
	log.Debug().Str("booking_id", ev.BookingID).Msg("rabbitmq: booking.created published")
	return nil
}
