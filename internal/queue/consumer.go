package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// Handler processes a single notification event.  A non-nil error causes
// the delivery to be rejected without requeue.
type Handler func(ctx context.Context, ev NotificationEvent) error

// Consumer drains the notifications queue, reconnecting with backoff when
// the broker connection drops.
type Consumer struct {
	URL      string
	Queue    string
	Prefetch int
	Log      zerolog.Logger
}

// NewConsumer returns a consumer with the standard prefetch of 10.
func NewConsumer(url, queue string, log zerolog.Logger) *Consumer {
	return &Consumer{URL: url, Queue: queue, Prefetch: 10, Log: log}
}

// Run consumes until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context, handle Handler) error {
	for {
		if err := c.consumeOnce(ctx, handle); err != nil {
			c.Log.Error().Err(err).Msg("consumer disconnected, retrying in 5s")
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(5 * time.Second):
		}
	}
}

func (c *Consumer) consumeOnce(ctx context.Context, handle Handler) error {
	conn, err := amqp.Dial(c.URL)
	if err != nil {
		return err
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(c.Queue, true, false, false, false, nil); err != nil {
		return err
	}
	if err := ch.Qos(c.Prefetch, 0, false); err != nil {
		return err
	}
	deliveries, err := ch.Consume(c.Queue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}
	c.Log.Info().Str("queue", c.Queue).Msg("consuming notifications")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return amqp.ErrClosed
			}
			c.dispatch(ctx, d, handle)
		}
	}
}

func (c *Consumer) dispatch(ctx context.Context, d amqp.Delivery, handle Handler) {
	var ev NotificationEvent
	if err := json.Unmarshal(d.Body, &ev); err != nil {
		c.Log.Error().Err(err).Msg("malformed event, dropping")
		_ = d.Nack(false, false)
		return
	}
	if err := handle(ctx, ev); err != nil {
		c.Log.Error().Err(err).
			Str("event_type", ev.EventType).
			Str("reservation_id", ev.ReservationID).
			Msg("handler failed, dropping event")
		_ = d.Nack(false, false)
		return
	}
	_ = d.Ack(false)
}
