package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// Publisher emits notification events.  Publishing is best effort on the
// booking path: callers log failures and carry on, the reservation is
// already committed.
type Publisher interface {
	Publish(ctx context.Context, ev NotificationEvent) error
}

// AMQPPublisher publishes to a durable queue over RabbitMQ.  It dials per
// publish; event volume is low and this keeps the services free of
// long-lived channel state.
type AMQPPublisher struct {
	URL   string
	Queue string
	Log   zerolog.Logger
}

// NewAMQPPublisher returns a publisher for the given broker URL and queue.
func NewAMQPPublisher(url, queue string, log zerolog.Logger) *AMQPPublisher {
	return &AMQPPublisher{URL: url, Queue: queue, Log: log}
}

// Publish sends a single persistent JSON message.
func (p *AMQPPublisher) Publish(ctx context.Context, ev NotificationEvent) error {
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		p.Log.Error().Err(err).Str("queue", p.Queue).Msg("rabbitmq dial failed")
		return err
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		p.Log.Error().Err(err).Msg("rabbitmq channel failed")
		return err
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(p.Queue, true, false, false, false, nil); err != nil {
		p.Log.Error().Err(err).Str("queue", p.Queue).Msg("queue declare failed")
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	err = ch.PublishWithContext(ctx, "", p.Queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		p.Log.Error().Err(err).Str("event_type", ev.EventType).Msg("publish failed")
		return err
	}
	p.Log.Debug().
		Str("event_type", ev.EventType).
		Str("reservation_id", ev.ReservationID).
		Msg("event published")
	return nil
}

// NopPublisher discards events.  Used when the broker is not configured
// and in tests that do not care about notifications.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, NotificationEvent) error { return nil }

var _ Publisher = (*AMQPPublisher)(nil)
var _ Publisher = NopPublisher{}
