package rabbit

import (
	"context"
	"errors"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/brdnvt/django-blog-recommendation-system/events"
)

// ErrDeliveriesClosed is returned by Run when the broker closes the
// delivery channel underneath a consumer.
var ErrDeliveriesClosed = errors.New("delivery channel closed by broker")

// Decision is a handler's verdict on a delivery. Exactly one of the three
// is applied to each message, exactly once.
type Decision int

const (
	// Ack acknowledges the message.
	Ack Decision = iota
	// NackDiscard rejects without requeue; the message is dead-lettered if
	// the queue has a dead-letter policy, dropped otherwise.
	NackDiscard
	// NackRequeue rejects with requeue for broker-level redelivery. Only
	// the archive path uses this.
	NackRequeue
)

// Message is the handler-facing view of a delivery.
type Message struct {
	RoutingKey string
	Body       []byte
}

// OutboundEvent is a follow-up publication requested by a handler. It is
// published only after the source message has been acknowledged, so a late
// publish failure cannot cause redelivery of the original message.
type OutboundEvent struct {
	RoutingKey string
	Envelope   *events.Envelope
}

// Result carries a handler's decision and any follow-up events. Follow-ups
// are ignored unless the decision is Ack.
type Result struct {
	Decision  Decision
	FollowUps []OutboundEvent
}

// Handler processes one delivery. The ack/nack decision is the return
// value, never a side effect inside the handler.
type Handler func(ctx context.Context, msg Message) Result

// EventPublisher publishes follow-up events. May be nil for consumers that
// never emit any.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, env *events.Envelope) error
}

// Consumer pulls messages from one queue and applies handler decisions. One
// message is fully handled before the next is delivered (prefetch count 1
// on the owning client).
type Consumer struct {
	client    *Client
	queue     string
	handler   Handler
	publisher EventPublisher
	log       zerolog.Logger
}

func NewConsumer(client *Client, queue string, handler Handler, publisher EventPublisher, log zerolog.Logger) *Consumer {
	return &Consumer{
		client:    client,
		queue:     queue,
		handler:   handler,
		publisher: publisher,
		log:       log,
	}
}

// Run consumes until the context is cancelled or the broker closes the
// channel. Cancellation abandons any in-flight unacknowledged message for
// redelivery.
func (c *Consumer) Run(ctx context.Context) error {
	deliveries, err := c.client.ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	c.log.Info().Str("queue", c.queue).Msg("consumer started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return ErrDeliveriesClosed
			}
			c.handleDelivery(ctx, d)
		}
	}
}

type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func (c *Consumer) handleDelivery(ctx context.Context, d amqp.Delivery) {
	c.process(ctx, Message{RoutingKey: d.RoutingKey, Body: d.Body}, &d)
}

// process applies the handler's decision to the delivery. The handler
// never touches the delivery itself, so a message is acked or nacked
// exactly once here and nowhere else.
func (c *Consumer) process(ctx context.Context, msg Message, ack acknowledger) {
	res := c.invoke(ctx, msg)

	switch res.Decision {
	case Ack:
		if err := ack.Ack(false); err != nil {
			c.log.Error().Err(err).Msg("failed to ack message")
			return
		}
	case NackDiscard:
		if err := ack.Nack(false, false); err != nil {
			c.log.Error().Err(err).Msg("failed to nack message")
		}
		return
	case NackRequeue:
		if err := ack.Nack(false, true); err != nil {
			c.log.Error().Err(err).Msg("failed to nack message for redelivery")
		}
		return
	}

	// Publish failures past this point are an accepted at-most-once
	// tradeoff: the source message is already acked and the creation event
	// is retained by the event store.
	for _, out := range res.FollowUps {
		if c.publisher == nil {
			c.log.Error().Str("routing_key", out.RoutingKey).Msg("follow-up event dropped: no publisher configured")
			continue
		}
		if err := c.publisher.Publish(ctx, out.RoutingKey, out.Envelope); err != nil {
			c.log.Error().Err(err).
				Str("routing_key", out.RoutingKey).
				Str("correlation_id", out.Envelope.CorrelationID).
				Msg("failed to publish follow-up event")
		}
	}
}

// invoke runs the handler, converting a panic into a discard so that no
// failure can escape and crash the consuming process.
func (c *Consumer) invoke(ctx context.Context, msg Message) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error().Interface("panic", r).Str("queue", c.queue).Msg("handler panicked")
			res = Result{Decision: NackDiscard}
		}
	}()
	return c.handler(ctx, msg)
}
