package rabbit

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/brdnvt/django-blog-recommendation-system/events"
)

// Publisher publishes envelopes to the event exchange with persistent
// delivery mode so they survive a broker restart.
type Publisher struct {
	client   *Client
	exchange string
	log      zerolog.Logger
}

func NewPublisher(client *Client, exchange string, log zerolog.Logger) *Publisher {
	return &Publisher{client: client, exchange: exchange, log: log}
}

func (p *Publisher) Publish(ctx context.Context, routingKey string, env *events.Envelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = p.client.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		CorrelationId: env.CorrelationID,
		Body:          payload,
	})
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.log.Info().
		Str("event", env.Body.Event).
		Str("routing_key", routingKey).
		Str("correlation_id", env.CorrelationID).
		Msg("published event")

	return nil
}
