package rabbit

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Topology names the exchanges, queues and bindings of the blog event
// pipeline. All declarations are durable and idempotent: redeclaring an
// existing object with identical arguments is a no-op.
type Topology struct {
	EventExchange      string
	DeadLetterExchange string

	ModerationQueue     string
	RecommendationQueue string
	StoreQueue          string
	DeadLetterQueue     string

	ModerationKey     string
	RecommendationKey string
	NotificationKey   string
	// StoreBindingKey is a wildcard pattern capturing every event routing
	// key, e.g. "blog.event.#".
	StoreBindingKey string
}

// DeclareTopology sets up the full broker topology. It must run to
// completion before any consumer attaches.
func (c *Client) DeclareTopology(t Topology) error {
	if err := c.ch.ExchangeDeclare(t.EventExchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare event exchange: %w", err)
	}
	if err := c.ch.ExchangeDeclare(t.DeadLetterExchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare dead-letter exchange: %w", err)
	}

	if _, err := c.ch.QueueDeclare(t.StoreQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare store queue: %w", err)
	}
	if _, err := c.ch.QueueDeclare(t.DeadLetterQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare dead-letter queue: %w", err)
	}

	// Rejected moderation messages route to the dead-letter queue instead
	// of being dropped.
	if _, err := c.ch.QueueDeclare(t.ModerationQueue, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange":    t.DeadLetterExchange,
		"x-dead-letter-routing-key": t.DeadLetterQueue,
	}); err != nil {
		return fmt.Errorf("failed to declare moderation queue: %w", err)
	}
	if _, err := c.ch.QueueDeclare(t.RecommendationQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare recommendation queue: %w", err)
	}

	if err := c.ch.QueueBind(t.StoreQueue, t.StoreBindingKey, t.EventExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind store queue: %w", err)
	}
	if err := c.ch.QueueBind(t.ModerationQueue, t.ModerationKey, t.EventExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind moderation queue: %w", err)
	}
	if err := c.ch.QueueBind(t.RecommendationQueue, t.RecommendationKey, t.EventExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind recommendation queue: %w", err)
	}
	if err := c.ch.QueueBind(t.DeadLetterQueue, t.DeadLetterQueue, t.DeadLetterExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind dead-letter queue: %w", err)
	}

	c.log.Info().
		Str("exchange", t.EventExchange).
		Str("dlx", t.DeadLetterExchange).
		Msg("broker topology declared")

	return nil
}
