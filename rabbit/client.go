package rabbit

import (
	"fmt"
	"net/url"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

type Config struct {
	Host          string
	User          string
	Password      string
	DialAttempts  int
	DialBackoff   time.Duration
	PrefetchCount int
}

// Client owns one broker connection and one channel for the lifetime of a
// process. It is not safe for concurrent use across consumers; each
// consumer process creates its own.
type Client struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	log  zerolog.Logger
}

// NewClient dials the broker, retrying transient failures with a fixed
// backoff up to the configured attempt count before giving up.
func NewClient(cfg Config, log zerolog.Logger) (*Client, error) {
	addr := fmt.Sprintf("amqp://%s:%s@%s/",
		url.QueryEscape(cfg.User), url.QueryEscape(cfg.Password), cfg.Host)

	if cfg.DialAttempts < 1 {
		cfg.DialAttempts = 1
	}

	var conn *amqp.Connection
	var err error
	for attempt := 1; attempt <= cfg.DialAttempts; attempt++ {
		conn, err = amqp.Dial(addr)
		if err == nil {
			break
		}
		log.Warn().Err(err).
			Int("attempt", attempt).
			Int("max_attempts", cfg.DialAttempts).
			Msg("failed to connect to broker")
		if attempt < cfg.DialAttempts {
			time.Sleep(cfg.DialBackoff)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to broker after %d attempts: %w", cfg.DialAttempts, err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	// Prefetch count of 1: a consumer is never handed a new message before
	// acknowledging or rejecting its current one.
	if cfg.PrefetchCount > 0 {
		if err := ch.Qos(cfg.PrefetchCount, 0, false); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to set channel QoS: %w", err)
		}
	}

	log.Info().Str("host", cfg.Host).Msg("connected to broker")

	return &Client{conn: conn, ch: ch, log: log}, nil
}

// Close drops the channel and connection. In-flight unacknowledged
// deliveries are redelivered to another consumer by the broker.
func (c *Client) Close() {
	if c.ch != nil {
		c.ch.Close()
	}
	if c.conn != nil {
		c.conn.Close()
	}
}
