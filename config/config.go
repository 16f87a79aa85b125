package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/brdnvt/django-blog-recommendation-system/rabbit"
)

// BrokerConfig names every broker-side object the pipeline touches. All
// fields are required; a missing variable is a startup-fatal configuration
// error.
type BrokerConfig struct {
	Host     string
	User     string
	Password string

	EventExchange      string
	DeadLetterExchange string

	ModerationQueue     string
	RecommendationQueue string
	StoreQueue          string
	DeadLetterQueue     string

	ModerationKey     string
	RecommendationKey string
	NotificationKey   string
	StoreBindingKey   string
}

func LoadBroker() (*BrokerConfig, error) {
	cfg := &BrokerConfig{}

	fields := []struct {
		dst *string
		key string
	}{
		{&cfg.Host, "AMQP_HOST"},
		{&cfg.User, "AMQP_USER"},
		{&cfg.Password, "AMQP_PASS"},
		{&cfg.EventExchange, "EVENT_EXCHANGE"},
		{&cfg.DeadLetterExchange, "DLQ_EVENT_EXCHANGE"},
		{&cfg.ModerationQueue, "MODERATION_QUEUE"},
		{&cfg.RecommendationQueue, "RECOMMENDATION_QUEUE"},
		{&cfg.StoreQueue, "STORE_QUEUE"},
		{&cfg.DeadLetterQueue, "DLQ_MODERATION"},
		{&cfg.ModerationKey, "ROUTING_KEY_MODERATION"},
		{&cfg.RecommendationKey, "ROUTING_KEY_RECOMMENDATION"},
		{&cfg.NotificationKey, "ROUTING_KEY_NOTIFICATION"},
		{&cfg.StoreBindingKey, "STORE_BINDING_KEY"},
	}

	for _, f := range fields {
		v, err := requireEnv(f.key)
		if err != nil {
			return nil, err
		}
		*f.dst = v
	}

	return cfg, nil
}

// Topology maps the broker configuration onto the declared topology.
func (c *BrokerConfig) Topology() rabbit.Topology {
	return rabbit.Topology{
		EventExchange:       c.EventExchange,
		DeadLetterExchange:  c.DeadLetterExchange,
		ModerationQueue:     c.ModerationQueue,
		RecommendationQueue: c.RecommendationQueue,
		StoreQueue:          c.StoreQueue,
		DeadLetterQueue:     c.DeadLetterQueue,
		ModerationKey:       c.ModerationKey,
		RecommendationKey:   c.RecommendationKey,
		NotificationKey:     c.NotificationKey,
		StoreBindingKey:     c.StoreBindingKey,
	}
}

// DatabaseConfig holds Postgres connection settings. Connection identity is
// required; pool sizing has defaults.
type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	DBName       string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

// LoadDatabase loads Postgres settings with the given env prefix, e.g.
// "RECOMMENDATION_" or "EVENT_STORE_".
func LoadDatabase(prefix string) (*DatabaseConfig, error) {
	cfg := &DatabaseConfig{
		SSLMode:      getEnv(prefix+"DB_SSLMODE", "disable"),
		MaxOpenConns: getEnvAsInt(prefix+"DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns: getEnvAsInt(prefix+"DB_MAX_IDLE_CONNS", 5),
		MaxLifetime:  getEnvAsDuration(prefix+"DB_MAX_LIFETIME", 5*time.Minute),
	}

	required := []struct {
		dst *string
		key string
	}{
		{&cfg.Host, prefix + "DB_HOST"},
		{&cfg.User, prefix + "DB_USER"},
		{&cfg.Password, prefix + "DB_PASSWORD"},
		{&cfg.DBName, prefix + "DB_NAME"},
	}
	for _, f := range required {
		v, err := requireEnv(f.key)
		if err != nil {
			return nil, err
		}
		*f.dst = v
	}

	var err error
	cfg.Port, err = strconv.Atoi(getEnv(prefix+"DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid database port: %w", err)
	}

	return cfg, nil
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func LoadRedis() (*RedisConfig, error) {
	addr, err := requireEnv("REDIS_URL")
	if err != nil {
		return nil, err
	}
	return &RedisConfig{
		Addr:     addr,
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvAsInt("REDIS_DB", 0),
	}, nil
}

// LoadBlogAPIURL returns the external post-service base URL.
func LoadBlogAPIURL() (string, error) {
	return requireEnv("BLOG_API_URL")
}

// LoadJWKSURL returns the endpoint serving the auth boundary's public keys.
func LoadJWKSURL() (string, error) {
	return requireEnv("JWKS_URL")
}

// LoadAPIPort returns the query API listen port.
func LoadAPIPort() int {
	return getEnvAsInt("PORT", 8001)
}

func requireEnv(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return value, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
