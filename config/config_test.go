package config

import (
	"strings"
	"testing"
	"time"
)

func setBrokerEnv(t *testing.T) {
	t.Helper()
	vars := map[string]string{
		"AMQP_HOST":                  "rabbitmq",
		"AMQP_USER":                  "guest",
		"AMQP_PASS":                  "guest",
		"EVENT_EXCHANGE":             "blog.events",
		"DLQ_EVENT_EXCHANGE":         "blog.events.dlx",
		"MODERATION_QUEUE":           "moderation",
		"RECOMMENDATION_QUEUE":       "recommendation",
		"STORE_QUEUE":                "store",
		"DLQ_MODERATION":             "moderation.dlq",
		"ROUTING_KEY_MODERATION":     "blog.event.moderation",
		"ROUTING_KEY_RECOMMENDATION": "blog.event.recommendation",
		"ROUTING_KEY_NOTIFICATION":   "blog.event.notification",
		"STORE_BINDING_KEY":          "blog.event.#",
	}
	for k, v := range vars {
		t.Setenv(k, v)
	}
}

func TestLoadBroker(t *testing.T) {
	t.Run("complete environment", func(t *testing.T) {
		setBrokerEnv(t)

		cfg, err := LoadBroker()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Host != "rabbitmq" || cfg.EventExchange != "blog.events" {
			t.Errorf("unexpected config: %+v", cfg)
		}
		if cfg.StoreBindingKey != "blog.event.#" {
			t.Errorf("expected wildcard store binding, got %s", cfg.StoreBindingKey)
		}
	})

	t.Run("missing variable names the variable", func(t *testing.T) {
		setBrokerEnv(t)
		t.Setenv("DLQ_MODERATION", "")

		_, err := LoadBroker()
		if err == nil {
			t.Fatal("expected error for missing DLQ_MODERATION")
		}
		if !strings.Contains(err.Error(), "DLQ_MODERATION") {
			t.Errorf("error should name the missing variable: %v", err)
		}
	})
}

func TestLoadDatabase(t *testing.T) {
	t.Run("requires connection identity", func(t *testing.T) {
		t.Setenv("RECOMMENDATION_DB_HOST", "postgres")
		t.Setenv("RECOMMENDATION_DB_USER", "postgres")
		t.Setenv("RECOMMENDATION_DB_PASSWORD", "postgres")

		_, err := LoadDatabase("RECOMMENDATION_")
		if err == nil {
			t.Fatal("expected error for missing RECOMMENDATION_DB_NAME")
		}
		if !strings.Contains(err.Error(), "RECOMMENDATION_DB_NAME") {
			t.Errorf("error should name the missing variable: %v", err)
		}
	})

	t.Run("pool settings have defaults", func(t *testing.T) {
		t.Setenv("EVENT_STORE_DB_HOST", "postgres")
		t.Setenv("EVENT_STORE_DB_USER", "postgres")
		t.Setenv("EVENT_STORE_DB_PASSWORD", "postgres")
		t.Setenv("EVENT_STORE_DB_NAME", "events")

		cfg, err := LoadDatabase("EVENT_STORE_")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Port != 5432 || cfg.MaxOpenConns != 25 || cfg.MaxLifetime != 5*time.Minute {
			t.Errorf("unexpected defaults: %+v", cfg)
		}
	})
}

func TestLoadRedis(t *testing.T) {
	t.Run("address required", func(t *testing.T) {
		t.Setenv("REDIS_URL", "")
		if _, err := LoadRedis(); err == nil {
			t.Error("expected error for missing REDIS_URL")
		}
	})

	t.Run("password optional", func(t *testing.T) {
		t.Setenv("REDIS_URL", "redis:6379")
		cfg, err := LoadRedis()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Addr != "redis:6379" || cfg.Password != "" || cfg.DB != 0 {
			t.Errorf("unexpected config: %+v", cfg)
		}
	})
}
