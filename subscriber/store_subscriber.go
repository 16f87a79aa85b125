package subscriber

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	models "github.com/brdnvt/django-blog-recommendation-system/model"
	"github.com/brdnvt/django-blog-recommendation-system/rabbit"
	"github.com/brdnvt/django-blog-recommendation-system/repository"
)

// StoreSubscriber archives every event flowing through the topic exchange,
// verbatim and without deduplication. This is the system of record: a
// storage failure leaves the message unacknowledged for redelivery, the
// one place in the pipeline where retry-via-redelivery is intentional.
type StoreSubscriber struct {
	repo repository.EventRepository
	log  zerolog.Logger
}

func NewStoreSubscriber(repo repository.EventRepository, log zerolog.Logger) *StoreSubscriber {
	return &StoreSubscriber{repo: repo, log: log}
}

func (s *StoreSubscriber) Handle(ctx context.Context, msg rabbit.Message) rabbit.Result {
	if !json.Valid(msg.Body) {
		// Unstorable as a JSON document; requeueing would loop forever.
		s.log.Error().Str("routing_key", msg.RoutingKey).Msg("discarding non-JSON event")
		return rabbit.Result{Decision: rabbit.NackDiscard}
	}

	// Best-effort correlation id extraction; the archive accepts events of
	// any shape.
	var probe struct {
		CorrelationID string `json:"correlationId"`
	}
	_ = json.Unmarshal(msg.Body, &probe)

	event := &models.StoredEvent{
		ID:            uuid.New(),
		CorrelationID: probe.CorrelationID,
		RoutingKey:    msg.RoutingKey,
		Payload:       msg.Body,
		ReceivedAt:    time.Now().UTC(),
	}

	if err := s.repo.Append(ctx, event); err != nil {
		s.log.Error().Err(err).
			Str("correlation_id", probe.CorrelationID).
			Msg("failed to archive event, leaving for redelivery")
		return rabbit.Result{Decision: rabbit.NackRequeue}
	}

	s.log.Info().
		Str("correlation_id", probe.CorrelationID).
		Str("routing_key", msg.RoutingKey).
		Msg("event archived")

	return rabbit.Result{Decision: rabbit.Ack}
}
