package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	models "github.com/brdnvt/django-blog-recommendation-system/model"
)

// EventRepository is the append-only event archive. No deduplication: every
// delivery is inserted as its own row.
type EventRepository interface {
	Append(ctx context.Context, event *models.StoredEvent) error
}

type eventRepository struct {
	db *sqlx.DB
}

func NewEventRepository(db *sqlx.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Append(ctx context.Context, event *models.StoredEvent) error {
	query := `
		INSERT INTO event_store (id, correlation_id, routing_key, payload, received_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		event.ID,
		event.CorrelationID,
		event.RoutingKey,
		event.Payload,
		event.ReceivedAt,
	)

	return err
}
