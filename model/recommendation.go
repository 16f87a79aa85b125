package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
)

// Recommendation is created at most once per positively moderated post.
// The JSON shape matches what the query API returns to readers.
type Recommendation struct {
	ID        uuid.UUID      `json:"-" db:"id"`
	Author    int64          `json:"author" db:"author_id"`
	PostID    int64          `json:"post_id" db:"post_id"`
	Tags      pq.StringArray `json:"tags" db:"tags"`
	CreatedAt time.Time      `json:"-" db:"created_at"`
}

// StoredEvent is one verbatim entry in the append-only event archive.
type StoredEvent struct {
	ID            uuid.UUID      `db:"id"`
	CorrelationID string         `db:"correlation_id"`
	RoutingKey    string         `db:"routing_key"`
	Payload       types.JSONText `db:"payload"`
	ReceivedAt    time.Time      `db:"received_at"`
}
