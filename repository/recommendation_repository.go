package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	models "github.com/brdnvt/django-blog-recommendation-system/model"
)

const (
	// A new recommendation concerns every reader except its author, so
	// per-user cache invalidation cannot apply; staleness is bounded by a
	// short TTL instead.
	recommendationsTTL    = 2 * time.Minute
	recommendationsPrefix = "rec:user:"
)

type RecommendationRepository interface {
	Create(ctx context.Context, rec *models.Recommendation) error
	GetForUser(ctx context.Context, userID int64) ([]models.Recommendation, error)
}

type recommendationRepository struct {
	db    *sqlx.DB
	redis *redis.Client
}

func NewRecommendationRepository(db *sqlx.DB, redisClient *redis.Client) RecommendationRepository {
	return &recommendationRepository{
		db:    db,
		redis: redisClient,
	}
}

func (r *recommendationRepository) Create(ctx context.Context, rec *models.Recommendation) error {
	query := `
		INSERT INTO recommendations (id, author_id, post_id, tags, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		rec.ID,
		rec.Author,
		rec.PostID,
		rec.Tags,
		rec.CreatedAt,
	)

	return err
}

// GetForUser returns all recommendations not authored by the requesting
// user, in storage order.
func (r *recommendationRepository) GetForUser(ctx context.Context, userID int64) ([]models.Recommendation, error) {
	cacheKey := fmt.Sprintf("%s%d", recommendationsPrefix, userID)
	cached, err := r.redis.Get(ctx, cacheKey).Result()
	if err == nil {
		var recs []models.Recommendation
		if err := json.Unmarshal([]byte(cached), &recs); err == nil {
			return recs, nil
		}
	}

	query := `
		SELECT id, author_id, post_id, tags, created_at
		FROM recommendations
		WHERE author_id <> $1
		ORDER BY created_at
	`

	var recs []models.Recommendation
	if err := r.db.SelectContext(ctx, &recs, query, userID); err != nil {
		return nil, err
	}

	if data, err := json.Marshal(recs); err == nil {
		r.redis.Set(ctx, cacheKey, data, recommendationsTTL)
	}

	return recs, nil
}
