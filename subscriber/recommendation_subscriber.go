package subscriber

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/brdnvt/django-blog-recommendation-system/events"
	models "github.com/brdnvt/django-blog-recommendation-system/model"
	"github.com/brdnvt/django-blog-recommendation-system/rabbit"
	"github.com/brdnvt/django-blog-recommendation-system/repository"
)

// RecommendationSubscriber persists accepted recommendations from moderated
// events. This path treats storage as best-effort: the message is acked
// unconditionally after processing, since the source event is independently
// retained by the event store.
type RecommendationSubscriber struct {
	repo repository.RecommendationRepository
	log  zerolog.Logger
}

func NewRecommendationSubscriber(repo repository.RecommendationRepository, log zerolog.Logger) *RecommendationSubscriber {
	return &RecommendationSubscriber{repo: repo, log: log}
}

func (s *RecommendationSubscriber) Handle(ctx context.Context, msg rabbit.Message) rabbit.Result {
	env, err := events.ParseEnvelope(msg.Body)
	if err != nil {
		s.log.Warn().Err(err).Msg("ignoring unparseable recommendation event")
		return rabbit.Result{Decision: rabbit.Ack}
	}

	log := s.log.With().
		Str("correlation_id", env.CorrelationID).
		Int64("post_id", env.Body.Post.ID).
		Logger()

	if env.Body.Moderation == nil || !env.Body.Moderation.Recommend {
		log.Info().Msg("blog post not recommended")
		return rabbit.Result{Decision: rabbit.Ack}
	}

	rec := &models.Recommendation{
		ID:        uuid.New(),
		Author:    env.Body.Post.Author.ID,
		PostID:    env.Body.Post.ID,
		Tags:      env.Body.Moderation.Tags,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		log.Error().Err(err).Msg("failed to save recommendation")
	} else {
		log.Info().Msg("saved blog post to recommendations")
	}

	return rabbit.Result{Decision: rabbit.Ack}
}
