package moderation

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/brdnvt/django-blog-recommendation-system/events"
	"github.com/brdnvt/django-blog-recommendation-system/rabbit"
)

// Fetcher retrieves the full text of a post from the blog platform.
type Fetcher interface {
	FetchText(ctx context.Context, postID int64) (string, error)
}

// Classifier scores post text. Classification cannot fail; the decision is
// a boolean and the tags only enrich the persisted record.
type Classifier interface {
	Classify(text string) (recommend bool, tags []string)
}

// Moderator handles blog post creation events: parse, fetch, classify, and
// on positive sentiment emit a moderated event downstream. The moderation
// decision itself is never a failure condition; only the inability to
// evaluate it is, and those messages are dead-lettered without requeue so
// a poison message cannot loop.
type Moderator struct {
	fetcher           Fetcher
	classifier        Classifier
	recommendationKey string
	notificationKey   string
	log               zerolog.Logger
}

func NewModerator(fetcher Fetcher, classifier Classifier, recommendationKey, notificationKey string, log zerolog.Logger) *Moderator {
	return &Moderator{
		fetcher:           fetcher,
		classifier:        classifier,
		recommendationKey: recommendationKey,
		notificationKey:   notificationKey,
		log:               log,
	}
}

// Handle moderates one creation event. Follow-up events are published by
// the consumer only after the source message is acknowledged.
func (m *Moderator) Handle(ctx context.Context, msg rabbit.Message) rabbit.Result {
	env, err := events.ParseEnvelope(msg.Body)
	if err != nil {
		m.log.Warn().Err(err).Msg("rejecting unparseable creation event")
		return rabbit.Result{Decision: rabbit.NackDiscard}
	}

	log := m.log.With().
		Str("correlation_id", env.CorrelationID).
		Int64("post_id", env.Body.Post.ID).
		Logger()

	text, err := m.fetcher.FetchText(ctx, env.Body.Post.ID)
	if err != nil {
		log.Error().Err(err).Msg("failed to get post information from API")
		return rabbit.Result{Decision: rabbit.NackDiscard}
	}

	recommend, tags := m.classifier.Classify(text)
	log.Info().Bool("positive_sentiment", recommend).Msg("blog post moderated")

	if !recommend {
		return rabbit.Result{Decision: rabbit.Ack}
	}

	moderated := events.NewModeratedEvent(env.CorrelationID, env.Body.Post, tags)
	return rabbit.Result{
		Decision: rabbit.Ack,
		FollowUps: []rabbit.OutboundEvent{
			{RoutingKey: m.recommendationKey, Envelope: moderated},
			{RoutingKey: m.notificationKey, Envelope: moderated},
		},
	}
}
