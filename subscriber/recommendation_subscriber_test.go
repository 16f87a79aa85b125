package subscriber

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/brdnvt/django-blog-recommendation-system/events"
	models "github.com/brdnvt/django-blog-recommendation-system/model"
	"github.com/brdnvt/django-blog-recommendation-system/rabbit"
)

type fakeRecommendationRepo struct {
	created []*models.Recommendation
	err     error
}

func (f *fakeRecommendationRepo) Create(_ context.Context, rec *models.Recommendation) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, rec)
	return nil
}

func (f *fakeRecommendationRepo) GetForUser(context.Context, int64) ([]models.Recommendation, error) {
	return nil, nil
}

func moderatedEvent(t *testing.T, recommend bool, tags []string) []byte {
	t.Helper()
	env := events.Envelope{
		CorrelationID: "c1",
		Body: events.Body{
			Event: events.BlogPostModerated,
			Post:  events.PostRef{ID: 42, Author: events.Author{ID: 7}},
			Moderation: &events.ModerationResult{
				Sentiment: events.Sentiment{Positive: recommend},
				Recommend: recommend,
				Tags:      tags,
			},
		},
	}
	data, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}

func TestRecommendationSubscriberHandle(t *testing.T) {
	t.Run("recommend true stores exactly one record", func(t *testing.T) {
		repo := &fakeRecommendationRepo{}
		sub := NewRecommendationSubscriber(repo, zerolog.Nop())

		res := sub.Handle(context.Background(), rabbit.Message{Body: moderatedEvent(t, true, []string{"love", "day"})})

		if res.Decision != rabbit.Ack {
			t.Errorf("expected Ack, got %v", res.Decision)
		}
		if len(repo.created) != 1 {
			t.Fatalf("expected one stored record, got %d", len(repo.created))
		}
		rec := repo.created[0]
		if rec.Author != 7 || rec.PostID != 42 {
			t.Errorf("stored record mismatch: author=%d post=%d", rec.Author, rec.PostID)
		}
		if len(rec.Tags) != 2 || rec.Tags[0] != "love" {
			t.Errorf("tags not carried over: %v", rec.Tags)
		}
	})

	t.Run("recommend false stores nothing", func(t *testing.T) {
		repo := &fakeRecommendationRepo{}
		sub := NewRecommendationSubscriber(repo, zerolog.Nop())

		res := sub.Handle(context.Background(), rabbit.Message{Body: moderatedEvent(t, false, nil)})

		if res.Decision != rabbit.Ack {
			t.Errorf("expected Ack, got %v", res.Decision)
		}
		if len(repo.created) != 0 {
			t.Errorf("expected no stored records, got %d", len(repo.created))
		}
	})

	t.Run("unparseable event is acked and ignored", func(t *testing.T) {
		repo := &fakeRecommendationRepo{}
		sub := NewRecommendationSubscriber(repo, zerolog.Nop())

		res := sub.Handle(context.Background(), rabbit.Message{Body: []byte(`{not json`)})

		if res.Decision != rabbit.Ack {
			t.Errorf("expected Ack, got %v", res.Decision)
		}
		if len(repo.created) != 0 {
			t.Errorf("expected no stored records, got %d", len(repo.created))
		}
	})

	t.Run("storage failure does not block acknowledgment", func(t *testing.T) {
		repo := &fakeRecommendationRepo{err: errors.New("db down")}
		sub := NewRecommendationSubscriber(repo, zerolog.Nop())

		res := sub.Handle(context.Background(), rabbit.Message{Body: moderatedEvent(t, true, nil)})

		if res.Decision != rabbit.Ack {
			t.Errorf("best-effort path must still ack, got %v", res.Decision)
		}
	})
}
