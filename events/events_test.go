package events

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseEnvelope(t *testing.T) {
	t.Run("valid creation event", func(t *testing.T) {
		body := []byte(`{"correlationId":"c1","body":{"event":"BLOG_POST_CREATED","post":{"id":42,"author":{"id":7,"email":"a@b.c"},"uri":"/posts/42"}}}`)

		env, err := ParseEnvelope(body)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if env.CorrelationID != "c1" {
			t.Errorf("expected correlationId c1, got %s", env.CorrelationID)
		}
		if env.Body.Post.ID != 42 {
			t.Errorf("expected post id 42, got %d", env.Body.Post.ID)
		}
		if env.Body.Post.Author.ID != 7 {
			t.Errorf("expected author id 7, got %d", env.Body.Post.Author.ID)
		}
		if env.Body.Moderation != nil {
			t.Error("creation event should carry no moderation result")
		}
	})

	t.Run("invalid JSON", func(t *testing.T) {
		if _, err := ParseEnvelope([]byte(`{not json`)); !errors.Is(err, ErrMalformedEnvelope) {
			t.Errorf("expected ErrMalformedEnvelope, got %v", err)
		}
	})

	t.Run("missing correlationId", func(t *testing.T) {
		body := []byte(`{"body":{"post":{"id":42,"author":{"id":7}}}}`)
		if _, err := ParseEnvelope(body); !errors.Is(err, ErrMalformedEnvelope) {
			t.Errorf("expected ErrMalformedEnvelope, got %v", err)
		}
	})

	t.Run("missing post id", func(t *testing.T) {
		body := []byte(`{"correlationId":"c1","body":{"post":{"author":{"id":7}}}}`)
		if _, err := ParseEnvelope(body); !errors.Is(err, ErrMalformedEnvelope) {
			t.Errorf("expected ErrMalformedEnvelope, got %v", err)
		}
	})

	t.Run("missing author id", func(t *testing.T) {
		body := []byte(`{"correlationId":"c1","body":{"post":{"id":42}}}`)
		if _, err := ParseEnvelope(body); !errors.Is(err, ErrMalformedEnvelope) {
			t.Errorf("expected ErrMalformedEnvelope, got %v", err)
		}
	})
}

func TestNewModeratedEvent(t *testing.T) {
	post := PostRef{ID: 42, Author: Author{ID: 7}, URI: "/posts/42"}
	env := NewModeratedEvent("c1", post, []string{"love", "day"})

	if env.CorrelationID != "c1" {
		t.Errorf("correlation id not propagated, got %s", env.CorrelationID)
	}
	if env.Body.Event != BlogPostModerated {
		t.Errorf("expected event %s, got %s", BlogPostModerated, env.Body.Event)
	}
	if env.Body.Moderation == nil {
		t.Fatal("expected moderation result")
	}
	if !env.Body.Moderation.Sentiment.Positive || !env.Body.Moderation.Recommend {
		t.Error("moderated event must carry positive sentiment and recommend")
	}

	// A derived event must parse back through the strict envelope parser.
	data, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	parsed, err := ParseEnvelope(data)
	if err != nil {
		t.Fatalf("round-trip parse: %v", err)
	}
	if parsed.Body.Post.ID != 42 || parsed.Body.Moderation.Tags[0] != "love" {
		t.Errorf("round-trip mismatch: %+v", parsed)
	}
}

func TestNewPostCreatedEvent(t *testing.T) {
	env := NewPostCreatedEvent(PostRef{ID: 1, Author: Author{ID: 2}})
	if env.CorrelationID == "" {
		t.Error("creation event must start a correlation chain")
	}
	if env.Body.Event != BlogPostCreated {
		t.Errorf("expected event %s, got %s", BlogPostCreated, env.Body.Event)
	}
}
