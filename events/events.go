package events

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Event kinds observed on the blog event exchange. The archive consumer is
// schema-agnostic, so new kinds may appear without breaking it.
const (
	BlogPostCreated   = "BLOG_POST_CREATED"
	BlogPostModerated = "BLOG_POST_MODERATED"
)

// ErrMalformedEnvelope marks messages that fail the strict parse step. The
// moderation consumer dead-letters these without requeue.
var ErrMalformedEnvelope = errors.New("malformed event envelope")

// Author identifies the user who wrote a post. Email is optional on the wire.
type Author struct {
	ID    int64  `json:"id"`
	Email string `json:"email,omitempty"`
}

// PostRef identifies the subject post of an event. Immutable once the event
// is created.
type PostRef struct {
	ID     int64  `json:"id"`
	Author Author `json:"author"`
	URI    string `json:"uri,omitempty"`
}

type Sentiment struct {
	Positive bool `json:"positive"`
}

// ModerationResult is derived by the pipeline, never user-supplied. Tags
// enrich the persisted recommendation record and have no bearing on the
// recommend decision.
type ModerationResult struct {
	Sentiment Sentiment `json:"sentiment"`
	Recommend bool      `json:"recommend"`
	Tags      []string  `json:"tags,omitempty"`
}

type Body struct {
	Event      string            `json:"event,omitempty"`
	Post       PostRef           `json:"post"`
	Moderation *ModerationResult `json:"moderation,omitempty"`
}

// Envelope is the outer message wrapper on the event exchange. The
// correlation id ties a causal chain of events together and is propagated
// unchanged through every derived event.
type Envelope struct {
	CorrelationID string `json:"correlationId"`
	Body          Body   `json:"body"`
}

// ParseEnvelope decodes and validates an envelope, failing closed on any
// missing required field.
func ParseEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	if env.CorrelationID == "" {
		return nil, fmt.Errorf("%w: missing correlationId", ErrMalformedEnvelope)
	}
	if env.Body.Post.ID == 0 {
		return nil, fmt.Errorf("%w: missing post id", ErrMalformedEnvelope)
	}
	if env.Body.Post.Author.ID == 0 {
		return nil, fmt.Errorf("%w: missing post author id", ErrMalformedEnvelope)
	}
	return &env, nil
}

// NewPostCreatedEvent starts a fresh causal chain for a newly created post.
func NewPostCreatedEvent(post PostRef) *Envelope {
	return &Envelope{
		CorrelationID: uuid.NewString(),
		Body: Body{
			Event: BlogPostCreated,
			Post:  post,
		},
	}
}

// NewModeratedEvent derives the downstream moderation event for a
// positively scored post, carrying the original correlation id.
func NewModeratedEvent(correlationID string, post PostRef, tags []string) *Envelope {
	return &Envelope{
		CorrelationID: correlationID,
		Body: Body{
			Event: BlogPostModerated,
			Post:  post,
			Moderation: &ModerationResult{
				Sentiment: Sentiment{Positive: true},
				Recommend: true,
				Tags:      tags,
			},
		},
	}
}
