package rabbit

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/brdnvt/django-blog-recommendation-system/events"
)

type fakeAcker struct {
	acks     int
	nacks    int
	requeues []bool
	log      *[]string
}

func (f *fakeAcker) Ack(bool) error {
	f.acks++
	if f.log != nil {
		*f.log = append(*f.log, "ack")
	}
	return nil
}

func (f *fakeAcker) Nack(_, requeue bool) error {
	f.nacks++
	f.requeues = append(f.requeues, requeue)
	return nil
}

type fakePublisher struct {
	published []string
	err       error
	log       *[]string
}

func (f *fakePublisher) Publish(_ context.Context, routingKey string, _ *events.Envelope) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, routingKey)
	if f.log != nil {
		*f.log = append(*f.log, "publish")
	}
	return nil
}

func newTestConsumer(handler Handler, pub EventPublisher) *Consumer {
	return NewConsumer(nil, "test-queue", handler, pub, zerolog.Nop())
}

func TestProcessDecisions(t *testing.T) {
	msg := Message{RoutingKey: "blog.event.moderation", Body: []byte(`{}`)}

	t.Run("ack decision acks exactly once", func(t *testing.T) {
		ack := &fakeAcker{}
		c := newTestConsumer(func(context.Context, Message) Result {
			return Result{Decision: Ack}
		}, nil)

		c.process(context.Background(), msg, ack)

		if ack.acks != 1 || ack.nacks != 0 {
			t.Errorf("expected exactly one ack, got acks=%d nacks=%d", ack.acks, ack.nacks)
		}
	})

	t.Run("discard decision nacks without requeue", func(t *testing.T) {
		ack := &fakeAcker{}
		c := newTestConsumer(func(context.Context, Message) Result {
			return Result{Decision: NackDiscard}
		}, nil)

		c.process(context.Background(), msg, ack)

		if ack.acks != 0 || ack.nacks != 1 {
			t.Fatalf("expected exactly one nack, got acks=%d nacks=%d", ack.acks, ack.nacks)
		}
		if ack.requeues[0] {
			t.Error("discard must not requeue")
		}
	})

	t.Run("requeue decision nacks with requeue", func(t *testing.T) {
		ack := &fakeAcker{}
		c := newTestConsumer(func(context.Context, Message) Result {
			return Result{Decision: NackRequeue}
		}, nil)

		c.process(context.Background(), msg, ack)

		if ack.nacks != 1 || !ack.requeues[0] {
			t.Error("expected nack with requeue")
		}
	})

	t.Run("handler panic converts to discard", func(t *testing.T) {
		ack := &fakeAcker{}
		c := newTestConsumer(func(context.Context, Message) Result {
			panic("boom")
		}, nil)

		c.process(context.Background(), msg, ack)

		if ack.acks != 0 || ack.nacks != 1 || ack.requeues[0] {
			t.Errorf("expected nack without requeue after panic, got acks=%d nacks=%d", ack.acks, ack.nacks)
		}
	})
}

func TestProcessFollowUps(t *testing.T) {
	env := events.NewModeratedEvent("c1", events.PostRef{ID: 42, Author: events.Author{ID: 7}}, nil)

	t.Run("follow-ups publish after ack", func(t *testing.T) {
		var order []string
		ack := &fakeAcker{log: &order}
		pub := &fakePublisher{log: &order}
		c := newTestConsumer(func(context.Context, Message) Result {
			return Result{Decision: Ack, FollowUps: []OutboundEvent{
				{RoutingKey: "blog.event.recommendation", Envelope: env},
				{RoutingKey: "blog.event.notification", Envelope: env},
			}}
		}, pub)

		c.process(context.Background(), Message{Body: []byte(`{}`)}, ack)

		want := []string{"ack", "publish", "publish"}
		if len(order) != 3 || order[0] != "ack" {
			t.Errorf("expected order %v, got %v", want, order)
		}
		if len(pub.published) != 2 {
			t.Errorf("expected 2 publishes, got %d", len(pub.published))
		}
	})

	t.Run("no follow-ups on nack", func(t *testing.T) {
		pub := &fakePublisher{}
		c := newTestConsumer(func(context.Context, Message) Result {
			return Result{Decision: NackDiscard, FollowUps: []OutboundEvent{
				{RoutingKey: "blog.event.recommendation", Envelope: env},
			}}
		}, pub)

		c.process(context.Background(), Message{Body: []byte(`{}`)}, &fakeAcker{})

		if len(pub.published) != 0 {
			t.Errorf("nacked message must not publish, got %d publishes", len(pub.published))
		}
	})

	t.Run("publish failure does not retract the ack", func(t *testing.T) {
		ack := &fakeAcker{}
		pub := &fakePublisher{err: errors.New("broker gone")}
		c := newTestConsumer(func(context.Context, Message) Result {
			return Result{Decision: Ack, FollowUps: []OutboundEvent{
				{RoutingKey: "blog.event.recommendation", Envelope: env},
			}}
		}, pub)

		c.process(context.Background(), Message{Body: []byte(`{}`)}, ack)

		if ack.acks != 1 || ack.nacks != 0 {
			t.Errorf("expected ack to stand, got acks=%d nacks=%d", ack.acks, ack.nacks)
		}
	})
}
