package events

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	TopicUsers    = "user_events"
	TopicProducts = "product_events"
	TopicCart     = "cart_events"
	TopicOrders   = "order_events"
	TopicAbout    = "about_events"

	publishTimeout = 5 * time.Second
)

var Topics = []string{TopicUsers, TopicProducts, TopicCart, TopicOrders, TopicAbout}

type Publisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
	Close() error
}

// Publish sends an event with a bounded timeout. Failures are logged and
// never returned to the caller.
func Publish(ctx context.Context, p Publisher, l *slog.Logger, topic, key string, event any) {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := p.PublishEvent(ctx, topic, key, event); err != nil {
		l.Warn("publish_event_error", "topic", topic, "key", key, "error", err)
	}
}

type NopPublisher struct{}

func (NopPublisher) PublishEvent(context.Context, string, string, any) error { return nil }
func (NopPublisher) Close() error                                            { return nil }

type Event struct {
	Topic string
	Key   string
	Body  any
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	Err    error
}

func (r *Recorder) PublishEvent(_ context.Context, topic, key string, event any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.events = append(r.events, Event{Topic: topic, Key: key, Body: event})
	return nil
}

func (r *Recorder) Close() error { return nil }

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Types lists the "type" field of every recorded map event.
func (r *Recorder) Types() []string {
	var out []string
	for _, e := range r.Events() {
		if m, ok := e.Body.(map[string]any); ok {
			if t, ok := m["type"].(string); ok {
				out = append(out, t)
			}
		}
	}
	return out
}
