package testutil

import (
	"context"
	"sync"

	"gramofonctl/internal/event"
)

// Recorder captures every event published on a bus for later inspection.
type Recorder struct {
	mu     sync.Mutex
	events []event.Event
	unsub  func()
}

// NewRecorder subscribes to all topics on the bus and records what arrives.
func NewRecorder(bus *event.Bus) *Recorder {
	r := &Recorder{}
	r.unsub = bus.SubscribeAll(func(_ context.Context, e event.Event) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.events = append(r.events, e)
	})
	return r
}

// Events returns a copy of everything recorded so far, in arrival order.
func (r *Recorder) Events() []event.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]event.Event, len(r.events))
	copy(out, r.events)
	return out
}

// Topic returns only the recorded events for one topic.
func (r *Recorder) Topic(topic string) []event.Event {
	var out []event.Event
	for _, e := range r.Events() {
		if e.Topic == topic {
			out = append(out, e)
		}
	}
	return out
}

// Close stops recording.
func (r *Recorder) Close() {
	if r.unsub != nil {
		r.unsub()
	}
}
