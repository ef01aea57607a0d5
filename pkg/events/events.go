// Package events defines the outbound playback event contract. The engine
// publishes typed events to a caller-supplied sink; delivery is
// fire-and-forget with no back-pressure.
package events

import (
	"sync"
	"time"
)

// Kind identifies an event type.
type Kind string

// Event kinds emitted by the playback engine.
const (
	PlaybackStarted   Kind = "playback_started"
	StepStarted       Kind = "step_started"
	StepCompleted     Kind = "step_completed"
	StepFailed        Kind = "step_failed"
	PlaybackPaused    Kind = "playback_paused"
	PlaybackResumed   Kind = "playback_resumed"
	PlaybackCompleted Kind = "playback_completed"
	PlaybackStopped   Kind = "playback_stopped"
)

// Event is one playback notification.
type Event struct {
	Kind        Kind           `json:"kind"`
	JourneyID   string         `json:"journeyId"`
	ExecutionID string         `json:"executionId"`
	StepID      string         `json:"stepId,omitempty"`
	Data        map[string]any `json:"data,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
}

// Sink receives playback events. Implementations must not block; the engine
// calls Publish inline between steps.
type Sink interface {
	Publish(e Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(e Event)

// Publish calls the function.
func (f SinkFunc) Publish(e Event) { f(e) }

// Discard is a Sink that drops every event.
var Discard Sink = SinkFunc(func(Event) {})

// Broadcaster fans events out to multiple sinks.
type Broadcaster struct {
	mu    sync.RWMutex
	sinks []Sink
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster(sinks ...Sink) *Broadcaster {
	return &Broadcaster{sinks: sinks}
}

// Attach adds a sink.
func (b *Broadcaster) Attach(s Sink) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sinks = append(b.sinks, s)
}

// Publish delivers the event to every attached sink.
func (b *Broadcaster) Publish(e Event) {
	b.mu.RLock()
	sinks := b.sinks
	b.mu.RUnlock()

	for _, s := range sinks {
		s.Publish(e)
	}
}

// History is a fixed-capacity ring buffer sink. The monitor server reads it.
type History struct {
	mu   sync.Mutex
	buf  []Event
	next int
	full bool
}

// NewHistory creates a history sink holding up to capacity events.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = 256
	}
	return &History{buf: make([]Event, capacity)}
}

// Publish records the event, evicting the oldest when full.
func (h *History) Publish(e Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.buf[h.next] = e
	h.next = (h.next + 1) % len(h.buf)
	if h.next == 0 {
		h.full = true
	}
}

// Recent returns the recorded events, oldest first.
func (h *History) Recent() []Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.full {
		out := make([]Event, h.next)
		copy(out, h.buf[:h.next])
		return out
	}

	out := make([]Event, 0, len(h.buf))
	out = append(out, h.buf[h.next:]...)
	out = append(out, h.buf[:h.next]...)
	return out
}
