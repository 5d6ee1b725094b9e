package hub

import (
	"fmt"
	"sync"
	"time"

	"github.com/vaibhavi8/autoplay/core"
	"github.com/vaibhavi8/autoplay/logging"
)

// EventType labels the topic an event belongs to.
type EventType string

const (
	EventStateUpdated      EventType = "state-updated"
	EventScreenshotUpdated EventType = "screenshot-updated"
	EventCommentaryAdded   EventType = "commentary-added"
	EventAssignmentChanged EventType = "assignment-changed"
)

// Event is the envelope fanned out to subscribers. Exactly one payload
// field is set, matching Type.
type Event struct {
	Type       EventType              `json:"type"`
	State      *core.GameState        `json:"state,omitempty"`
	Frame      []byte                 `json:"frame,omitempty"`
	Commentary *core.CommentaryEntry  `json:"commentary,omitempty"`
	Assignment *core.AssignmentConfig `json:"assignment,omitempty"`
}

// Options configures a Hub.
type Options struct {
	// BufferSize bounds each subscriber's queue. When a queue is full
	// the oldest queued event is dropped in favour of the new one.
	BufferSize int
	// History persists commentary entries. Defaults to in-memory.
	History HistoryStore
	// Logger receives drop diagnostics.
	Logger logging.Logger
}

// Hub is the publish/subscribe fan-out point between the orchestrator and
// its observers. All methods are safe for concurrent use; publication never
// blocks on a subscriber.
type Hub struct {
	opts Options

	mu      sync.Mutex
	subs    map[string]*Subscription
	nextSeq uint64
}

// New constructs a Hub. If the history store already holds entries (a
// persistent store reopened across runs), numbering resumes after the last
// recorded sequence.
func New(optFns ...func(o *Options)) (*Hub, error) {
	opts := Options{
		BufferSize: 64,
		History:    NewInMemoryStore(),
		Logger:     logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	last, err := opts.History.LastSeq()
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	return &Hub{
		opts:    opts,
		subs:    make(map[string]*Subscription),
		nextSeq: last,
	}, nil
}

// Subscription is one observer's bounded event queue.
type Subscription struct {
	id  string
	ch  chan Event
	hub *Hub

	closeOnce sync.Once
}

// Events returns the subscriber's receive channel. It is closed by Close.
func (s *Subscription) Events() <-chan Event { return s.ch }

// Close detaches the subscription and closes its channel. Safe to call more
// than once.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		s.hub.mu.Lock()
		delete(s.hub.subs, s.id)
		s.hub.mu.Unlock()
		close(s.ch)
	})
}

// Subscribe registers a new observer.
func (h *Hub) Subscribe() *Subscription {
	sub := &Subscription{
		id:  core.NewID(),
		ch:  make(chan Event, h.opts.BufferSize),
		hub: h,
	}
	h.mu.Lock()
	h.subs[sub.id] = sub
	h.mu.Unlock()
	return sub
}

// PublishCommentary appends an entry with the next sequence number and fans
// it out. Sequence numbers are gapless: if the history store rejects the
// append, no number is consumed and nothing is broadcast.
func (h *Hub) PublishCommentary(text, source string) (core.CommentaryEntry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	entry := core.CommentaryEntry{
		Seq:       h.nextSeq + 1,
		Text:      text,
		Source:    source,
		Timestamp: time.Now().UTC(),
	}
	if err := h.opts.History.Append(entry); err != nil {
		return core.CommentaryEntry{}, fmt.Errorf("append commentary: %w", err)
	}
	h.nextSeq = entry.Seq

	h.fanOutLocked(Event{Type: EventCommentaryAdded, Commentary: &entry})
	return entry, nil
}

// PublishState broadcasts a snapshot to the state topic.
func (h *Hub) PublishState(state core.GameState) {
	s := state.Clone()
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fanOutLocked(Event{Type: EventStateUpdated, State: &s})
}

// PublishFrame broadcasts an encoded screenshot.
func (h *Hub) PublishFrame(png []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fanOutLocked(Event{Type: EventScreenshotUpdated, Frame: png})
}

// PublishAssignment broadcasts a reconfiguration.
func (h *Hub) PublishAssignment(cfg core.AssignmentConfig) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fanOutLocked(Event{Type: EventAssignmentChanged, Assignment: &cfg})
}

// History returns the most recent commentary entries in order, for late
// joiners to catch up.
func (h *Hub) History(limit int) ([]core.CommentaryEntry, error) {
	return h.opts.History.History(limit)
}

// fanOutLocked delivers an event to every subscriber without blocking. A
// full queue sheds its oldest event; the publishing call never waits.
func (h *Hub) fanOutLocked(ev Event) {
	for id, sub := range h.subs {
		select {
		case sub.ch <- ev:
			continue
		default:
		}
		select {
		case <-sub.ch:
			h.opts.Logger.Debug("subscriber queue full, dropped oldest event", "subscriber", id)
		default:
		}
		select {
		case sub.ch <- ev:
		default:
			// Subscriber raced a close; skip for this event.
		}
	}
}
