// Package hub fans clipboard change events out to any number of subscribers.
//
// Publishing never blocks: each subscriber has a bounded buffer and, when it
// is full, the oldest undelivered event is discarded to make room. The
// producer's cadence is authoritative, not subscriber consumption.
package hub

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultBuffer is the per-subscriber buffer used when Subscribe is given a
// non-positive size.
const DefaultBuffer = 16

// Event is a clipboard change delivered to subscribers.
type Event struct {
	Content string
	At      time.Time
}

// Subscription is a single subscriber's view of the event stream.
type Subscription struct {
	id      uint64
	h       *Hub
	ch      chan Event
	once    sync.Once
	dropped atomic.Uint64
}

// C returns the event channel. It is closed when the subscription or the hub
// is closed.
func (s *Subscription) C() <-chan Event { return s.ch }

// Dropped returns how many events were discarded because the buffer was full.
func (s *Subscription) Dropped() uint64 { return s.dropped.Load() }

// Close unregisters the subscription and closes its channel. Safe to call
// more than once.
func (s *Subscription) Close() { s.h.unregister(s) }

// Hub routes change events to all registered subscribers.
type Hub struct {
	mu     sync.Mutex
	subs   map[uint64]*Subscription
	nextID uint64
	closed bool

	latest    Event
	hasLatest bool
}

// New returns an empty Hub.
func New() *Hub {
	return &Hub{subs: make(map[uint64]*Subscription)}
}

// Subscribe registers a subscriber with a buffer of buf events. Subscribing
// to a closed hub returns an already-closed subscription.
func (h *Hub) Subscribe(buf int) *Subscription {
	if buf <= 0 {
		buf = DefaultBuffer
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	s := &Subscription{id: h.nextID, h: h, ch: make(chan Event, buf)}
	if h.closed {
		s.once.Do(func() { close(s.ch) })
		return s
	}
	h.subs[s.id] = s
	slog.Debug("hub subscriber registered", "id", s.id, "total", len(h.subs))
	return s
}

func (h *Hub) unregister(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[s.id]; ok {
		delete(h.subs, s.id)
		slog.Debug("hub subscriber unregistered", "id", s.id, "total", len(h.subs))
	}
	s.once.Do(func() { close(s.ch) })
}

// Publish records ev as the latest event and delivers it to every subscriber.
func (h *Hub) Publish(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.latest = ev
	h.hasLatest = true
	for _, s := range h.subs {
		deliver(s, ev)
	}
}

// Latest returns the most recently published event, if any.
func (h *Hub) Latest() (Event, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.latest, h.hasLatest
}

// Close closes every subscription and rejects further publishes.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for id, s := range h.subs {
		delete(h.subs, id)
		s.once.Do(func() { close(s.ch) })
	}
}

// deliver sends ev without blocking, evicting the oldest buffered event if the
// subscriber is full. Must be called with h.mu held.
func deliver(s *Subscription, ev Event) {
	select {
	case s.ch <- ev:
		return
	default:
	}
	select {
	case <-s.ch:
		n := s.dropped.Add(1)
		slog.Warn("hub subscriber full, dropping oldest event", "id", s.id, "dropped", n)
	default:
	}
	select {
	case s.ch <- ev:
	default:
	}
}
