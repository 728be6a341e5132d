// Package observe provides a latest-value cell that many goroutines can watch.
package observe

import (
	"context"
	"sync"
)

// Value holds a value of type T and notifies subscribers on every Set.
//
// Subscribers always see the most recent value but may miss intermediate
// ones: each subscription buffers a single value and a newer Set replaces an
// unread one. Set never blocks on slow subscribers.
//
// Values are handed out as-is; callers that store slices or maps must not
// mutate them after Set.
type Value[T any] struct {
	mu   sync.Mutex
	v    T
	subs map[chan T]struct{}
}

// NewValue returns a Value initialised to v.
func NewValue[T any](v T) *Value[T] {
	return &Value[T]{v: v, subs: make(map[chan T]struct{})}
}

// Get returns the current value.
func (x *Value[T]) Get() T {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.v
}

// Set replaces the value and notifies subscribers.
func (x *Value[T]) Set(v T) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.v = v
	for ch := range x.subs {
		offer(ch, v)
	}
}

// Subscribe returns a channel that immediately receives the current value and
// then each subsequent one. The channel is closed after ctx is done.
func (x *Value[T]) Subscribe(ctx context.Context) <-chan T {
	ch := make(chan T, 1)

	x.mu.Lock()
	ch <- x.v
	x.subs[ch] = struct{}{}
	x.mu.Unlock()

	go func() {
		<-ctx.Done()
		x.mu.Lock()
		delete(x.subs, ch)
		close(ch)
		x.mu.Unlock()
	}()
	return ch
}

// Subscribers returns the number of live subscriptions.
func (x *Value[T]) Subscribers() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.subs)
}

// offer delivers v, discarding a stale unread value if necessary. Only called
// with the owning Value locked, so no other sender races for the slot.
func offer[T any](ch chan T, v T) {
	select {
	case ch <- v:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- v:
	default:
	}
}
