// Package monitor watches the system clipboard for new text.
//
// A Monitor samples its clip.Backend on a fixed interval and publishes every
// sample that is non-blank and differs from the last known content. Writes
// made through the Monitor update that baseline, so copying a history entry
// back onto the clipboard is not recaptured as a new item.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.klb.dev/pastecopy/internal/clip"
	"go.klb.dev/pastecopy/internal/hub"
)

// DefaultInterval is the polling period used when none is configured.
const DefaultInterval = 500 * time.Millisecond

// Option configures a Monitor.
type Option func(*Monitor)

// WithInterval sets the polling period. Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithClock overrides the time source used to stamp events.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) { m.now = now }
}

// Monitor polls a clipboard backend and broadcasts changes.
type Monitor struct {
	backend  clip.Backend
	hub      *hub.Hub
	interval time.Duration
	now      func() time.Time

	// io serializes backend access so a poll cannot interleave with a Write
	// and compare a pre-write sample against the post-write baseline.
	io sync.Mutex

	mu      sync.Mutex
	last    string
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

// New creates a stopped Monitor over backend.
func New(backend clip.Backend, opts ...Option) *Monitor {
	m := &Monitor{
		backend:  backend,
		hub:      hub.New(),
		interval: DefaultInterval,
		now:      time.Now,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Backend returns the clipboard backend being monitored.
func (m *Monitor) Backend() clip.Backend { return m.backend }

// Interval returns the polling period.
func (m *Monitor) Interval() time.Duration { return m.interval }

// Start takes a baseline sample and begins polling in the background. It is
// a no-op if the Monitor is already running.
//
// If the baseline sample fails, the previous baseline (if any) is kept.
func (m *Monitor) Start() {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return
	}
	m.running = true
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	m.cancel = cancel
	m.done = done
	m.mu.Unlock()

	m.io.Lock()
	if text, err := m.backend.Read(); err != nil {
		slog.Warn("clipboard baseline read failed", "err", err)
	} else {
		m.setLast(text)
	}
	m.io.Unlock()

	slog.Info("clipboard monitor started", "backend", m.backend.Name(), "interval", m.interval)
	go m.run(ctx, done)
}

// Stop halts polling and waits for the polling goroutine to exit. The last
// known content is retained, so a later Start does not re-emit it. Safe to
// call multiple times or before Start.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.mu.Unlock()

	cancel()
	<-done
	slog.Info("clipboard monitor stopped")
}

// Close stops polling and closes every subscription.
func (m *Monitor) Close() {
	m.Stop()
	m.hub.Close()
}

// Running reports whether the polling loop is active.
func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Subscribe returns a subscription to change events with a buffer of buf.
func (m *Monitor) Subscribe(buf int) *hub.Subscription {
	return m.hub.Subscribe(buf)
}

// LastChange returns when the most recent clipboard change was observed.
// It reports false until the first change since the monitor was created.
func (m *Monitor) LastChange() (time.Time, bool) {
	ev, ok := m.hub.Latest()
	return ev.At, ok
}

// Last returns the last known clipboard content.
func (m *Monitor) Last() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

// Read samples the clipboard once, independent of polling state.
func (m *Monitor) Read() (string, error) {
	m.io.Lock()
	defer m.io.Unlock()
	text, err := m.backend.Read()
	if err != nil {
		return "", fmt.Errorf("clipboard read: %w", err)
	}
	return text, nil
}

// Write puts text on the clipboard and records it as the last known content
// so the next poll does not report it as a change. The baseline is left
// untouched if the write fails.
func (m *Monitor) Write(text string) error {
	m.io.Lock()
	defer m.io.Unlock()
	if err := m.backend.Write(text); err != nil {
		return fmt.Errorf("clipboard write: %w", err)
	}
	m.setLast(text)
	return nil
}

// Poll samples the clipboard once and publishes the content if it changed.
// The polling loop calls it on every tick. Read errors are logged and
// otherwise ignored. Reports whether an event was published.
func (m *Monitor) Poll() bool {
	m.io.Lock()
	text, err := m.backend.Read()
	if err != nil {
		m.io.Unlock()
		slog.Warn("clipboard read failed", "err", err)
		return false
	}
	if strings.TrimSpace(text) == "" {
		m.io.Unlock()
		return false
	}
	m.mu.Lock()
	changed := text != m.last
	if changed {
		m.last = text
	}
	m.mu.Unlock()
	m.io.Unlock()

	if !changed {
		return false
	}
	hub.LogContent("clipboard changed", text)
	m.hub.Publish(hub.Event{Content: text, At: m.now()})
	return true
}

func (m *Monitor) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	t := time.NewTicker(m.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.Poll()
		}
	}
}

func (m *Monitor) setLast(text string) {
	m.mu.Lock()
	m.last = text
	m.mu.Unlock()
}
