// Package service wires the clipboard monitor into the history store and
// exposes the operation surface used by the presentation layer.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.klb.dev/pastecopy/internal/history"
	"go.klb.dev/pastecopy/internal/hub"
	"go.klb.dev/pastecopy/internal/model"
	"go.klb.dev/pastecopy/internal/monitor"
)

// ErrNotFound is returned by operations addressed to an unknown entry id
// when the caller needs to know nothing happened.
var ErrNotFound = errors.New("entry not found")

// Status is a point-in-time summary of the service.
type Status struct {
	Running      bool            `json:"running"`
	Backend      string          `json:"backend"`
	PollInterval time.Duration   `json:"pollInterval"`
	Entries      int             `json:"entries"`
	Pinned       int             `json:"pinned"`
	Config       model.AppConfig `json:"config"`
	LastChange   time.Time       `json:"lastChange,omitzero"`
}

// Option configures a Service.
type Option func(*Service)

// WithBuffer sets the change-event buffer between monitor and store.
func WithBuffer(n int) Option {
	return func(s *Service) { s.buffer = n }
}

// Service orchestrates a Monitor and a history Store.
//
// It has two states: stopped and running. Start and Stop are idempotent.
type Service struct {
	monitor *monitor.Monitor
	store   *history.Store
	buffer  int

	mu   sync.Mutex
	sub  *hub.Subscription
	done chan struct{}
}

// New returns a stopped Service.
func New(m *monitor.Monitor, store *history.Store, opts ...Option) *Service {
	s := &Service{monitor: m, store: store, buffer: hub.DefaultBuffer}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Start begins monitoring and feeds every detected change into the store.
// No-op if already running.
func (s *Service) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sub != nil {
		return
	}

	// Subscribe before starting so the first change cannot slip past.
	sub := s.monitor.Subscribe(s.buffer)
	done := make(chan struct{})
	s.sub, s.done = sub, done
	s.monitor.Start()

	go s.consume(sub, done)
	slog.Info("clipboard service started")
}

// Stop halts monitoring and waits for the consumer to drain. No-op if
// already stopped.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sub == nil {
		return
	}

	s.monitor.Stop()
	s.sub.Close()
	<-s.done
	s.sub, s.done = nil, nil
	slog.Info("clipboard service stopped")
}

// Close stops the service and releases the monitor's subscriptions.
func (s *Service) Close() {
	s.Stop()
	s.monitor.Close()
}

// Running reports whether the service is started.
func (s *Service) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sub != nil
}

func (s *Service) consume(sub *hub.Subscription, done chan struct{}) {
	defer close(done)
	for ev := range sub.C() {
		// A false return is the adjacent-duplicate rule at work, not an error.
		if !s.store.Insert(ev.Content) {
			slog.Debug("clipboard change matches latest entry, skipped")
		}
	}
}

// CopyItemToClipboard puts e's content back on the system clipboard. The
// monitor records the write as its baseline, so it is not captured again.
func (s *Service) CopyItemToClipboard(e model.Entry) error {
	if err := s.monitor.Write(e.Content); err != nil {
		slog.Warn("copy to clipboard failed", "id", e.ID, "err", err)
		return err
	}
	slog.Debug("entry copied to clipboard", "id", e.ID)
	return nil
}

// CopyByID looks up an entry and copies it to the clipboard.
func (s *Service) CopyByID(id string) (model.Entry, error) {
	e, ok := s.store.Get(id)
	if !ok {
		return model.Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err := s.CopyItemToClipboard(e); err != nil {
		return e, err
	}
	return e, nil
}

// CopyText writes text to the clipboard and records it in history, the way
// an ordinary copy in another application would end up. Reports whether a
// new entry was recorded.
func (s *Service) CopyText(text string) (bool, error) {
	if err := s.monitor.Write(text); err != nil {
		slog.Warn("copy to clipboard failed", "err", err)
		return false, err
	}
	return s.store.Insert(text), nil
}

// Current returns the live clipboard text.
func (s *Service) Current() (string, error) {
	return s.monitor.Read()
}

// Items returns the history in presentation order.
func (s *Service) Items() []model.Entry { return s.store.Items() }

// Get returns a single entry.
func (s *Service) Get(id string) (model.Entry, bool) { return s.store.Get(id) }

// Delete removes an entry. Unknown ids are ignored.
func (s *Service) Delete(id string) bool { return s.store.Delete(id) }

// TogglePin flips an entry's pinned flag. Unknown ids are ignored.
func (s *Service) TogglePin(id string) (model.Entry, bool) { return s.store.TogglePin(id) }

// Search filters history by case-insensitive substring.
func (s *Service) Search(query string) []model.Entry { return s.store.Search(query) }

// ClearHistory removes entries, optionally keeping pinned ones.
func (s *Service) ClearHistory(keepPinned bool) int { return s.store.Clear(keepPinned) }

// Config returns the current configuration.
func (s *Service) Config() model.AppConfig { return s.store.Config() }

// UpdateConfig replaces the configuration.
func (s *Service) UpdateConfig(cfg model.AppConfig) error { return s.store.UpdateConfig(cfg) }

// ObserveItems streams history snapshots until ctx is done.
func (s *Service) ObserveItems(ctx context.Context) <-chan []model.Entry {
	return s.store.ObserveItems(ctx)
}

// ObserveConfig streams configuration values until ctx is done.
func (s *Service) ObserveConfig(ctx context.Context) <-chan model.AppConfig {
	return s.store.ObserveConfig(ctx)
}

// Status summarises the service state.
func (s *Service) Status() Status {
	st := s.store.Stats()
	out := Status{
		Running:      s.Running(),
		Backend:      s.monitor.Backend().Name(),
		PollInterval: s.monitor.Interval(),
		Entries:      st.Total,
		Pinned:       st.Pinned,
		Config:       s.store.Config(),
	}
	if at, ok := s.monitor.LastChange(); ok {
		out.LastChange = at
	}
	return out
}
