// Package history is the clipboard history engine.
//
// Store owns the ordered entry collection and the AppConfig singleton. Every
// operation runs under one mutex for its whole read-modify-persist cycle, so
// concurrent callers (user actions and the monitor) are totally ordered and
// the persisted state always matches memory after each call returns.
package history

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"go.klb.dev/pastecopy/internal/model"
	"go.klb.dev/pastecopy/internal/observe"
	"go.klb.dev/pastecopy/internal/storage"
)

// document is the on-disk shape of clipboard_history.json.
type document struct {
	Items []model.Entry `json:"items"`
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used to stamp new entries.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDFunc overrides entry ID generation.
func WithIDFunc(f func() string) Option {
	return func(s *Store) { s.newID = f }
}

// Stats summarises the collection.
type Stats struct {
	Total  int `json:"total"`
	Pinned int `json:"pinned"`
}

// Store is the authoritative, persisted clipboard history.
type Store struct {
	blobs storage.Adapter
	now   func() time.Time
	newID func() string

	mu     sync.Mutex
	items  []model.Entry
	config model.AppConfig

	itemsV  *observe.Value[[]model.Entry]
	configV *observe.Value[model.AppConfig]
}

// Open loads history and configuration from blobs. Missing or unreadable
// blobs fall back to an empty history and model.DefaultConfig; nothing on
// disk is modified by Open.
func Open(blobs storage.Adapter, opts ...Option) *Store {
	s := &Store{
		blobs: blobs,
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
	for _, o := range opts {
		o(s)
	}

	cfg, ok := storage.LoadValue[model.AppConfig](blobs, storage.ConfigBlob)
	if !ok {
		cfg = model.DefaultConfig()
	}
	s.config = cfg.Normalize()

	doc, _ := storage.LoadValue[document](blobs, storage.HistoryBlob)
	s.items = applyCapacity(s.sanitize(doc.Items), s.config.MaxHistoryItems)

	s.itemsV = observe.NewValue(slices.Clone(s.items))
	s.configV = observe.NewValue(s.config)

	slog.Info("history loaded",
		"entries", len(s.items),
		"max_items", s.config.MaxHistoryItems.String(),
	)
	return s
}

// Insert records content as the newest entry. It returns false without
// changing anything if the most recent entry already has exactly this
// content. Only the most recent entry is compared: re-copying something from
// further back is recorded again.
func (s *Store) Insert(content string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	latest, ok := mostRecent(s.items)
	if ok && latest.Content == content {
		return false
	}

	ts := s.now().UnixMilli()
	if ok && latest.Timestamp >= ts {
		// Same millisecond or the clock stepped backwards. Timestamps stay
		// strictly increasing so the new entry is unambiguously the newest.
		ts = latest.Timestamp + 1
	}
	e := model.Entry{
		ID:        s.uniqueID(),
		Content:   content,
		Timestamp: ts,
		Type:      model.TypeText,
	}

	next := make([]model.Entry, 0, len(s.items)+1)
	next = append(next, e)
	next = append(next, s.items...)
	next = applyCapacity(next, s.config.MaxHistoryItems)

	evicted := len(s.items) + 1 - len(next)
	s.commitItems(next)
	slog.Debug("history entry added", "id", e.ID, "evicted", evicted, "total", len(next))
	return true
}

// Delete removes the entry with the given id. Unknown ids are ignored.
// Reports whether an entry was removed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return false
	}
	s.commitItems(slices.Delete(slices.Clone(s.items), idx, idx+1))
	slog.Debug("history entry deleted", "id", id)
	return true
}

// TogglePin flips the pinned flag of the entry with the given id and
// re-sorts the collection. Unknown ids are ignored. Returns the updated entry.
func (s *Store) TogglePin(id string) (model.Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return model.Entry{}, false
	}
	next := slices.Clone(s.items)
	updated := next[idx].WithPinned(!next[idx].Pinned)
	next[idx] = updated
	slices.SortStableFunc(next, model.Compare)

	s.commitItems(next)
	slog.Debug("history entry pin toggled", "id", id, "pinned", updated.Pinned)
	return updated, true
}

// Search returns entries whose content contains query, ignoring case, in
// collection order. A blank query returns the whole collection.
func (s *Store) Search(query string) []model.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(query) == "" {
		return slices.Clone(s.items)
	}
	needle := strings.ToLower(query)
	out := make([]model.Entry, 0)
	for _, e := range s.items {
		if strings.Contains(strings.ToLower(e.Content), needle) {
			out = append(out, e)
		}
	}
	return out
}

// Clear empties the history. With keepPinned, pinned entries survive.
// Returns the number of entries removed.
func (s *Store) Clear(keepPinned bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]model.Entry, 0)
	if keepPinned {
		for _, e := range s.items {
			if e.Pinned {
				next = append(next, e)
			}
		}
	}
	removed := len(s.items) - len(next)
	s.commitItems(next)
	slog.Info("history cleared", "removed", removed, "kept_pinned", keepPinned)
	return removed
}

// Config returns the current configuration.
func (s *Store) Config() model.AppConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config
}

// UpdateConfig validates and replaces the configuration, persisting it
// immediately. A lower history limit takes effect at once: surplus unpinned
// entries are evicted and the history is persisted too.
func (s *Store) UpdateConfig(cfg model.AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.config = cfg
	if err := s.blobs.Save(storage.ConfigBlob, cfg); err != nil {
		slog.Error("persist config failed", "err", err)
	}
	s.configV.Set(cfg)

	next := applyCapacity(slices.Clone(s.items), cfg.MaxHistoryItems)
	if len(next) != len(s.items) {
		slog.Info("history trimmed to new limit",
			"evicted", len(s.items)-len(next),
			"max_items", cfg.MaxHistoryItems.String(),
		)
		s.commitItems(next)
	}
	return nil
}

// Items returns a snapshot of the collection in presentation order.
func (s *Store) Items() []model.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items)
}

// Get returns the entry with the given id.
func (s *Store) Get(id string) (model.Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx := s.indexOf(id); idx >= 0 {
		return s.items[idx], true
	}
	return model.Entry{}, false
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Stats returns entry counts.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Stats{Total: len(s.items)}
	for _, e := range s.items {
		if e.Pinned {
			st.Pinned++
		}
	}
	return st
}

// ObserveItems streams the collection: the current snapshot first, then one
// after every mutation. Intermediate snapshots may be skipped for slow
// readers. The channel closes when ctx is done. Received slices must not be
// modified.
func (s *Store) ObserveItems(ctx context.Context) <-chan []model.Entry {
	return s.itemsV.Subscribe(ctx)
}

// ObserveConfig streams the configuration like ObserveItems.
func (s *Store) ObserveConfig(ctx context.Context) <-chan model.AppConfig {
	return s.configV.Subscribe(ctx)
}

// commitItems installs next as the collection, persists it, and notifies
// observers. Must be called with s.mu held. Persistence failures are logged;
// memory stays authoritative and the next successful save catches up.
func (s *Store) commitItems(next []model.Entry) {
	s.items = next
	if err := s.blobs.Save(storage.HistoryBlob, document{Items: next}); err != nil {
		slog.Error("persist history failed", "err", err, "entries", len(next))
	}
	s.itemsV.Set(slices.Clone(next))
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.items, func(e model.Entry) bool { return e.ID == id })
}

// uniqueID returns an ID not already present. Must be called with s.mu held.
func (s *Store) uniqueID() string {
	for {
		id := s.newID()
		if id != "" && s.indexOf(id) < 0 {
			return id
		}
	}
}

// sanitize repairs a loaded collection: entries with missing or duplicate
// IDs get fresh ones, missing types default to text, and the ordering rule
// is applied.
func (s *Store) sanitize(items []model.Entry) []model.Entry {
	out := make([]model.Entry, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, e := range items {
		if _, dup := seen[e.ID]; dup || e.ID == "" {
			old := e.ID
			for {
				e.ID = s.newID()
				if _, taken := seen[e.ID]; !taken && e.ID != "" {
					break
				}
			}
			slog.Warn("stored entry had missing or duplicate id, reassigned", "old", old, "new", e.ID)
		}
		if !e.Type.Valid() {
			e.Type = model.TypeText
		}
		seen[e.ID] = struct{}{}
		out = append(out, e)
	}
	slices.SortStableFunc(out, model.Compare)
	return out
}

// applyCapacity enforces limit on unpinned entries, keeping the first
// `limit` of them in current order, then re-sorts by the ordering rule.
// Pinned entries are never evicted.
func applyCapacity(items []model.Entry, limit model.HistoryLimit) []model.Entry {
	if !limit.Finite() {
		slices.SortStableFunc(items, model.Compare)
		return items
	}
	var pinned, unpinned []model.Entry
	for _, e := range items {
		if e.Pinned {
			pinned = append(pinned, e)
		} else {
			unpinned = append(unpinned, e)
		}
	}
	if len(unpinned) > int(limit) {
		unpinned = unpinned[:int(limit)]
	}
	out := make([]model.Entry, 0, len(pinned)+len(unpinned))
	out = append(out, pinned...)
	out = append(out, unpinned...)
	slices.SortStableFunc(out, model.Compare)
	return out
}

// mostRecent returns the entry with the newest timestamp. Insert keeps
// timestamps unique; ties can only come from loaded data, where the first
// listed entry wins.
func mostRecent(items []model.Entry) (model.Entry, bool) {
	if len(items) == 0 {
		return model.Entry{}, false
	}
	best := items[0]
	for _, e := range items[1:] {
		if e.Timestamp > best.Timestamp {
			best = e
		}
	}
	return best, true
}

func (st Stats) String() string {
	return fmt.Sprintf("%d entries (%d pinned)", st.Total, st.Pinned)
}
