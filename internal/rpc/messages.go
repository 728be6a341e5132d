package rpc

import (
	"go.klb.dev/pastecopy/internal/model"
	"go.klb.dev/pastecopy/internal/service"
)

// Empty is used for calls without parameters.
type Empty struct{}

// ListRequest asks for the history. Limit <= 0 means everything.
type ListRequest struct {
	Limit int `json:"limit,omitempty"`
}

// SearchRequest filters the history by case-insensitive substring.
type SearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

// EntriesResponse carries a slice of the history in presentation order.
type EntriesResponse struct {
	Entries []model.Entry `json:"entries"`
}

// IDRequest addresses a single entry.
type IDRequest struct {
	ID string `json:"id"`
}

// EntryResponse returns a single entry. Found is false for unknown ids.
type EntryResponse struct {
	Entry model.Entry `json:"entry"`
	Found bool        `json:"found"`
}

// DeleteResponse reports whether an entry was removed.
type DeleteResponse struct {
	Deleted bool `json:"deleted"`
}

// ClearRequest empties the history.
type ClearRequest struct {
	KeepPinned bool `json:"keepPinned"`
}

// ClearResponse reports how many entries were removed.
type ClearResponse struct {
	Removed int `json:"removed"`
}

// CopyTextRequest puts arbitrary text on the clipboard and in history.
type CopyTextRequest struct {
	Text string `json:"text"`
}

// CopyTextResponse reports whether a new history entry was recorded.
type CopyTextResponse struct {
	Added bool `json:"added"`
}

// PasteResponse carries the live clipboard text.
type PasteResponse struct {
	Text string `json:"text"`
}

// ConfigMessage wraps the application configuration.
type ConfigMessage struct {
	Config model.AppConfig `json:"config"`
}

// StatusResponse describes the running daemon.
type StatusResponse struct {
	Version string         `json:"version"`
	PID     int            `json:"pid"`
	Store   string         `json:"store"`
	Status  service.Status `json:"status"`
}

// WatchRequest subscribes to history snapshots.
type WatchRequest struct{}

func limit(entries []model.Entry, n int) []model.Entry {
	if n > 0 && len(entries) > n {
		return entries[:n]
	}
	return entries
}
