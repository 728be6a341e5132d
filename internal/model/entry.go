// Package model defines the clipboard history data model shared by the
// history engine, the storage layer, and the presentation transports.
//
// JSON field names match the on-disk format of clipboard_history.json and
// app_config.json, so files written by earlier releases keep loading.
package model

import (
	"fmt"
	"strings"
)

// ContentType identifies what kind of data an entry holds. Only TypeText is
// produced today; the others are reserved so persisted files stay stable once
// richer content lands.
type ContentType string

const (
	TypeText  ContentType = "TEXT"
	TypeImage ContentType = "IMAGE"
	TypeURL   ContentType = "URL"
	TypeFile  ContentType = "FILE"
)

// Valid reports whether t is one of the known content types.
func (t ContentType) Valid() bool {
	switch t {
	case TypeText, TypeImage, TypeURL, TypeFile:
		return true
	}
	return false
}

// Entry is a single recorded clipboard snippet.
//
// Entries are treated as immutable values. Pinning produces a copy with
// Pinned flipped; nothing else about an entry ever changes.
type Entry struct {
	ID        string      `json:"id"`
	Content   string      `json:"content"`
	Timestamp int64       `json:"timestamp"` // Unix milliseconds
	Pinned    bool        `json:"isPinned"`
	Type      ContentType `json:"type"`
}

// WithPinned returns a copy of e with Pinned set to pinned.
func (e Entry) WithPinned(pinned bool) Entry {
	e.Pinned = pinned
	return e
}

// Preview returns content trimmed to at most n runes with an ellipsis, on a
// single line. Used for log lines and CLI listings.
func (e Entry) Preview(n int) string {
	s := strings.Join(strings.Fields(e.Content), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}

func (e Entry) String() string {
	return fmt.Sprintf("%s %q", e.ID, e.Preview(40))
}

// Less reports whether a sorts before b in presentation order: pinned before
// unpinned, then newest first.
func Less(a, b Entry) bool {
	if a.Pinned != b.Pinned {
		return a.Pinned
	}
	return a.Timestamp > b.Timestamp
}

// Compare is the three-way form of Less, suitable for slices.SortStableFunc.
func Compare(a, b Entry) int {
	switch {
	case Less(a, b):
		return -1
	case Less(b, a):
		return 1
	}
	return 0
}
