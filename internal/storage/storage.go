// Package storage persists named blobs of structured data.
//
// The history engine depends only on Adapter: Save replaces the blob stored
// under a logical file name, Load decodes it back. Two implementations exist:
// File keeps one JSON document per name in a directory, Badger keeps them as
// keys in an embedded Badger database.
package storage

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
)

// ErrAbsent is returned by Load when the blob is missing, unreadable, or
// cannot be decoded. Callers treat all three the same way: fall back to a
// default. The underlying cause is wrapped for logging.
var ErrAbsent = errors.New("blob absent")

// Blob names used by the history engine.
const (
	HistoryBlob = "clipboard_history.json"
	ConfigBlob  = "app_config.json"
)

// AppDirName is the per-user application directory name.
const AppDirName = "PasteCopy"

// Adapter is an exact-match key/value store keyed by logical file name.
type Adapter interface {
	// Save encodes v and atomically replaces the blob stored under name.
	Save(name string, v any) error
	// Load decodes the blob stored under name into v. Unknown fields are
	// ignored. Any failure wraps ErrAbsent.
	Load(name string, v any) error
}

// LoadValue loads name into a fresh T. ok is false if the blob is absent for
// any reason; the reason is logged at warn level unless the blob simply does
// not exist yet.
func LoadValue[T any](a Adapter, name string) (v T, ok bool) {
	if err := a.Load(name, &v); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("stored blob unusable, using defaults", "name", name, "err", err)
		}
		var zero T
		return zero, false
	}
	return v, true
}

// DefaultDir returns the per-OS application data directory:
//
//   - macOS:   ~/Library/Application Support/PasteCopy
//   - Windows: %AppData%\PasteCopy
//   - Linux:   $XDG_CONFIG_HOME/PasteCopy (usually ~/.config/PasteCopy)
func DefaultDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppDirName), nil
}
