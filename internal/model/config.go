package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidConfig is returned when an AppConfig fails validation.
var ErrInvalidConfig = errors.New("invalid config")

// ActivationMode selects how the history window is summoned.
type ActivationMode string

const (
	ActivationShortcut ActivationMode = "KEYBOARD_SHORTCUT"
	ActivationIcon     ActivationMode = "PERSISTENT_ICON"
	ActivationBoth     ActivationMode = "BOTH"
)

// ParseActivationMode accepts the canonical names plus a few short aliases
// used on the command line.
func ParseActivationMode(s string) (ActivationMode, error) {
	switch strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_")) {
	case "KEYBOARD_SHORTCUT", "SHORTCUT", "KEYBOARD":
		return ActivationShortcut, nil
	case "PERSISTENT_ICON", "ICON", "TRAY":
		return ActivationIcon, nil
	case "BOTH":
		return ActivationBoth, nil
	}
	return "", fmt.Errorf("%w: unknown activation mode %q", ErrInvalidConfig, s)
}

// Valid reports whether m is a known mode.
func (m ActivationMode) Valid() bool {
	switch m {
	case ActivationShortcut, ActivationIcon, ActivationBoth:
		return true
	}
	return false
}

// HistoryLimit caps the number of unpinned entries. The zero value means
// unlimited.
//
// On disk a finite limit is a plain number and Unlimited is the string
// "unlimited". Older files stored 2147483647 for unlimited; that value, and
// anything <= 0, decodes as Unlimited.
type HistoryLimit int

// Unlimited disables capacity eviction.
const Unlimited HistoryLimit = 0

const legacyUnlimited = math.MaxInt32

// Limit returns a finite limit of n, or Unlimited if n <= 0.
func Limit(n int) HistoryLimit {
	if n <= 0 || n >= legacyUnlimited {
		return Unlimited
	}
	return HistoryLimit(n)
}

// ParseHistoryLimit parses a number or the word "unlimited".
func ParseHistoryLimit(s string) (HistoryLimit, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "unlimited") {
		return Unlimited, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: history limit must be a positive integer or \"unlimited\", got %q", ErrInvalidConfig, s)
	}
	return Limit(n), nil
}

// Finite reports whether the limit is enforced.
func (l HistoryLimit) Finite() bool { return l > 0 }

func (l HistoryLimit) String() string {
	if !l.Finite() {
		return "unlimited"
	}
	return strconv.Itoa(int(l))
}

func (l HistoryLimit) MarshalJSON() ([]byte, error) {
	if !l.Finite() {
		return []byte(`"unlimited"`), nil
	}
	return []byte(strconv.Itoa(int(l))), nil
}

func (l *HistoryLimit) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		v, err := ParseHistoryLimit(s)
		if err != nil {
			return err
		}
		*l = v
		return nil
	}
	var n int64
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("history limit: %w", err)
	}
	if n <= 0 || n >= legacyUnlimited {
		*l = Unlimited
		return nil
	}
	*l = HistoryLimit(n)
	return nil
}

// AppConfig holds the user-facing preferences. It is a process-wide
// singleton owned by the history store and replaced wholesale on update.
type AppConfig struct {
	ActivationMode    ActivationMode `json:"activationMode"`
	MaxHistoryItems   HistoryLimit   `json:"maxHistoryItems"`
	EnableQuickSearch bool           `json:"enableQuickSearch"`
}

// DefaultConfig returns the configuration used when nothing is persisted.
func DefaultConfig() AppConfig {
	return AppConfig{
		ActivationMode:    ActivationBoth,
		MaxHistoryItems:   Unlimited,
		EnableQuickSearch: true,
	}
}

// UnmarshalJSON starts from DefaultConfig so fields missing from the file keep
// their defaults rather than Go zero values.
func (c *AppConfig) UnmarshalJSON(b []byte) error {
	type plain AppConfig
	v := plain(DefaultConfig())
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*c = AppConfig(v)
	return nil
}

// Validate checks that every field holds a known value.
func (c AppConfig) Validate() error {
	if !c.ActivationMode.Valid() {
		return fmt.Errorf("%w: unknown activation mode %q", ErrInvalidConfig, c.ActivationMode)
	}
	if c.MaxHistoryItems < 0 {
		return fmt.Errorf("%w: negative history limit %d", ErrInvalidConfig, int(c.MaxHistoryItems))
	}
	return nil
}

// Normalize replaces unknown values with defaults. Applied to configs read
// from disk, where rejecting the whole file would be worse than fixing one
// field.
func (c AppConfig) Normalize() AppConfig {
	if !c.ActivationMode.Valid() {
		c.ActivationMode = ActivationBoth
	}
	if c.MaxHistoryItems < 0 {
		c.MaxHistoryItems = Unlimited
	}
	return c
}
