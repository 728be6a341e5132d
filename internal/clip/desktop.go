//go:build darwin || windows || linux

package clip

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.design/x/clipboard"
)

var errClosed = errors.New("clipboard backend closed")

// desktopBackend wraps golang.design/x/clipboard. The library talks to a
// single OS clipboard owner, so calls are serialized.
type desktopBackend struct {
	name string

	mu     sync.Mutex
	closed bool
}

// newDesktop initialises the native clipboard, or falls back to an in-memory
// headless backend if no display is available. clipboard.Init is called here
// rather than in init() so that CLI sub-commands that never construct a
// Backend don't log spurious warnings on headless systems.
func newDesktop(name string) Backend {
	if err := clipboard.Init(); err != nil {
		slog.Warn("clipboard unavailable, running headless", "err", err)
		return NewMemory()
	}
	return &desktopBackend{name: name}
}

func (b *desktopBackend) Name() string { return b.name }

func (b *desktopBackend) Read() (text string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return "", errClosed
	}
	// The native layer can panic when another process holds the clipboard
	// mid-transfer; surface that as an ordinary read error.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("clipboard read: %v", r)
		}
	}()
	return string(clipboard.Read(clipboard.FmtText)), nil
}

func (b *desktopBackend) Write(text string) (err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return errClosed
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("clipboard write: %v", r)
		}
	}()
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}

func (b *desktopBackend) Close() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
}
