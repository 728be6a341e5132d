// Package clip provides a unified interface to the system clipboard across
// platforms. Build constraints select the appropriate implementation:
//
//	clip_darwin.go: macOS via golang.design/x/clipboard
//	clip_windows.go: Windows via golang.design/x/clipboard
//	clip_linux.go: Linux (X11) via golang.design/x/clipboard
//	clip_other.go: headless / container, in-memory only
//
// Only text is exchanged. Change detection is the monitor's job; backends are
// plain read/write primitives.
package clip

// Backend is the interface that all platform clipboard implementations satisfy.
type Backend interface {
	// Name returns a human-readable name for the backend.
	Name() string

	// Read returns the current clipboard text. An empty string means the
	// clipboard is empty or holds no text representation.
	Read() (string, error)

	// Write replaces the clipboard contents with text.
	Write(text string) error

	// Close releases any resources held by the backend.
	Close()
}
