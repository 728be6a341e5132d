//go:build linux

package clip

// New returns the Linux clipboard backend, or a headless in-memory backend if
// the display environment is unavailable (e.g. a server without X11).
func New() Backend { return newDesktop("Linux clipboard (X11)") }
