//go:build darwin

package clip

// New returns the macOS clipboard backend.
func New() Backend { return newDesktop("macOS NSPasteboard") }
