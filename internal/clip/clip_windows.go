//go:build windows

package clip

// New returns the Windows clipboard backend.
func New() Backend { return newDesktop("Windows Clipboard") }
