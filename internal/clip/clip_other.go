//go:build !darwin && !windows && !linux

package clip

// New returns an in-memory backend suitable for headless containers.
func New() Backend { return NewMemory() }
