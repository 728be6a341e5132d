package clip

import "sync"

// Memory is a process-local clipboard. It backs headless environments and
// doubles as a fake in tests: Set simulates another application copying.
type Memory struct {
	mu   sync.Mutex
	text string
}

// NewMemory returns an empty in-memory clipboard.
func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Name() string { return "headless (in-memory)" }

func (m *Memory) Read() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text, nil
}

func (m *Memory) Write(text string) error {
	m.Set(text)
	return nil
}

// Set replaces the clipboard contents.
func (m *Memory) Set(text string) {
	m.mu.Lock()
	m.text = text
	m.mu.Unlock()
}

func (m *Memory) Close() {}
