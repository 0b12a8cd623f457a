package memory

import (
	"context"
	"sync"
)

// InMemoryStore is a process-local Store. Summaries do not survive a
// restart; suitable for single-instance and test deployments.
type InMemoryStore struct {
	mu      sync.RWMutex
	window  int
	threads map[string][]string
}

// NewInMemoryStore creates a store keeping the last window summaries
// per thread. A non-positive window falls back to DefaultWindow.
func NewInMemoryStore(window int) *InMemoryStore {
	if window <= 0 {
		window = DefaultWindow
	}
	return &InMemoryStore{
		window:  window,
		threads: make(map[string][]string),
	}
}

func (s *InMemoryStore) Append(_ context.Context, threadID, summary string) error {
	if threadID == "" || summary == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries := append(s.threads[threadID], summary)
	if len(entries) > s.window {
		entries = entries[len(entries)-s.window:]
	}
	s.threads[threadID] = entries
	return nil
}

func (s *InMemoryStore) Read(_ context.Context, threadID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.threads[threadID]
	out := make([]string, len(entries))
	copy(out, entries)
	return out, nil
}

var _ Store = (*InMemoryStore)(nil)
