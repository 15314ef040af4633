package persistence

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory TranscriptStore. It is the default
// backend and the one used in tests.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]Entry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]Entry)}
}

// Append implements TranscriptStore.
func (s *MemoryStore) Append(_ context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.SessionID] = append(s.entries[entry.SessionID], entry)
	return nil
}

// Load implements TranscriptStore.
func (s *MemoryStore) Load(_ context.Context, sessionID string) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src := s.entries[sessionID]
	out := make([]Entry, len(src))
	copy(out, src)
	return out, nil
}

// Close implements TranscriptStore.
func (s *MemoryStore) Close() error { return nil }
