package memory

import (
	"context"
	"sync"
)

// InMemoryStore is a simple in-process record store for tests and
// throwaway runs. Records are deep-copied in and out so callers own
// their working copy.
type InMemoryStore struct {
	mu           sync.RWMutex
	systemPrompt string
	records      map[string]ConversationRecord
}

func NewInMemoryStore(systemPrompt string) *InMemoryStore {
	return &InMemoryStore{
		systemPrompt: systemPrompt,
		records:      make(map[string]ConversationRecord),
	}
}

func (s *InMemoryStore) LoadOrDefault(_ context.Context, userKey string) ConversationRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[userKey]
	if !ok {
		return NewRecord(userKey, s.systemPrompt)
	}
	return rec.Clone()
}

func (s *InMemoryStore) Save(_ context.Context, userKey string, record ConversationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[userKey] = record.Clone()
	return nil
}

func (s *InMemoryStore) Close() error { return nil }
