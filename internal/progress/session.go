// Package progress tracks a learner's per-(subject, subtopic) state:
// completed lessons, watched videos, quiz analyses, weak topics, remedial
// sets and the admin override flag. State lives in a session-scoped
// key-value store; each learner session gets its own Store handle, so no
// locking is needed beyond what the backend guarantees for one session.
package progress

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
)

// Store is the key-value session abstraction the tracker persists to.
// Keys follow the scheme "<subject>_<subtopic>_<field>".
type Store interface {
	Get(ctx context.Context, key string) (json.RawMessage, bool, error)
	Set(ctx context.Context, key string, value json.RawMessage) error
	Pop(ctx context.Context, key string) error
	// Keys returns all keys with the given prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// MemoryStore is the in-process fallback Store, used in tests and
// whenever no live session context exists. Safe for concurrent use.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]json.RawMessage
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]json.RawMessage)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (json.RawMessage, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *MemoryStore) Pop(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *MemoryStore) Keys(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var keys []string
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}
