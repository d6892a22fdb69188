package progress

import "sync"

// Sessions hands out the Store for one learner session. Implemented by
// MemorySessions, RedisSessions and SQLSessions.
type Sessions interface {
	Session(sessionID string) Store
}

// MemorySessions keeps every session's store in process memory. The
// default backend for development and tests.
type MemorySessions struct {
	mu     sync.Mutex
	stores map[string]*MemoryStore
}

func NewMemorySessions() *MemorySessions {
	return &MemorySessions{stores: make(map[string]*MemoryStore)}
}

func (m *MemorySessions) Session(sessionID string) Store {
	m.mu.Lock()
	defer m.mu.Unlock()
	store, ok := m.stores[sessionID]
	if !ok {
		store = NewMemoryStore()
		m.stores[sessionID] = store
	}
	return store
}
