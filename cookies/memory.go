package cookies

import "sync"

// MemoryStore keeps the jar in process memory. It mirrors FileStore's merge
// semantics and is safe for concurrent use, making it the drop-in choice for
// callers who want no disk state.
type MemoryStore struct {
	mu  sync.RWMutex
	jar map[string]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jar: map[string]string{}}
}

// Load returns a copy of the stored mapping.
func (s *MemoryStore) Load() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return merge(s.jar, nil)
}

// Save merges cookies over the stored mapping, given entries winning.
func (s *MemoryStore) Save(cookies map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jar = merge(s.jar, cookies)
}
