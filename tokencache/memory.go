// tokencache/memory.go
package tokencache

import "sync"

// MemoryStore is the default Store, holding the entry in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	entry   Entry
	present bool
}

// NewMemoryStore creates an empty in-memory token store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Save(entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entry = entry
	s.present = true
	return nil
}

func (s *MemoryStore) Load() (Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.present || s.entry.Token == "" {
		return Entry{}, false, nil
	}
	return s.entry, true, nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entry = Entry{}
	s.present = false
	return nil
}
