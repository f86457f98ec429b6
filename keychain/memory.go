package keychain

import "sync"

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string][]byte)}
}

// Set implements Store.
func (m *MemoryStore) Set(data []byte, key string) error {
	if key == "" {
		return newError(StatusParam, key, nil)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = append([]byte(nil), data...)
	return nil
}

// Get implements Store.
func (m *MemoryStore) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, newError(StatusParam, key, nil)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.items[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), data...), nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(key string) error {
	if key == "" {
		return newError(StatusParam, key, nil)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

var _ Store = (*MemoryStore)(nil)
