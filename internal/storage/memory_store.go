package storage

import (
	"sort"
	"strings"
	"sync"
)

// MemoryStore is an in-memory Store for tests.
type MemoryStore struct {
	mu    sync.RWMutex
	data  map[string][]byte
	calls MemoryCalls
}

// MemoryCalls tracks method invocations for test verification.
type MemoryCalls struct {
	Get    int
	Put    int
	Delete int
	List   int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.Get++

	if err := validateKey(key); err != nil {
		return nil, err
	}
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound{Key: key}
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryStore) Put(key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.Put++

	if err := validateKey(key); err != nil {
		return err
	}
	m.data[key] = append([]byte(nil), data...)
	return nil
}

func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.Delete++

	if err := validateKey(key); err != nil {
		return err
	}
	delete(m.data, key)
	return nil
}

func (m *MemoryStore) List(suffix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.List++

	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		if strings.HasSuffix(k, suffix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Calls returns a snapshot of invocation counts.
func (m *MemoryStore) Calls() MemoryCalls {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls
}

// Reset clears stored data and call counts.
func (m *MemoryStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string][]byte)
	m.calls = MemoryCalls{}
}
