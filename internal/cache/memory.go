package cache

import "sync"

// Memory is a plain in-memory VectorCache, used when no durable cache is
// configured. Safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	vectors map[string][]float64
}

// NewMemory creates an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{vectors: make(map[string][]float64)}
}

// Get returns the cached vector for key.
func (m *Memory) Get(key string) ([]float64, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.vectors[key]
	if !ok {
		return nil, false, nil
	}
	return append([]float64(nil), v...), true, nil
}

// Put stores the vector for key.
func (m *Memory) Put(key string, vector []float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vectors[key] = append([]float64(nil), vector...)
	return nil
}

// Close is a no-op for the in-memory cache.
func (m *Memory) Close() error {
	return nil
}
