package localstore

import "sync"

// MemoryStore keeps blobs in process memory. Sessions backed by it do not
// survive a restart; it exists for ephemeral deployments and tests.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (ms *MemoryStore) Read(key string) ([]byte, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	data, ok := ms.data[key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (ms *MemoryStore) Write(key string, data []byte) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	out := make([]byte, len(data))
	copy(out, data)
	ms.data[key] = out
	return nil
}
