package internal

import (
	"context"
	"errors"
	"sync"
)

// MemoryKV is an in-memory KVStore for tests. FailGet and FailSet
// force the corresponding operations to fail, for storage-degradation
// scenarios.
type MemoryKV struct {
	mu      sync.Mutex
	data    map[string][]byte
	FailGet bool
	FailSet bool
}

// NewMemoryKV creates an empty in-memory store.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string][]byte)}
}

func (m *MemoryKV) Get(ctx context.Context, scope, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailGet {
		return nil, false, &StorageError{Scope: scope, Key: key, Op: "get", Err: errors.New("forced failure")}
	}
	value, ok := m.data[scope+"/"+key]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	return cp, true, nil
}

func (m *MemoryKV) Set(ctx context.Context, scope, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSet {
		return &StorageError{Scope: scope, Key: key, Op: "set", Err: errors.New("forced failure")}
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	m.data[scope+"/"+key] = cp
	return nil
}

func (m *MemoryKV) Delete(ctx context.Context, scope, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, scope+"/"+key)
	return nil
}

func (m *MemoryKV) Close() error {
	return nil
}
