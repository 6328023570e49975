package persistence

import (
	"context"
	"sort"
	"sync"
)

// MemoryBackend keeps documents in process memory. It backs tests and the
// "memory" storage driver.
type MemoryBackend struct {
	mu          sync.RWMutex
	collections map[string]map[string][]byte
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{collections: make(map[string]map[string][]byte)}
}

// ReadAll returns documents ordered by id so loads are deterministic.
func (m *MemoryBackend) ReadAll(ctx context.Context, collection string) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	docs := make([]Document, 0, len(m.collections[collection]))
	for id, data := range m.collections[collection] {
		docs = append(docs, Document{ID: id, Data: append([]byte(nil), data...)})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

func (m *MemoryBackend) Write(ctx context.Context, collection, id string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.write(collection, id, data)
	return nil
}

func (m *MemoryBackend) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.collections[collection], id)
	return nil
}

// Apply runs every op under one lock, so readers never see half a batch.
func (m *MemoryBackend) Apply(ctx context.Context, ops []Op) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, op := range ops {
		switch op.Kind {
		case OpWrite:
			m.write(op.Collection, op.ID, op.Data)
		case OpDelete:
			delete(m.collections[op.Collection], op.ID)
		}
	}
	return nil
}

// Len reports the number of documents in a collection.
func (m *MemoryBackend) Len(collection string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.collections[collection])
}

func (m *MemoryBackend) write(collection, id string, data []byte) {
	bucket, ok := m.collections[collection]
	if !ok {
		bucket = make(map[string][]byte)
		m.collections[collection] = bucket
	}
	bucket[id] = append([]byte(nil), data...)
}
