package books

import (
	"context"
	"sort"
	"sync"
)

type MemoryStore struct {
	books  map[int64]Data
	nextID int64
	mu     sync.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		books:  make(map[int64]Data),
		nextID: 1,
	}
}

func (m *MemoryStore) Save(ctx context.Context, d *Data) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if d.ID == 0 {
		d.ID = m.nextID
	}
	if d.ID >= m.nextID {
		m.nextID = d.ID + 1
	}
	m.books[d.ID] = *d
	return nil
}

func (m *MemoryStore) Load(ctx context.Context, id int64) (*Data, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.books[id]
	if !ok {
		return nil, notFound(id)
	}
	return &d, nil
}

func (m *MemoryStore) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.books, id)
	return nil
}

func (m *MemoryStore) List(ctx context.Context) ([]*Data, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Data, 0, len(m.books))
	for _, d := range m.books {
		d := d
		out = append(out, &d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) Close() error { return nil }
