package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/gogotex/todo-service/internal/todo"
)

// MemoryRepo is an in-process repository used for TODO_STORE=memory and unit
// tests. Ids start at 1 and are never reused.
type MemoryRepo struct {
	mu     sync.RWMutex
	lastID int64
	store  map[int64]todo.Todo
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[int64]todo.Todo)}
}

func (m *MemoryRepo) Create(_ context.Context, t *todo.Todo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastID++
	t.ID = m.lastID
	m.store[t.ID] = *t
	return nil
}

func (m *MemoryRepo) List(_ context.Context) ([]todo.Todo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]todo.Todo, 0, len(m.store))
	for _, t := range m.store {
		out = append(out, t)
	}
	// insertion order, like a heap scan
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryRepo) Get(_ context.Context, id int64) (*todo.Todo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.store[id]
	if !ok {
		return nil, todo.ErrNotFound
	}
	return &t, nil
}

func (m *MemoryRepo) Update(_ context.Context, id int64, content string) (*todo.Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.store[id]
	if !ok {
		return nil, todo.ErrNotFound
	}
	t.Content = content
	m.store[id] = t
	return &t, nil
}

func (m *MemoryRepo) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return todo.ErrNotFound
	}
	delete(m.store, id)
	return nil
}
