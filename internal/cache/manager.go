package cache

import (
	"context"
	"sync"

	"github.com/Matrix-F25/matrix-events-sub000/internal/model"
)

// Writer is the mutation surface the manager delegates to; satisfied by the
// collection connector. The manager never mutates its own cache: the cache
// changes only through OnCollectionChanged, so it can never diverge from
// backend state for more than one round trip.
type Writer[T model.Entity] interface {
	Create(ctx context.Context, entity T) error
	Update(ctx context.Context, entity T) error
	Delete(ctx context.Context, entity T) error
}

// Manager holds the single authoritative in-memory copy of one entity kind.
// One instance per kind is constructed at process start and handed to every
// consumer. The mutex is the explicit single-writer guard: the store does not
// promise single-threaded callback delivery.
type Manager[T model.Entity] struct {
	Observable

	mu     sync.RWMutex
	items  []T
	writer Writer[T]
}

func NewManager[T model.Entity](writer Writer[T]) *Manager[T] {
	return &Manager[T]{
		items:  []T{},
		writer: writer,
	}
}

// GetAll returns the last synchronized snapshot.
func (m *Manager[T]) GetAll() []T {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]T{}, m.items...)
}

func (m *Manager[T]) GetByID(id string) (T, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, item := range m.items {
		if item.GetID() == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Filter returns every cached item matching the predicate, linear scan.
// Cache sizes stay small enough that no indexing is needed.
func (m *Manager[T]) Filter(pred func(T) bool) []T {
	m.mu.RLock()
	defer m.mu.RUnlock()
	matched := []T{}
	for _, item := range m.items {
		if pred(item) {
			matched = append(matched, item)
		}
	}
	return matched
}

func (m *Manager[T]) Create(ctx context.Context, entity T) error {
	return m.writer.Create(ctx, entity)
}

func (m *Manager[T]) Update(ctx context.Context, entity T) error {
	return m.writer.Update(ctx, entity)
}

func (m *Manager[T]) Delete(ctx context.Context, entity T) error {
	return m.writer.Delete(ctx, entity)
}

// OnCollectionChanged replaces the cache wholesale with the store's latest
// full list, then notifies every observer. Full replacement sidesteps merge
// conflicts between concurrent writers.
func (m *Manager[T]) OnCollectionChanged(items []T) {
	m.mu.Lock()
	m.items = items
	m.mu.Unlock()

	m.NotifyAll()
}
