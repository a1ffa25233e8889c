package store

import (
	"context"
	"sort"
	"sync"

	apperrors "github.com/Matrix-F25/matrix-events-sub000/pkg/app_errors"

	"github.com/google/uuid"
)

// MemoryStore is an in-process document store used by tests and local runs.
// It mimics the remote backends: writes are only observed through the change
// feed, never returned in-place to the caller.
type MemoryStore struct {
	mu          sync.Mutex
	collections map[string]*MemoryCollection
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]*MemoryCollection),
	}
}

func (s *MemoryStore) Collection(name string) Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.collections[name]; ok {
		return c
	}
	c := &MemoryCollection{
		name: name,
		docs: make(map[string][]byte),
	}
	s.collections[name] = c
	return c
}

func (s *MemoryStore) Close() error {
	return nil
}

type MemoryCollection struct {
	mu          sync.Mutex
	name        string
	docs        map[string][]byte
	subscribers []chan ChangeEvent
}

func (c *MemoryCollection) Add(ctx context.Context, data []byte) (string, error) {
	id := uuid.NewString()
	c.mu.Lock()
	c.docs[id] = append([]byte{}, data...)
	c.mu.Unlock()
	c.notify()
	return id, nil
}

func (c *MemoryCollection) Get(ctx context.Context, id string) (Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.docs[id]
	if !ok {
		return Document{}, apperrors.ErrDocumentNotFound
	}
	return Document{ID: id, Data: append([]byte{}, data...)}, nil
}

func (c *MemoryCollection) Update(ctx context.Context, id string, data []byte) error {
	c.mu.Lock()
	if _, ok := c.docs[id]; !ok {
		c.mu.Unlock()
		return apperrors.ErrDocumentNotFound
	}
	c.docs[id] = append([]byte{}, data...)
	c.mu.Unlock()
	c.notify()
	return nil
}

func (c *MemoryCollection) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	if _, ok := c.docs[id]; !ok {
		c.mu.Unlock()
		return apperrors.ErrDocumentNotFound
	}
	delete(c.docs, id)
	c.mu.Unlock()
	c.notify()
	return nil
}

func (c *MemoryCollection) ReadAll(ctx context.Context) ([]Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]string, 0, len(c.docs))
	for id := range c.docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	docs := make([]Document, 0, len(ids))
	for _, id := range ids {
		docs = append(docs, Document{ID: id, Data: append([]byte{}, c.docs[id]...)})
	}
	return docs, nil
}

func (c *MemoryCollection) Subscribe(ctx context.Context) (<-chan ChangeEvent, error) {
	ch := make(chan ChangeEvent, 64)
	c.mu.Lock()
	c.subscribers = append(c.subscribers, ch)
	c.mu.Unlock()

	go func() {
		<-ctx.Done()
		c.mu.Lock()
		for i, sub := range c.subscribers {
			if sub == ch {
				c.subscribers = append(c.subscribers[:i], c.subscribers[i+1:]...)
				break
			}
		}
		c.mu.Unlock()
		close(ch)
	}()

	return ch, nil
}

// notify fans the change out to every subscriber. A subscriber that cannot
// keep up misses intermediate events only; the next one triggers a full
// re-read anyway.
func (c *MemoryCollection) notify() {
	c.mu.Lock()
	defer c.mu.Unlock()

	event := ChangeEvent{Collection: c.name}
	for _, sub := range c.subscribers {
		select {
		case sub <- event:
		default:
		}
	}
}
