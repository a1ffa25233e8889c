package store

import (
	"context"
)

// Document is one raw entry of a backend collection.
type Document struct {
	ID   string
	Data []byte
}

// ChangeEvent signals that a collection changed, regardless of which client
// caused the change. It carries no delta: consumers re-read the collection.
type ChangeEvent struct {
	Collection string
}

// Collection is the opaque remote document store the connector runs against.
// Every document maps to one entity of the collection's declared kind.
type Collection interface {
	// Add persists a new document and returns its store-assigned id.
	Add(ctx context.Context, data []byte) (string, error)
	Get(ctx context.Context, id string) (Document, error)
	Update(ctx context.Context, id string, data []byte) error
	Delete(ctx context.Context, id string) error
	// ReadAll returns every document, ordered by id so repeated reads of the
	// same state agree.
	ReadAll(ctx context.Context) ([]Document, error)
	// Subscribe returns the collection's change feed. The channel closes when
	// ctx is cancelled.
	Subscribe(ctx context.Context) (<-chan ChangeEvent, error)
}

// Store hands out the per-kind collections backing the cache managers.
type Store interface {
	Collection(name string) Collection
	Close() error
}
