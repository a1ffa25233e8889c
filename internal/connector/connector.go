package connector

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Matrix-F25/matrix-events-sub000/internal/model"
	"github.com/Matrix-F25/matrix-events-sub000/internal/store"
	apperrors "github.com/Matrix-F25/matrix-events-sub000/pkg/app_errors"
	"github.com/Matrix-F25/matrix-events-sub000/pkg/logger"

	"go.uber.org/zap"
)

// Listener receives the full collection after every change the store reports.
type Listener[T model.Entity] interface {
	OnCollectionChanged(items []T)
}

// Connector is the per-collection synchronization wrapper. It owns one store
// collection, performs create/update/delete against it, and on every
// change-feed event re-reads the whole collection and hands the result to its
// listener. Callers never observe their own write synchronously; visibility
// comes only through the next full-list callback.
type Connector[T model.Entity] struct {
	collection store.Collection
	newEntity  func() T
	listener   Listener[T]
	log        *zap.Logger
}

func New[T model.Entity](collection store.Collection, newEntity func() T) *Connector[T] {
	return &Connector[T]{
		collection: collection,
		newEntity:  newEntity,
		log:        logger.WithComponent("connector"),
	}
}

// SetListener registers the single listener. Must be called before Start.
func (c *Connector[T]) SetListener(l Listener[T]) {
	c.listener = l
}

// Start loads the current collection, subscribes to the change feed and keeps
// the listener updated until ctx is cancelled.
func (c *Connector[T]) Start(ctx context.Context) error {
	feed, err := c.collection.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	if err := c.Refresh(ctx); err != nil {
		return fmt.Errorf("initial read: %w", err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-feed:
				if !ok {
					return
				}
				if err := c.Refresh(ctx); err != nil {
					c.log.Error("collection re-read failed", zap.Error(err))
				}
			}
		}
	}()
	return nil
}

// Create persists a new entity and assigns its store id. The caller's copy
// carries the id afterwards, but the shared view updates only via the feed.
func (c *Connector[T]) Create(ctx context.Context, entity T) error {
	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	id, err := c.collection.Add(ctx, data)
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}
	entity.SetID(id)
	return nil
}

// Update rewrites the entity's document. An entity that was never persisted
// has no id and cannot be updated.
func (c *Connector[T]) Update(ctx context.Context, entity T) error {
	if entity.GetID() == "" {
		c.log.Warn("update skipped: entity has no id", zap.String("kind", entity.Kind()))
		return apperrors.ErrMissingID
	}
	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := c.collection.Update(ctx, entity.GetID(), data); err != nil {
		return fmt.Errorf("update: %w", err)
	}
	return nil
}

// Delete removes the entity's document. Same missing-id guard as Update.
func (c *Connector[T]) Delete(ctx context.Context, entity T) error {
	if entity.GetID() == "" {
		c.log.Warn("delete skipped: entity has no id", zap.String("kind", entity.Kind()))
		return apperrors.ErrMissingID
	}
	if err := c.collection.Delete(ctx, entity.GetID()); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	return nil
}

// Refresh re-reads the full collection and delivers it to the listener.
func (c *Connector[T]) Refresh(ctx context.Context) error {
	docs, err := c.collection.ReadAll(ctx)
	if err != nil {
		return err
	}

	items := make([]T, 0, len(docs))
	for _, doc := range docs {
		entity := c.newEntity()
		if err := json.Unmarshal(doc.Data, entity); err != nil {
			c.log.Warn("skipping undecodable document",
				zap.String("id", doc.ID), zap.Error(err))
			continue
		}
		entity.SetID(doc.ID)
		items = append(items, entity)
	}

	if c.listener != nil {
		c.listener.OnCollectionChanged(items)
	}
	return nil
}
