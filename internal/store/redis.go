package store

import (
	"context"
	"fmt"
	"sort"

	apperrors "github.com/Matrix-F25/matrix-events-sub000/pkg/app_errors"
	"github.com/Matrix-F25/matrix-events-sub000/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisStore keeps each collection in one hash (field = document id, value =
// JSON document) and pushes the change feed over a pub/sub channel per
// collection, so every client sees every mutation regardless of origin.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Collection(name string) Collection {
	return &RedisCollection{
		client:  s.client,
		name:    name,
		hashKey: fmt.Sprintf("collection:%s", name),
		channel: fmt.Sprintf("collection:%s:changes", name),
	}
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

type RedisCollection struct {
	client  *redis.Client
	name    string
	hashKey string
	channel string
}

func (c *RedisCollection) Add(ctx context.Context, data []byte) (string, error) {
	id := uuid.NewString()
	if err := c.client.HSet(ctx, c.hashKey, id, data).Err(); err != nil {
		return "", fmt.Errorf("hset: %w", err)
	}
	c.publishChange(ctx)
	return id, nil
}

func (c *RedisCollection) Get(ctx context.Context, id string) (Document, error) {
	data, err := c.client.HGet(ctx, c.hashKey, id).Bytes()
	if err == redis.Nil {
		return Document{}, apperrors.ErrDocumentNotFound
	}
	if err != nil {
		return Document{}, fmt.Errorf("hget: %w", err)
	}
	return Document{ID: id, Data: data}, nil
}

func (c *RedisCollection) Update(ctx context.Context, id string, data []byte) error {
	exists, err := c.client.HExists(ctx, c.hashKey, id).Result()
	if err != nil {
		return fmt.Errorf("hexists: %w", err)
	}
	if !exists {
		return apperrors.ErrDocumentNotFound
	}
	if err := c.client.HSet(ctx, c.hashKey, id, data).Err(); err != nil {
		return fmt.Errorf("hset: %w", err)
	}
	c.publishChange(ctx)
	return nil
}

func (c *RedisCollection) Delete(ctx context.Context, id string) error {
	removed, err := c.client.HDel(ctx, c.hashKey, id).Result()
	if err != nil {
		return fmt.Errorf("hdel: %w", err)
	}
	if removed == 0 {
		return apperrors.ErrDocumentNotFound
	}
	c.publishChange(ctx)
	return nil
}

func (c *RedisCollection) ReadAll(ctx context.Context) ([]Document, error) {
	entries, err := c.client.HGetAll(ctx, c.hashKey).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall: %w", err)
	}

	ids := make([]string, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	docs := make([]Document, 0, len(ids))
	for _, id := range ids {
		docs = append(docs, Document{ID: id, Data: []byte(entries[id])})
	}
	return docs, nil
}

func (c *RedisCollection) Subscribe(ctx context.Context) (<-chan ChangeEvent, error) {
	sub := c.client.Subscribe(ctx, c.channel)
	// force the subscription to be established before returning
	if _, err := sub.Receive(ctx); err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", c.channel, err)
	}

	out := make(chan ChangeEvent, 64)
	go func() {
		defer close(out)
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case out <- ChangeEvent{Collection: c.name}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (c *RedisCollection) publishChange(ctx context.Context) {
	if err := c.client.Publish(ctx, c.channel, c.name).Err(); err != nil {
		logger.WithComponent("store").Warn("publish change failed",
			zap.String("collection", c.name), zap.Error(err))
	}
}
