package store

import (
	"context"
	"fmt"
	"time"

	apperrors "github.com/Matrix-F25/matrix-events-sub000/pkg/app_errors"
	"github.com/Matrix-F25/matrix-events-sub000/pkg/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const documentsChannel = "documents_changed"

// PostgresStore keeps every collection in one documents table keyed by
// (collection, id) with a JSONB payload. Mutations fire pg_notify on a shared
// channel; each subscriber filters by its collection name.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the documents table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS documents (
			collection TEXT NOT NULL,
			id         TEXT NOT NULL,
			data       JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (collection, id)
		)
	`
	_, err := s.pool.Exec(ctx, query)
	return err
}

func (s *PostgresStore) Collection(name string) Collection {
	return &PostgresCollection{pool: s.pool, name: name}
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

type PostgresCollection struct {
	pool *pgxpool.Pool
	name string
}

func (c *PostgresCollection) Add(ctx context.Context, data []byte) (string, error) {
	id := uuid.NewString()
	query := `
		INSERT INTO documents (collection, id, data)
		VALUES ($1, $2, $3)
	`
	if _, err := c.pool.Exec(ctx, query, c.name, id, data); err != nil {
		return "", fmt.Errorf("insert document: %w", err)
	}
	c.notifyChange(ctx)
	return id, nil
}

func (c *PostgresCollection) Get(ctx context.Context, id string) (Document, error) {
	query := `
		SELECT data FROM documents
		WHERE collection = $1 AND id = $2
	`
	var data []byte
	err := c.pool.QueryRow(ctx, query, c.name, id).Scan(&data)
	if err != nil {
		if err == pgx.ErrNoRows {
			return Document{}, apperrors.ErrDocumentNotFound
		}
		return Document{}, err
	}
	return Document{ID: id, Data: data}, nil
}

func (c *PostgresCollection) Update(ctx context.Context, id string, data []byte) error {
	query := `
		UPDATE documents
		SET data = $3, updated_at = $4
		WHERE collection = $1 AND id = $2
	`
	result, err := c.pool.Exec(ctx, query, c.name, id, data, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrDocumentNotFound
	}
	c.notifyChange(ctx)
	return nil
}

func (c *PostgresCollection) Delete(ctx context.Context, id string) error {
	query := `
		DELETE FROM documents
		WHERE collection = $1 AND id = $2
	`
	result, err := c.pool.Exec(ctx, query, c.name, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrDocumentNotFound
	}
	c.notifyChange(ctx)
	return nil
}

func (c *PostgresCollection) ReadAll(ctx context.Context) ([]Document, error) {
	query := `
		SELECT id, data FROM documents
		WHERE collection = $1
		ORDER BY id
	`
	rows, err := c.pool.Query(ctx, query, c.name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := make([]Document, 0)
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc.ID, &doc.Data); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

// Subscribe holds one pooled connection on LISTEN for the lifetime of ctx and
// forwards notifications for this collection.
func (c *PostgresCollection) Subscribe(ctx context.Context) (<-chan ChangeEvent, error) {
	conn, err := c.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire listen connection: %w", err)
	}
	if _, err := conn.Exec(ctx, fmt.Sprintf("LISTEN %s", documentsChannel)); err != nil {
		conn.Release()
		return nil, fmt.Errorf("listen: %w", err)
	}

	out := make(chan ChangeEvent, 64)
	go func() {
		defer close(out)
		defer conn.Release()
		log := logger.WithComponent("store")
		for {
			notification, err := conn.Conn().WaitForNotification(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Error("wait for notification failed", zap.Error(err))
				return
			}
			if notification.Payload != c.name {
				continue
			}
			select {
			case out <- ChangeEvent{Collection: c.name}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (c *PostgresCollection) notifyChange(ctx context.Context) {
	if _, err := c.pool.Exec(ctx, "SELECT pg_notify($1, $2)", documentsChannel, c.name); err != nil {
		logger.WithComponent("store").Warn("pg_notify failed",
			zap.String("collection", c.name), zap.Error(err))
	}
}
