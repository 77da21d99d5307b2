package docstore

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hcp-erp/hcp-erp/internal/shared"
)

// PGBackend stores documents as JSONB rows keyed by collection.
type PGBackend struct {
	pool *pgxpool.Pool
}

// NewBackend constructs a PostgreSQL backend.
func NewBackend(pool *pgxpool.Pool) *PGBackend {
	return &PGBackend{pool: pool}
}

// Fetch loads every document of a collection.
func (b *PGBackend) Fetch(ctx context.Context, collection string) ([]Document, error) {
	const query = `SELECT id, data FROM documents WHERE collection = $1 ORDER BY created_at`
	rows, err := b.pool.Query(ctx, query, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Document
	for rows.Next() {
		var id string
		var payload []byte
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, err
		}
		doc, err := decode(id, payload)
		if err != nil {
			return nil, err
		}
		result = append(result, doc)
	}
	return result, rows.Err()
}

// Get loads one document.
func (b *PGBackend) Get(ctx context.Context, collection, id string) (Document, error) {
	const query = `SELECT data FROM documents WHERE collection = $1 AND id = $2`
	var payload []byte
	if err := b.pool.QueryRow(ctx, query, collection, id).Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return decode(id, payload)
}

// Insert stores a new document row.
func (b *PGBackend) Insert(ctx context.Context, collection, id string, doc Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = b.pool.Exec(ctx,
		`INSERT INTO documents (collection, id, data, created_at, updated_at) VALUES ($1, $2, $3, now(), now())`,
		collection, id, payload)
	return err
}

// Update replaces a document row.
func (b *PGBackend) Update(ctx context.Context, collection, id string, doc Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	tag, err := b.pool.Exec(ctx,
		`UPDATE documents SET data = $3, updated_at = now() WHERE collection = $1 AND id = $2`,
		collection, id, payload)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a document row.
func (b *PGBackend) Delete(ctx context.Context, collection, id string) error {
	tag, err := b.pool.Exec(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`, collection, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func decode(id string, payload []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, err
	}
	doc["id"] = id
	return doc, nil
}

var _ Backend = (*PGBackend)(nil)
