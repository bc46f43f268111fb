package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"messenger/internal/app/model"
)

// DefaultDocumentID names the row holding the shared document.
const DefaultDocumentID = "main"

// DefaultHistoryLimit is how many previous bodies are retained.
const DefaultHistoryLimit = 20

// DocumentStore keeps the shared document in PostgreSQL.
type DocumentStore struct {
	pool         *pgxpool.Pool
	id           string
	historyLimit int
}

// NewDocumentStore returns a store for document id and makes sure its row
// exists.
func NewDocumentStore(ctx context.Context, pool *pgxpool.Pool, id string, historyLimit int) (*DocumentStore, error) {
	if id == "" {
		id = DefaultDocumentID
	}
	d := &DocumentStore{pool: pool, id: id, historyLimit: historyLimit}

	empty, err := json.Marshal(model.EmptyDocument())
	if err != nil {
		return nil, err
	}

	_, err = pool.Exec(ctx, `INSERT INTO documents (id, body) VALUES ($1, $2)`, id, empty)
	if err != nil && !IsUniqueViolation(err) {
		return nil, documentErr("create", err)
	}
	return d, nil
}

func (d *DocumentStore) Name() string { return "postgres" }

func (d *DocumentStore) Load(ctx context.Context) ([]byte, error) {
	var body []byte
	err := d.pool.QueryRow(ctx, `SELECT body FROM documents WHERE id = $1`, d.id).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return json.Marshal(model.EmptyDocument())
	}
	if err != nil {
		return nil, documentErr("load", err)
	}
	return body, nil
}

// Save archives the current body and overwrites it in one transaction.
func (d *DocumentStore) Save(ctx context.Context, doc []byte) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if d.historyLimit > 0 {
		if _, err := tx.Exec(ctx, `
			INSERT INTO document_history (document_id, body)
			SELECT id, body FROM documents WHERE id = $1`, d.id); err != nil {
			return fmt.Errorf("failed to archive document: %w", err)
		}

		if _, err := tx.Exec(ctx, `
			DELETE FROM document_history
			WHERE document_id = $1 AND id NOT IN (
				SELECT id FROM document_history
				WHERE document_id = $1
				ORDER BY saved_at DESC, id DESC
				LIMIT $2
			)`, d.id, d.historyLimit); err != nil {
			return fmt.Errorf("failed to prune document history: %w", err)
		}
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO documents (id, body, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (id) DO UPDATE SET body = EXCLUDED.body, updated_at = NOW()`,
		d.id, doc); err != nil {
		return documentErr("save", err)
	}

	return tx.Commit(ctx)
}
