package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pethotel/internal/models"
)

// GetDocument returns the stored JSON of key, or nil when it was never written.
func (db *DB) GetDocument(ctx context.Context, key models.DocumentKey) ([]byte, error) {
	var data []byte
	err := db.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE collection = ? AND id = ?`, key.Collection, key.ID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document %s: %w", key, err)
	}
	return data, nil
}

// SetDocument overwrites the document.
func (db *DB) SetDocument(ctx context.Context, key models.DocumentKey, data []byte) error {
	query := `INSERT INTO documents (collection, id, data, updated_at) VALUES (?, ?, ?, ?)
              ON CONFLICT(collection, id) DO UPDATE SET
                  data = excluded.data,
                  updated_at = excluded.updated_at`
	if _, err := db.ExecContext(ctx, query, key.Collection, key.ID, string(data), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to set document %s: %w", key, err)
	}
	return nil
}
