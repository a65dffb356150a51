package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

// Repository is the raw key/value store underneath the facade. Keys are stored
// verbatim; Keys returns them in first-insertion order.
type Repository interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// RepositoryImpl keeps entries in the kv_entry table of an SQLite database.
type RepositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM kv_entry WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		err = fmt.Errorf("could not read entry %s: %w", key, err)
		log.Error(err)
		return "", false, err
	}
	return value, true, nil
}

func (r *RepositoryImpl) Set(ctx context.Context, key, value string) error {
	query := `INSERT INTO kv_entry (key, value, position, updated_at)
				VALUES (?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM kv_entry), ?)
				ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	_, err := r.db.ExecContext(ctx, query, key, value, time.Now().UTC())
	if err != nil {
		err = fmt.Errorf("could not write entry %s: %w", key, err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM kv_entry WHERE key = ?", key)
	if err != nil {
		err = fmt.Errorf("could not delete entry %s: %w", key, err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT key FROM kv_entry WHERE substr(key, 1, length(?)) = ? ORDER BY position", prefix, prefix)
	if err != nil {
		err = fmt.Errorf("could not list keys: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	keys := make([]string, 0)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			log.Error(err)
			return nil, err
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		log.Error(err)
		return nil, err
	}
	return keys, nil
}
