package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// PostgresRepository keeps entries in the kv_entry table of a Postgres schema.
type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRow(ctx, "SELECT value FROM kv_entry WHERE key = $1", key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		err = fmt.Errorf("could not read entry %s: %w", key, err)
		log.Error(err)
		return "", false, err
	}
	return value, true, nil
}

func (r *PostgresRepository) Set(ctx context.Context, key, value string) error {
	query := `INSERT INTO kv_entry (key, value, updated_at) VALUES ($1, $2, now())
				ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	_, err := r.db.Exec(ctx, query, key, value)
	if err != nil {
		err = fmt.Errorf("could not write entry %s: %w", key, err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, key string) error {
	_, err := r.db.Exec(ctx, "DELETE FROM kv_entry WHERE key = $1", key)
	if err != nil {
		err = fmt.Errorf("could not delete entry %s: %w", key, err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *PostgresRepository) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := r.db.Query(ctx, "SELECT key FROM kv_entry WHERE starts_with(key, $1) ORDER BY position", prefix)
	if err != nil {
		err = fmt.Errorf("could not list keys: %w", err)
		log.Error(err)
		return nil, err
	}
	keys, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		err = fmt.Errorf("could not scan keys: %w", err)
		log.Error(err)
		return nil, err
	}
	return keys, nil
}
