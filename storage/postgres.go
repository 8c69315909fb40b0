package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"clipstream/core"
)

const resultsSchema = `
CREATE TABLE IF NOT EXISTS saved_results (
	name TEXT PRIMARY KEY,
	data JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresResultStore keeps results in a single JSONB table, one row
// per name. Saving an existing name overwrites it.
type PostgresResultStore struct {
	pool *pgxpool.Pool
}

func NewPostgresResultStore(ctx context.Context, url string) (*PostgresResultStore, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, resultsSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure results table: %w", err)
	}
	return &PostgresResultStore{pool: pool}, nil
}

func (s *PostgresResultStore) Close() { s.pool.Close() }

func (s *PostgresResultStore) Save(ctx context.Context, name string, doc json.RawMessage) error {
	if !json.Valid(doc) {
		return fmt.Errorf("invalid result document")
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO saved_results (name, data, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (name) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		core.SanitizeName(name), doc)
	return err
}

func (s *PostgresResultStore) Load(ctx context.Context, name string) (json.RawMessage, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM saved_results WHERE name = $1`,
		core.SanitizeName(name)).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *PostgresResultStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT name FROM saved_results ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *PostgresResultStore) Delete(ctx context.Context, name string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM saved_results WHERE name = $1`, core.SanitizeName(name))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
