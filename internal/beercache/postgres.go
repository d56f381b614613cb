package beercache

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tapmatch/tapmatch/internal/types"
)

// PostgresStore implements Store on a PostgreSQL table for deployments that
// already run a database and want the cache shared across instances.
type PostgresStore struct {
	pool *pgxpool.Pool
}

const createBeerCacheTable = `
CREATE TABLE IF NOT EXISTS beer_cache (
	key        TEXT PRIMARY KEY,
	record     JSONB NOT NULL,
	fetched_at TIMESTAMPTZ NOT NULL
)`

// NewPostgresStore connects a store to the database at databaseURL and
// ensures the cache table exists.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, &StoreError{Message: "failed to connect to database", Cause: err}
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, &StoreError{Message: "failed to ping database", Cause: err}
	}

	if _, err := pool.Exec(ctx, createBeerCacheTable); err != nil {
		pool.Close()
		return nil, &StoreError{Message: "failed to ensure beer_cache table", Cause: err}
	}

	return &PostgresStore{pool: pool}, nil
}

// Get retrieves a record by normalized name.
func (s *PostgresStore) Get(ctx context.Context, key string) (*types.BeerRecord, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT record FROM beer_cache WHERE key = $1`, key,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &NotFoundError{Name: key}
	}
	if err != nil {
		return nil, &StoreError{Message: "get failed", Cause: err}
	}

	var rec types.BeerRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, &StoreError{Message: "failed to parse stored record", Cause: err}
	}
	return &rec, nil
}

// Put upserts a record under its normalized name.
func (s *PostgresStore) Put(ctx context.Context, rec *types.BeerRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return &StoreError{Message: "failed to marshal record", Cause: err}
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO beer_cache (key, record, fetched_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (key) DO UPDATE SET record = $2, fetched_at = $3`,
		rec.Key(), data, rec.FetchedAt,
	)
	if err != nil {
		return &StoreError{Message: "put failed", Cause: err}
	}
	return nil
}

// Keys returns all keys in lexicographic order.
func (s *PostgresStore) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT key FROM beer_cache ORDER BY key`)
	if err != nil {
		return nil, &StoreError{Message: "key query failed", Cause: err}
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, &StoreError{Message: "key scan failed", Cause: err}
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Message: "key iteration failed", Cause: err}
	}
	return keys, nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
