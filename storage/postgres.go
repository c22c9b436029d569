package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Athena-GenAI/api-testing/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore archives snapshots in PostgreSQL. Rows are append-only and
// keyed the same way the object-store layout would be
// (positions/{date}/{timestamp}.json, analyzed/{date}/{timestamp}.json).
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a PostgreSQL archive store from a connection URL.
func NewPostgres(databaseURL string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse config: %w", err)
	}

	cfg.MaxConns = 10
	cfg.MinConns = 2
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: create pool: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	store := &PostgresStore{pool: pool}
	if err := store.migrate(context.Background()); err != nil {
		pool.Close()
		return nil, err
	}

	return store, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS snapshots (
			key        TEXT PRIMARY KEY,
			kind       TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			payload    JSONB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_snapshots_kind_created
			ON snapshots (kind, created_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("postgres: migrate: %w", err)
	}
	return nil
}

// Close releases database connections.
func (s *PostgresStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// SaveRawSnapshot archives the raw positions backing one aggregation cycle.
func (s *PostgresStore) SaveRawSnapshot(ctx context.Context, snapshot models.RawSnapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("postgres: marshal raw snapshot: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO snapshots (key, kind, created_at, payload)
		VALUES ($1, 'positions', $2, $3)
		ON CONFLICT (key) DO NOTHING
	`, RawSnapshotKey(snapshot.Timestamp), snapshot.Timestamp, payload)
	if err != nil {
		return fmt.Errorf("postgres: save raw snapshot: %w", err)
	}
	return nil
}

// SaveAggregates archives one computed aggregate list.
func (s *PostgresStore) SaveAggregates(ctx context.Context, ts time.Time, aggregates []models.TokenAggregate) error {
	payload, err := json.Marshal(aggregates)
	if err != nil {
		return fmt.Errorf("postgres: marshal aggregates: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO snapshots (key, kind, created_at, payload)
		VALUES ($1, 'analyzed', $2, $3)
		ON CONFLICT (key) DO NOTHING
	`, AggregatesKey(ts), ts, payload)
	if err != nil {
		return fmt.Errorf("postgres: save aggregates: %w", err)
	}
	return nil
}

// LatestRawSnapshot returns the most recent archived raw snapshot, or
// (nil, nil) if none has been written yet.
func (s *PostgresStore) LatestRawSnapshot(ctx context.Context) (*models.RawSnapshot, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx, `
		SELECT payload FROM snapshots
		WHERE kind = 'positions'
		ORDER BY created_at DESC
		LIMIT 1
	`).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: latest raw snapshot: %w", err)
	}

	var snapshot models.RawSnapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return nil, fmt.Errorf("postgres: decode raw snapshot: %w", err)
	}
	return &snapshot, nil
}
