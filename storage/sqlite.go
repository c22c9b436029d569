package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Athena-GenAI/api-testing/models"

	_ "modernc.org/sqlite"
)

// Store is the SQLite archive backend used for local development, behind the
// same ArchiveStore interface as Postgres.
type Store struct {
	db *sql.DB
}

// NewSQLite opens (and creates if needed) the SQLite database at dbPath.
func NewSQLite(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("storage: db path is empty")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("storage: mkdir %s: %w", filepath.Dir(dbPath), err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetConnMaxIdleTime(0)

	store := &Store{db: db}
	if err := store.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS snapshots (
			key        TEXT PRIMARY KEY,
			kind       TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			payload    TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_snapshots_kind_created
			ON snapshots (kind, created_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("storage: migrate: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveRawSnapshot archives the raw positions backing one aggregation cycle.
func (s *Store) SaveRawSnapshot(ctx context.Context, snapshot models.RawSnapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("storage: marshal raw snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO snapshots (key, kind, created_at, payload)
		VALUES (?, 'positions', ?, ?)
	`, RawSnapshotKey(snapshot.Timestamp), snapshot.Timestamp, string(payload))
	if err != nil {
		return fmt.Errorf("storage: save raw snapshot: %w", err)
	}
	return nil
}

// SaveAggregates archives one computed aggregate list.
func (s *Store) SaveAggregates(ctx context.Context, ts time.Time, aggregates []models.TokenAggregate) error {
	payload, err := json.Marshal(aggregates)
	if err != nil {
		return fmt.Errorf("storage: marshal aggregates: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO snapshots (key, kind, created_at, payload)
		VALUES (?, 'analyzed', ?, ?)
	`, AggregatesKey(ts), ts, string(payload))
	if err != nil {
		return fmt.Errorf("storage: save aggregates: %w", err)
	}
	return nil
}

// LatestRawSnapshot returns the most recent archived raw snapshot, or
// (nil, nil) if none has been written yet.
func (s *Store) LatestRawSnapshot(ctx context.Context) (*models.RawSnapshot, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `
		SELECT payload FROM snapshots
		WHERE kind = 'positions'
		ORDER BY created_at DESC
		LIMIT 1
	`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: latest raw snapshot: %w", err)
	}

	var snapshot models.RawSnapshot
	if err := json.Unmarshal([]byte(payload), &snapshot); err != nil {
		return nil, fmt.Errorf("storage: decode raw snapshot: %w", err)
	}
	return &snapshot, nil
}
