package ephemeris

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Store persists the ephemeris property map.
type Store interface {
	Load(ctx context.Context) (map[string]string, error)
	Save(ctx context.Context, props map[string]string) error
}

// SQLiteStore implements Store on the ephemeris_settings table.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore creates a store backed by db.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

// Load returns every stored property. An empty table yields an empty map.
func (s *SQLiteStore) Load(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM ephemeris_settings`)
	if err != nil {
		return nil, fmt.Errorf("querying ephemeris settings: %w", err)
	}
	defer rows.Close()

	props := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scanning ephemeris setting: %w", err)
		}
		props[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ephemeris settings: %w", err)
	}
	return props, nil
}

// Save replaces the stored properties with props in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, props map[string]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM ephemeris_settings`); err != nil {
		return fmt.Errorf("clearing ephemeris settings: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO ephemeris_settings (key, value, updated_at) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	updatedAt := s.now().UTC().Format(time.RFC3339)
	for key, value := range props {
		if _, err := stmt.ExecContext(ctx, key, value, updatedAt); err != nil {
			return fmt.Errorf("storing %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing ephemeris settings: %w", err)
	}
	return nil
}
