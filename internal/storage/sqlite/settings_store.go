package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/felixgeelhaar/zahlenpirat/internal/domain"
	"github.com/felixgeelhaar/zahlenpirat/internal/textnorm"
)

// SettingsStore keeps persistent settings in the settings table
type SettingsStore struct {
	db *DB
}

// NewSettingsStore creates a SQLite-backed settings store
func NewSettingsStore(db *DB) *SettingsStore {
	return &SettingsStore{db: db}
}

func (s *SettingsStore) Load(ctx context.Context) (domain.Settings, error) {
	return scanSettings(s.db.QueryContext(ctx, "SELECT key, value FROM settings"))
}

// Save replaces all stored settings with data
func (s *SettingsStore) Save(ctx context.Context, data domain.Settings) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := replaceSettings(ctx, tx, data); err != nil {
		return err
	}
	return tx.Commit()
}

// Update reads, modifies and rewrites the settings in one transaction
func (s *SettingsStore) Update(ctx context.Context, fn func(domain.Settings) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	current, err := scanSettings(tx.QueryContext(ctx, "SELECT key, value FROM settings"))
	if err != nil {
		return err
	}
	if err := fn(current); err != nil {
		return err
	}
	if err := replaceSettings(ctx, tx, current); err != nil {
		return err
	}
	return tx.Commit()
}

func scanSettings(rows *sql.Rows, err error) (domain.Settings, error) {
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	defer rows.Close()

	out := domain.Settings{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		out[k] = textnorm.RepairMojibake(v)
	}
	return out, rows.Err()
}

func replaceSettings(ctx context.Context, tx *sql.Tx, data domain.Settings) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM settings"); err != nil {
		return fmt.Errorf("clear settings: %w", err)
	}
	for k, v := range data {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO settings (key, value, updated_at) VALUES (?, ?, datetime('now'))", k, v); err != nil {
			return fmt.Errorf("insert setting %s: %w", k, err)
		}
	}
	return nil
}

func (s *SettingsStore) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM settings"); err != nil {
		return fmt.Errorf("reset settings: %w", err)
	}
	return nil
}
