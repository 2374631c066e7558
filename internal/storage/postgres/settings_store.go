package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/felixgeelhaar/zahlenpirat/internal/domain"
	"github.com/felixgeelhaar/zahlenpirat/internal/textnorm"
)

// SettingsStore keeps persistent settings in zp_settings
type SettingsStore struct {
	pool *pgxpool.Pool
}

// NewSettingsStore creates a PostgreSQL-backed settings store
func NewSettingsStore(pool *pgxpool.Pool) *SettingsStore {
	return &SettingsStore{pool: pool}
}

func (s *SettingsStore) Load(ctx context.Context) (domain.Settings, error) {
	return loadSettings(ctx, s.pool)
}

// Save replaces all stored settings with data
func (s *SettingsStore) Save(ctx context.Context, data domain.Settings) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return replaceSettings(ctx, tx, data)
	})
}

// Update reads, modifies and rewrites the settings in one transaction.
// The table lock conflicts with itself, so concurrent updates queue up.
func (s *SettingsStore) Update(ctx context.Context, fn func(domain.Settings) error) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `LOCK TABLE zp_settings IN SHARE ROW EXCLUSIVE MODE`); err != nil {
			return fmt.Errorf("lock settings: %w", err)
		}
		current, err := loadSettings(ctx, tx)
		if err != nil {
			return err
		}
		if err := fn(current); err != nil {
			return err
		}
		return replaceSettings(ctx, tx, current)
	})
}

func (s *SettingsStore) Reset(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM zp_settings`); err != nil {
		return fmt.Errorf("reset settings: %w", err)
	}
	return nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func loadSettings(ctx context.Context, q querier) (domain.Settings, error) {
	rows, err := q.Query(ctx, `SELECT key, value FROM zp_settings`)
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

func replaceSettings(ctx context.Context, tx pgx.Tx, data domain.Settings) error {
	if _, err := tx.Exec(ctx, `DELETE FROM zp_settings`); err != nil {
		return fmt.Errorf("clear settings: %w", err)
	}
	batch := &pgx.Batch{}
	for k, v := range data {
		batch.Queue(`INSERT INTO zp_settings (key, value) VALUES ($1, $2)`, k, v)
	}
	if batch.Len() == 0 {
		return nil
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert settings: %w", err)
	}
	return nil
}
