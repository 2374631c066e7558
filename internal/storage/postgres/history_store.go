package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/felixgeelhaar/zahlenpirat/internal/domain"
)

// HistoryStore keeps session records in zp_session_records
type HistoryStore struct {
	pool *pgxpool.Pool
}

// NewHistoryStore creates a PostgreSQL-backed history store
func NewHistoryStore(pool *pgxpool.Pool) *HistoryStore {
	return &HistoryStore{pool: pool}
}

func (s *HistoryStore) Append(ctx context.Context, player string, rec domain.SessionRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	query := `
		INSERT INTO zp_session_records (player, session_id, status, points, record)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := s.pool.Exec(ctx, query, player, rec.SessionID, string(rec.Status), rec.Points, data); err != nil {
		return fmt.Errorf("insert session record: %w", err)
	}
	return nil
}

func (s *HistoryStore) List(ctx context.Context, player string) ([]domain.SessionRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT record FROM zp_session_records WHERE player = $1 ORDER BY id`, player)
	if err != nil {
		return nil, fmt.Errorf("list session records: %w", err)
	}
	defer rows.Close()

	out := []domain.SessionRecord{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan session record: %w", err)
		}
		var rec domain.SessionRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("unmarshal session record: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *HistoryStore) UpdateLast(ctx context.Context, player string, fn func(rec *domain.SessionRecord) bool) (domain.SessionRecord, error) {
	var out domain.SessionRecord

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		var (
			id  int64
			raw []byte
		)
		err := tx.QueryRow(ctx, `
			SELECT id, record FROM zp_session_records
			WHERE player = $1 ORDER BY id DESC LIMIT 1
			FOR UPDATE`, player,
		).Scan(&id, &raw)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNoSession
		}
		if err != nil {
			return fmt.Errorf("get last session record: %w", err)
		}

		if err := json.Unmarshal(raw, &out); err != nil {
			return fmt.Errorf("unmarshal session record: %w", err)
		}
		if !fn(&out) {
			return nil
		}

		data, err := json.Marshal(out)
		if err != nil {
			return fmt.Errorf("marshal record: %w", err)
		}
		_, err = tx.Exec(ctx,
			`UPDATE zp_session_records SET status = $1, points = $2, record = $3 WHERE id = $4`,
			string(out.Status), out.Points, data, id)
		return err
	})
	if err != nil {
		return domain.SessionRecord{}, err
	}
	return out, nil
}

func (s *HistoryStore) Players(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT DISTINCT player FROM zp_session_records ORDER BY player`)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	defer rows.Close()

	players := []string{}
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}
