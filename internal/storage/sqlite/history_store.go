package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/zahlenpirat/internal/domain"
)

// HistoryStore keeps session records in the session_records table
type HistoryStore struct {
	db *DB
}

// NewHistoryStore creates a SQLite-backed history store
func NewHistoryStore(db *DB) *HistoryStore {
	return &HistoryStore{db: db}
}

func (s *HistoryStore) Append(ctx context.Context, player string, rec domain.SessionRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO session_records (player, session_id, status, points, record)
		VALUES (?, ?, ?, ?, ?)`,
		player, rec.SessionID, string(rec.Status), rec.Points, string(data),
	)
	if err != nil {
		return fmt.Errorf("insert session record: %w", err)
	}
	return nil
}

func (s *HistoryStore) List(ctx context.Context, player string) ([]domain.SessionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT record FROM session_records WHERE player = ? ORDER BY id", player)
	if err != nil {
		return nil, fmt.Errorf("list session records: %w", err)
	}
	defer rows.Close()

	out := []domain.SessionRecord{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan session record: %w", err)
		}
		var rec domain.SessionRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("unmarshal session record: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *HistoryStore) UpdateLast(ctx context.Context, player string, fn func(rec *domain.SessionRecord) bool) (domain.SessionRecord, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.SessionRecord{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var (
		id  int64
		raw string
	)
	err = tx.QueryRowContext(ctx,
		"SELECT id, record FROM session_records WHERE player = ? ORDER BY id DESC LIMIT 1", player,
	).Scan(&id, &raw)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.SessionRecord{}, domain.ErrNoSession
	}
	if err != nil {
		return domain.SessionRecord{}, fmt.Errorf("get last session record: %w", err)
	}

	var rec domain.SessionRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return domain.SessionRecord{}, fmt.Errorf("unmarshal session record: %w", err)
	}
	if !fn(&rec) {
		return rec, nil
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return domain.SessionRecord{}, fmt.Errorf("marshal record: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE session_records SET status = ?, points = ?, record = ? WHERE id = ?",
		string(rec.Status), rec.Points, string(data), id); err != nil {
		return domain.SessionRecord{}, fmt.Errorf("update session record: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.SessionRecord{}, fmt.Errorf("commit: %w", err)
	}
	return rec, nil
}

func (s *HistoryStore) Players(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT player FROM session_records ORDER BY player")
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
