package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/felixgeelhaar/zahlenpirat/internal/domain"
	"github.com/felixgeelhaar/zahlenpirat/internal/history"
)

func TestHistoryStore_AppendList(t *testing.T) {
	store := NewHistoryStore(openTestDB(t))
	ctx := context.Background()

	rec := domain.SessionRecord{
		Player:     "Mia",
		Mode:       "Test",
		Grade:      domain.NewFlexString("3"),
		Operators:  domain.OperatorList{"+", "×"},
		Status:     domain.StatusRunning,
		TasksTotal: 4,
		Points:     30,
		SessionID:  "a",
		Date:       "2024-05-03T08:15:00Z",
	}
	if err := store.Append(ctx, "Mia", rec); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	_ = store.Append(ctx, "Tom", domain.SessionRecord{SessionID: "b"})

	got, err := store.List(ctx, "Mia")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if diff := cmp.Diff([]domain.SessionRecord{rec}, got); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}

	empty, err := store.List(ctx, "Niemand")
	if err != nil || empty == nil || len(empty) != 0 {
		t.Errorf("List(unknown) = %#v, %v; want empty slice", empty, err)
	}
}

func TestHistoryStore_UpdateLast(t *testing.T) {
	store := NewHistoryStore(openTestDB(t))
	ctx := context.Background()

	_ = store.Append(ctx, "Mia", domain.SessionRecord{SessionID: "a", Status: domain.StatusRunning})
	_ = store.Append(ctx, "Mia", domain.SessionRecord{SessionID: "b", Status: domain.StatusRunning})

	got, err := store.UpdateLast(ctx, "Mia", func(rec *domain.SessionRecord) bool {
		rec.Status = domain.StatusAborted
		return true
	})
	if err != nil {
		t.Fatalf("UpdateLast() error = %v", err)
	}
	if got.SessionID != "b" || got.Status != domain.StatusAborted {
		t.Errorf("UpdateLast() = %+v, want session b aborted", got)
	}

	list, _ := store.List(ctx, "Mia")
	if list[0].Status != domain.StatusRunning || list[1].Status != domain.StatusAborted {
		t.Errorf("statuses = %q, %q; want laufend, abgebrochen", list[0].Status, list[1].Status)
	}

	var status string
	if err := store.db.QueryRow("SELECT status FROM session_records WHERE session_id = 'b'").Scan(&status); err != nil {
		t.Fatal(err)
	}
	if status != string(domain.StatusAborted) {
		t.Errorf("status column = %q, want it kept in sync", status)
	}
}

func TestHistoryStore_UpdateLastNoSession(t *testing.T) {
	store := NewHistoryStore(openTestDB(t))

	_, err := store.UpdateLast(context.Background(), "Niemand", func(*domain.SessionRecord) bool { return true })
	if !errors.Is(err, domain.ErrNoSession) {
		t.Errorf("UpdateLast() error = %v, want ErrNoSession", err)
	}
}

func TestHistoryStore_WithService(t *testing.T) {
	svc := history.NewService(NewHistoryStore(openTestDB(t)))
	ctx := context.Background()

	if _, err := svc.Save(ctx, "Mia", domain.SessionRecord{Status: domain.StatusRunning, Points: 20}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	tr, err := svc.End(ctx, "Mia")
	if err != nil {
		t.Fatalf("End() error = %v", err)
	}
	if !tr.Changed {
		t.Errorf("End() = %+v, want changed", tr)
	}

	board, err := svc.Leaderboard(ctx, 10)
	if err != nil {
		t.Fatalf("Leaderboard() error = %v", err)
	}
	if len(board) != 1 || board[0].Player != "Mia" || board[0].Points != 20 {
		t.Errorf("Leaderboard() = %+v", board)
	}
}
