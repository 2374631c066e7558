package mcp

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/felixgeelhaar/zahlenpirat/internal/domain"
	"github.com/felixgeelhaar/zahlenpirat/internal/engine"
	"github.com/felixgeelhaar/zahlenpirat/internal/history"
	"github.com/felixgeelhaar/zahlenpirat/internal/settings"
	"github.com/felixgeelhaar/zahlenpirat/internal/storage/local"
	"github.com/felixgeelhaar/zahlenpirat/internal/textnorm"
)

// setupTestServer creates a test MCP server backed by temp-dir storage
func setupTestServer(t *testing.T) (*Server, *history.Service) {
	t.Helper()

	docs, err := local.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("local.NewStore() error = %v", err)
	}
	hist := history.NewService(history.NewFileStore(docs))
	eng := engine.New(settings.NewFileStore(docs))

	return NewServer(Config{Engine: eng, History: hist, Version: "test"}), hist
}

func TestNewServer(t *testing.T) {
	s, _ := setupTestServer(t)
	if s.GetMCPServer() == nil {
		t.Fatal("expected non-nil MCP server")
	}
	if s.tasks == nil {
		t.Fatal("expected default task generator")
	}
}

func TestServerConfig_NilServices(t *testing.T) {
	s := NewServer(Config{})
	ctx := context.Background()

	if _, err := s.handleChat(ctx, ChatInput{SessionID: "s", Text: "demo"}); !errors.Is(err, errNotConfigured) {
		t.Errorf("handleChat() error = %v, want errNotConfigured", err)
	}
	if _, err := s.handleHistory(ctx, HistoryInput{Player: "Mia"}); !errors.Is(err, errNotConfigured) {
		t.Errorf("handleHistory() error = %v, want errNotConfigured", err)
	}
}

func TestHandleChat(t *testing.T) {
	s, _ := setupTestServer(t)
	ctx := context.Background()

	out, err := s.handleChat(ctx, ChatInput{SessionID: "mcp-1", Text: "demo"})
	if err != nil {
		t.Fatalf("handleChat() error = %v", err)
	}
	if !strings.Contains(out.Text, engine.DemoQuestion) {
		t.Errorf("reply = %q, want demo question", out.Text)
	}

	out, err = s.handleChat(ctx, ChatInput{SessionID: "mcp-1", Text: engine.ResetPhrase, Plain: true})
	if err != nil {
		t.Fatalf("handleChat() error = %v", err)
	}
	if out.Text != textnorm.ToPlain(engine.MsgReset) {
		t.Errorf("plain reply = %q", out.Text)
	}

	if _, err := s.handleChat(ctx, ChatInput{Text: "demo"}); err == nil {
		t.Error("handleChat() without session_id should fail")
	}
}

func TestHandleSettings(t *testing.T) {
	s, _ := setupTestServer(t)
	ctx := context.Background()

	_, _ = s.handleChat(ctx, ChatInput{SessionID: "mcp-1", Text: "modus: 3"})
	_, _ = s.handleChat(ctx, ChatInput{SessionID: "mcp-1", Text: "2"})

	out, err := s.handleSettings(ctx, SettingsInput{SessionID: "mcp-1"})
	if err != nil {
		t.Fatalf("handleSettings() error = %v", err)
	}
	if diff := cmp.Diff(domain.Settings{"Modus": "Lernen"}, out.View.Session); diff != "" {
		t.Errorf("session mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(out.Text, "- Modus: Lernen") {
		t.Errorf("text = %q", out.Text)
	}
}

func TestHandleHistoryAndLeaderboard(t *testing.T) {
	s, hist := setupTestServer(t)
	ctx := context.Background()

	if _, err := s.handleHistory(ctx, HistoryInput{Player: " "}); !errors.Is(err, domain.ErrEmptyPlayer) {
		t.Errorf("blank player error = %v, want ErrEmptyPlayer", err)
	}

	for player, points := range map[string]int{"Mia": 40, "Tom": 90} {
		if _, err := hist.Save(ctx, player, domain.SessionRecord{Points: points}); err != nil {
			t.Fatal(err)
		}
	}

	out, err := s.handleHistory(ctx, HistoryInput{Player: "Mia"})
	if err != nil {
		t.Fatalf("handleHistory() error = %v", err)
	}
	if len(out.Sessions) != 1 || out.Sessions[0].Points != 40 {
		t.Errorf("sessions = %+v", out.Sessions)
	}

	board, err := s.handleLeaderboard(ctx, LeaderboardInput{})
	if err != nil {
		t.Fatalf("handleLeaderboard() error = %v", err)
	}
	if len(board.Entries) != 2 || board.Entries[0].Player != "Tom" {
		t.Errorf("leaderboard = %+v", board.Entries)
	}
}

func TestHandleTasks(t *testing.T) {
	s, _ := setupTestServer(t)

	out, err := s.handleTasks(context.Background(), TasksInput{Operators: "x", Grade: 2, Count: 4})
	if err != nil {
		t.Fatalf("handleTasks() error = %v", err)
	}
	if len(out.Tasks) != 4 {
		t.Fatalf("tasks = %d, want 4", len(out.Tasks))
	}
	for _, task := range out.Tasks {
		if task.Operator != domain.OpMultiply {
			t.Errorf("operator = %q, want ×", task.Operator)
		}
	}

	out, _ = s.handleTasks(context.Background(), TasksInput{})
	if len(out.Tasks) != 1 {
		t.Errorf("default count = %d, want 1", len(out.Tasks))
	}
}
