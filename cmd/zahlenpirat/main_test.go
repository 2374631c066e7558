package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/felixgeelhaar/zahlenpirat/internal/config"
	"github.com/felixgeelhaar/zahlenpirat/internal/daemon"
	"github.com/felixgeelhaar/zahlenpirat/internal/domain"
	"github.com/felixgeelhaar/zahlenpirat/internal/engine"
	"github.com/felixgeelhaar/zahlenpirat/internal/events"
	"github.com/felixgeelhaar/zahlenpirat/internal/history"
	"github.com/felixgeelhaar/zahlenpirat/internal/settings"
	"github.com/felixgeelhaar/zahlenpirat/internal/storage/local"
	"github.com/felixgeelhaar/zahlenpirat/internal/tasks"
)

// startDaemon serves a real daemon handler on an httptest server
func startDaemon(t *testing.T) (*client, *history.Service, settings.Store) {
	t.Helper()

	docs, err := local.NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	store := settings.NewFileStore(docs)
	hist := history.NewService(history.NewFileStore(docs))

	cfg := config.DefaultLocalConfig()
	cfg.RateLimit.Enabled = false
	srv, err := daemon.NewServer(daemon.ServerConfig{
		Config:   cfg,
		Engine:   engine.New(store, engine.WithCompletionSink(hist)),
		Settings: store,
		History:  hist,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(srv.Close)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return &client{base: ts.URL, http: ts.Client()}, hist, store
}

func TestRunChat(t *testing.T) {
	c, _, _ := startDaemon(t)
	var out bytes.Buffer

	err := runChat(context.Background(), c, "cli-test", strings.NewReader("demo\n\nexit\nnie gesendet\n"), &out)
	if err != nil {
		t.Fatalf("runChat() error = %v", err)
	}

	got := out.String()
	for _, want := range []string{"Session cli-test", "Zahlenspiele", "Demo-Aufgabe: " + engine.DemoQuestion} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestRunChat_DaemonDown(t *testing.T) {
	c := &client{base: "http://127.0.0.1:1", http: &http.Client{Timeout: time.Second}}
	if err := runChat(context.Background(), c, "s", strings.NewReader(""), &bytes.Buffer{}); err == nil {
		t.Error("runChat() without daemon should fail")
	}
}

func TestRunHistoryAndLeaderboard(t *testing.T) {
	c, hist, _ := startDaemon(t)
	ctx := context.Background()

	var out bytes.Buffer
	if err := runHistory(ctx, c, "Mia", &out); err != nil {
		t.Fatalf("runHistory() error = %v", err)
	}
	if !strings.Contains(out.String(), "Keine Sessions für Mia") {
		t.Errorf("empty history output = %q", out.String())
	}

	_, _ = hist.Save(ctx, "Mia", domain.SessionRecord{Points: 70, TasksSolved: 7, TasksTotal: 10})
	_, _ = hist.Save(ctx, "Tom", domain.SessionRecord{Points: 90})

	out.Reset()
	if err := runHistory(ctx, c, "Mia", &out); err != nil {
		t.Fatalf("runHistory() error = %v", err)
	}
	if !strings.Contains(out.String(), "7/10") || !strings.Contains(out.String(), "70") {
		t.Errorf("history output = %q", out.String())
	}

	out.Reset()
	if err := runLeaderboard(ctx, c, 1, &out); err != nil {
		t.Fatalf("runLeaderboard() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 || !strings.Contains(lines[1], "Tom") {
		t.Errorf("leaderboard output = %q", out.String())
	}
}

func TestRunSettings(t *testing.T) {
	c, _, store := startDaemon(t)
	ctx := context.Background()

	var out bytes.Buffer
	if err := runSettingsSet(ctx, c, "Operatoren", "x", &out); err != nil {
		t.Fatalf("runSettingsSet() error = %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "Operatoren = ×" {
		t.Errorf("set output = %q", got)
	}

	stored, _ := store.Load(ctx)
	if stored["Operatoren"] != "×" {
		t.Errorf("stored = %v", stored)
	}

	out.Reset()
	if err := runSettingsShow(ctx, c, &out); err != nil {
		t.Fatalf("runSettingsShow() error = %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "Operatoren:") || !strings.Contains(got, "×") || !strings.Contains(got, "Name:") {
		t.Errorf("show output = %q", got)
	}
}

func TestClientErrorEnvelope(t *testing.T) {
	c, _, _ := startDaemon(t)

	err := c.get(context.Background(), "/v1/history", nil)
	if err == nil || !strings.Contains(err.Error(), "BAD_REQUEST") {
		t.Errorf("error = %v, want BAD_REQUEST", err)
	}
}

func TestPrintTasks(t *testing.T) {
	list := tasks.NewGenerator().Batch(tasks.BatchRequest{Operators: []string{domain.OpAdd}, Count: 3})

	var out bytes.Buffer
	if err := printTasks(&out, list, false); err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(out.String(), "\n"); n != 3 {
		t.Errorf("printed %d lines, want 3", n)
	}

	out.Reset()
	if err := printTasks(&out, list, true); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), `"korrekteLoesung"`) {
		t.Errorf("json output = %q", out.String())
	}
}

func TestPrintEvent(t *testing.T) {
	e := events.NewEvent(events.SessionCompleted, "Mia", domain.SessionRecord{Status: domain.StatusCompleted, Points: 100})

	var out bytes.Buffer
	if err := printEvent(&out, e, false); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "session.completed") || !strings.Contains(out.String(), "punkte=100") {
		t.Errorf("output = %q", out.String())
	}
}

func TestMask(t *testing.T) {
	tests := map[string]string{
		"":                "(not set)",
		"kurz":            "****",
		"123456:ABCDEFGH": "1234****",
	}
	for in, want := range tests {
		if got := mask(in); got != want {
			t.Errorf("mask(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestResolveAddr(t *testing.T) {
	t.Setenv("ZAHLENPIRAT_HOME", t.TempDir())
	t.Setenv("PORT", "")
	t.Setenv("ZAHLENPIRAT_BIND", "")

	daemonAddr = "http://example.test:9000/"
	t.Cleanup(func() { daemonAddr = "" })
	if got := resolveAddr(); got != "http://example.test:9000" {
		t.Errorf("resolveAddr() with flag = %q", got)
	}

	daemonAddr = ""
	if got := resolveAddr(); got != "http://127.0.0.1:5000" {
		t.Errorf("resolveAddr() default = %q", got)
	}
}

func TestRunInit(t *testing.T) {
	home := t.TempDir()
	t.Setenv("ZAHLENPIRAT_HOME", home)
	for _, key := range []string{"TELEGRAM_BOT_TOKEN", "DATABASE_URL", "RABBITMQ_URL"} {
		t.Setenv(key, "")
	}
	initBackend = config.BackendSQLite
	t.Cleanup(func() { initBackend = config.BackendJSON })

	var out bytes.Buffer
	if err := runInit(strings.NewReader("123456:TOKEN\n\n\n"), &out); err != nil {
		t.Fatalf("runInit() error = %v", err)
	}

	cfg, err := config.LoadFrom(home)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Storage.Backend != config.BackendSQLite {
		t.Errorf("backend = %q, want sqlite", cfg.Storage.Backend)
	}
	if cfg.Telegram.Token != "123456:TOKEN" {
		t.Errorf("telegram token = %q", cfg.Telegram.Token)
	}

	info, err := os.Stat(filepath.Join(home, "secrets.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("secrets.yaml mode = %v, want 0600", perm)
	}
}
