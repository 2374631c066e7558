package daemon

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/goleak"

	"github.com/felixgeelhaar/zahlenpirat/internal/config"
	"github.com/felixgeelhaar/zahlenpirat/internal/domain"
	"github.com/felixgeelhaar/zahlenpirat/internal/engine"
	"github.com/felixgeelhaar/zahlenpirat/internal/history"
	"github.com/felixgeelhaar/zahlenpirat/internal/settings"
	"github.com/felixgeelhaar/zahlenpirat/internal/storage/local"
	"github.com/felixgeelhaar/zahlenpirat/internal/tasks"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fixedTasks always asks 2 + 3
type fixedTasks struct{}

func (fixedTasks) Next() tasks.Task {
	return tasks.Task{Question: "2 + 3 = ?", Answer: "5", Operator: domain.OpAdd}
}

type testEnv struct {
	server   *Server
	settings *settings.MemoryStore
	history  *history.Service
}

// setupTestServer creates a server with in-memory settings and a
// file-backed history in a temp dir
func setupTestServer(t *testing.T, mutate ...func(*ServerConfig)) *testEnv {
	t.Helper()

	docs, err := local.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("local.NewStore() error = %v", err)
	}
	hist := history.NewService(history.NewFileStore(docs))
	store := settings.NewMemoryStore(nil)

	cfg := config.DefaultLocalConfig()
	cfg.Daemon.Port = 0
	cfg.RateLimit.Enabled = false

	sc := ServerConfig{
		Config:   cfg,
		Engine:   engine.New(store, engine.WithTaskSource(fixedTasks{}), engine.WithCompletionSink(hist)),
		Settings: store,
		History:  hist,
	}
	for _, m := range mutate {
		m(&sc)
	}

	srv, err := NewServer(sc)
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	t.Cleanup(srv.Close)

	return &testEnv{server: srv, settings: store, history: hist}
}

func (e *testEnv) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if resp.Error == nil {
		t.Fatal("error envelope missing")
	}
	return resp.Error.Code
}

func TestNewServer_RequiresServices(t *testing.T) {
	if _, err := NewServer(ServerConfig{Config: config.DefaultLocalConfig()}); err == nil {
		t.Error("NewServer() without services should fail")
	}
}

func TestRootEndpoint(t *testing.T) {
	env := setupTestServer(t)

	rec := env.do(t, http.MethodGet, "/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	resp := decode(t, rec)
	if resp["message"] != "Zahlenpirat Backend läuft 🎉" {
		t.Errorf("message = %v", resp["message"])
	}

	rec = env.do(t, http.MethodGet, "/unbekannt", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown path status = %d, want 404", rec.Code)
	}
	if code := errorCode(t, rec); code != "NOT_FOUND" {
		t.Errorf("error code = %q, want NOT_FOUND", code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	env := setupTestServer(t)

	rec := env.do(t, http.MethodGet, "/v1/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if resp := decode(t, rec); resp["status"] != "healthy" {
		t.Errorf("status = %v, want healthy", resp["status"])
	}
}

func TestCORSPreflight(t *testing.T) {
	env := setupTestServer(t)

	rec := env.do(t, http.MethodOptions, "/v1/flow", "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}

func TestRateLimit(t *testing.T) {
	env := setupTestServer(t, func(sc *ServerConfig) {
		sc.Config.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerSecond: 1, Burst: 2}
	})

	first := env.do(t, http.MethodGet, "/v1/health", "")
	if first.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", first.Code)
	}

	var limited *httptest.ResponseRecorder
	for i := 0; i < 10; i++ {
		rec := env.do(t, http.MethodGet, "/v1/health", "")
		if rec.Code == http.StatusTooManyRequests {
			limited = rec
			break
		}
	}
	if limited == nil {
		t.Fatal("no request was rate limited")
	}
	if code := errorCode(t, limited); code != "RATE_LIMITED" {
		t.Errorf("error code = %q, want RATE_LIMITED", code)
	}
}

func TestShutdownWithoutStart(t *testing.T) {
	env := setupTestServer(t)
	if err := env.server.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}
