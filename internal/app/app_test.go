package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/felixgeelhaar/zahlenpirat/internal/config"
	"github.com/felixgeelhaar/zahlenpirat/internal/domain"
	"github.com/felixgeelhaar/zahlenpirat/internal/engine"
)

func TestBuild_Backends(t *testing.T) {
	tests := []struct {
		backend  string
		wantFile string
	}{
		{config.BackendJSON, "settings.json"},
		{config.BackendSQLite, SQLiteFile},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			dir := t.TempDir()
			cfg := config.DefaultLocalConfig()
			cfg.Storage.Backend = tt.backend
			ctx := context.Background()

			svc, err := Build(ctx, cfg, dir, nil)
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			defer svc.Close()

			if svc.Fallback != nil {
				t.Error("fallback saver without base_url")
			}

			if err := svc.Settings.Save(ctx, domain.Settings{"Klasse": "2"}); err != nil {
				t.Fatalf("Settings.Save() error = %v", err)
			}
			if _, err := os.Stat(filepath.Join(cfg.DataPath(dir), tt.wantFile)); err != nil {
				t.Errorf("expected %s in data dir: %v", tt.wantFile, err)
			}

			reply := svc.Engine.HandleUserInput(ctx, "s1", "demo")
			if reply == engine.MsgApology {
				t.Errorf("demo reply = apology")
			}

			if _, err := svc.History.Save(ctx, "Mia", domain.SessionRecord{Points: 20}); err != nil {
				t.Fatalf("History.Save() error = %v", err)
			}
			got, err := svc.History.History(ctx, "Mia")
			if err != nil || len(got) != 1 {
				t.Errorf("History() = %v, %v", got, err)
			}
		})
	}
}

func TestBuild_FallbackConfigured(t *testing.T) {
	cfg := config.DefaultLocalConfig()
	cfg.Fallback.BaseURL = "http://127.0.0.1:1"

	svc, err := Build(context.Background(), cfg, t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	defer svc.Close()

	if svc.Fallback == nil {
		t.Error("expected fallback saver")
	}
}

func TestBuild_PostgresWithoutURL(t *testing.T) {
	cfg := config.DefaultLocalConfig()
	cfg.Storage.Backend = config.BackendPostgres

	if _, err := Build(context.Background(), cfg, t.TempDir(), nil); err == nil {
		t.Error("Build() without database url should fail")
	}
}
