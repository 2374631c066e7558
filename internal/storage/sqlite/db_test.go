package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/felixgeelhaar/zahlenpirat/internal/domain"
)

func TestOpen_Pragmas(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "zahlenpirat.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	pragmas := map[string]string{
		"journal_mode": "wal",
		"foreign_keys": "1",
	}
	for pragma, want := range pragmas {
		var got string
		if err := db.QueryRow("PRAGMA " + pragma).Scan(&got); err != nil {
			t.Fatalf("PRAGMA %s: %v", pragma, err)
		}
		if got != want {
			t.Errorf("PRAGMA %s = %q, want %q", pragma, got, want)
		}
	}
}

func TestMigrate_CreatesSchema(t *testing.T) {
	db := openTestDB(t)

	if v, err := db.Version(context.Background()); err != nil || v != 1 {
		t.Fatalf("Version() = %d, %v; want 1", v, err)
	}

	var n int
	err := db.QueryRow(`SELECT count(*) FROM sqlite_master
		WHERE type='table' AND name IN ('settings', 'session_records')`).Scan(&n)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("found %d of 2 tables", n)
	}
}

func TestMigrate_KeepsDataOnReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zahlenpirat.db")
	ctx := context.Background()

	db, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := db.Migrate(ctx); err != nil {
		t.Fatal(err)
	}
	if err := NewSettingsStore(db).Save(ctx, domain.Settings{"Modus": "Lernen"}); err != nil {
		t.Fatal(err)
	}
	db.Close()

	db, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() on existing db error = %v", err)
	}

	got, err := NewSettingsStore(db).Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got["Modus"] != "Lernen" {
		t.Errorf("settings after reopen = %v", got)
	}
}

func TestParseVersion(t *testing.T) {
	for name, want := range map[string]int{
		"001_initial.sql":     1,
		"010_leaderboard.sql": 10,
	} {
		if got, err := parseVersion(name); err != nil || got != want {
			t.Errorf("parseVersion(%q) = %d, %v; want %d", name, got, err, want)
		}
	}
	for _, bad := range []string{"notaversion.sql", "abc_initial.sql"} {
		if _, err := parseVersion(bad); err == nil {
			t.Errorf("parseVersion(%q) should fail", bad)
		}
	}
}

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
