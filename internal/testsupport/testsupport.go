// Package testsupport provides shared builders for package tests.
package testsupport

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"noticeboard/internal/catalog"
	"noticeboard/internal/config"
)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.APIBind = "127.0.0.1:0"
	return &cfg
}

// MustOpenStore opens a catalog store for the test config and closes it
// when the test finishes.
func MustOpenStore(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("open catalog store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close catalog store: %v", err)
		}
	})
	return store
}

// CorruptEventTimestamp overwrites one stored event's occurs_at with text
// that no layout parses, simulating a row written by an older or broken
// tool. Uses a separate connection against the same database file.
func CorruptEventTimestamp(t testing.TB, store *catalog.Store, id int64) {
	t.Helper()

	db, err := sql.Open("sqlite", store.Path())
	if err != nil {
		t.Fatalf("open catalog db: %v", err)
	}
	defer db.Close()

	res, err := db.Exec(`UPDATE events SET occurs_at = 'not-a-time' WHERE id = ?`, id)
	if err != nil {
		t.Fatalf("corrupt event %d: %v", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		t.Fatalf("corrupt event %d rows affected: %v", id, err)
	}
	if affected != 1 {
		t.Fatalf("corrupt event %d touched %d rows, want 1", id, affected)
	}
}
