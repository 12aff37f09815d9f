package testsupport

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

// OpenSQLite opens a writable bun handle on a fresh sqlite file and returns
// it with the file path, so tests can hand the same file to a read-only
// opener. The handle is closed on cleanup.
func OpenSQLite(t testing.TB) (*bun.DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "codex.db")
	sqlDB, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open sqlite %s: %v", path, err)
	}
	db := bun.NewDB(sqlDB, sqlitedialect.New())
	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db, path
}

// OpenSQLiteMemory opens a shared-cache in-memory sqlite database.
func OpenSQLiteMemory(t testing.TB) *bun.DB {
	t.Helper()
	sqlDB, err := sql.Open("sqlite3", "file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("open sqlite memory: %v", err)
	}
	db := bun.NewDB(sqlDB, sqlitedialect.New())
	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}
