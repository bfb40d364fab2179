package db

import (
	"database/sql"
	"path/filepath"
	"testing"
)

// NewTestDB returns a fresh single-connection in-memory database with the
// schema applied. It is closed when the test ends.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	return openTestDB(t, ":memory:")
}

// NewTestFileDB returns a database backed by a file in the test's temporary
// directory. Unlike NewTestDB it pools several connections, so concurrent
// writers contend for the lock the way they do in production.
func NewTestFileDB(t *testing.T) *sql.DB {
	t.Helper()
	return openTestDB(t, filepath.Join(t.TempDir(), "shramba.db"))
}

func openTestDB(t *testing.T, path string) *sql.DB {
	t.Helper()

	db, err := Open(path)
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := EnsureSchema(db); err != nil {
		t.Fatalf("creating test database schema: %v", err)
	}
	return db
}
