package db

import (
	"strings"
	"testing"
)

func TestDSN(t *testing.T) {
	if got := dsn(":memory:"); !strings.HasPrefix(got, "file::memory:?") {
		t.Errorf("unexpected in-memory dsn %q", got)
	}
	got := dsn("/tmp/shramba.db")
	want := "file:/tmp/shramba.db?_pragma=journal_mode%28WAL%29&_pragma=busy_timeout%285000%29&_pragma=foreign_keys%281%29&_pragma=synchronous%28NORMAL%29"
	if got != want {
		t.Errorf("dsn = %q, want %q", got, want)
	}
}

func TestEnsureSchemaIdempotent(t *testing.T) {
	database := NewTestFileDB(t)

	if err := EnsureSchema(database); err != nil {
		t.Fatalf("second EnsureSchema: %v", err)
	}

	var fk int
	if err := database.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("reading foreign_keys pragma: %v", err)
	}
	if fk != 1 {
		t.Errorf("expected foreign keys enabled, got %d", fk)
	}

	var mode string
	if err := database.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("reading journal_mode pragma: %v", err)
	}
	if mode != "wal" {
		t.Errorf("expected wal journal mode, got %q", mode)
	}
}

func TestPendingPairIndex(t *testing.T) {
	database := NewTestDB(t)

	if _, err := database.Exec(`INSERT INTO accounts (name) VALUES ('bistro')`); err != nil {
		t.Fatalf("inserting account: %v", err)
	}
	insert := `INSERT INTO duplicate_candidates (account_id, item_id, matched_item_id, confidence, status) VALUES (1, ?, ?, 0.9, ?)`

	if _, err := database.Exec(insert, 1, 2, "pending"); err != nil {
		t.Fatalf("inserting candidate: %v", err)
	}
	// The reversed pair is the same pair.
	if _, err := database.Exec(insert, 2, 1, "pending"); err == nil {
		t.Error("expected reversed pending pair to violate the unique index")
	}
	// Resolved rows do not count.
	if _, err := database.Exec(insert, 2, 1, "dismissed"); err != nil {
		t.Errorf("inserting dismissed duplicate of pending pair: %v", err)
	}
	if _, err := database.Exec(insert, 3, 3, "pending"); err == nil {
		t.Error("expected a self pair to be rejected")
	}
}
