package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/erazemk/shramba/internal/model"
)

func mustAccount(t *testing.T, database *sql.DB, name string) int64 {
	t.Helper()
	a, err := CreateAccount(context.Background(), database, name)
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	return a.ID
}

func mustStore(t *testing.T, database *sql.DB, accountID int64, name string) *model.Store {
	t.Helper()
	s, err := CreateStore(context.Background(), database, accountID, name, "")
	if err != nil {
		t.Fatalf("CreateStore: %v", err)
	}
	return s
}

func mustItem(t *testing.T, database *sql.DB, accountID int64, in model.ItemInput) *model.Item {
	t.Helper()
	item, err := CreateItem(context.Background(), database, accountID, in)
	if err != nil {
		t.Fatalf("CreateItem(%q): %v", in.Name, err)
	}
	return item
}

func mustUser(t *testing.T, database *sql.DB, accountID int64, username string) *model.User {
	t.Helper()
	u, err := CreateUser(context.Background(), database, accountID, username, "hash", model.RoleManager)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return u
}

func ptr[T any](v T) *T { return &v }
