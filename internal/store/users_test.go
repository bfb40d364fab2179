package store

import (
	"context"
	"errors"
	"testing"

	"github.com/erazemk/shramba/internal/db"
	"github.com/erazemk/shramba/internal/model"
)

func TestCreateAndGetUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	acct := mustAccount(t, database, "bistro")

	user, err := CreateUser(ctx, database, acct, "testuser", "hash123", model.RoleStaff)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.Username != "testuser" {
		t.Errorf("expected username 'testuser', got %q", user.Username)
	}
	if user.Role != model.RoleStaff {
		t.Errorf("expected role 'staff', got %q", user.Role)
	}
	if user.AccountID != acct {
		t.Errorf("expected account %d, got %d", acct, user.AccountID)
	}

	got, err := GetUser(ctx, database, acct, user.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Username != "testuser" {
		t.Errorf("expected username 'testuser', got %q", got.Username)
	}
}

func TestCreateUserRejectsUnknownRole(t *testing.T) {
	database := db.NewTestDB(t)
	acct := mustAccount(t, database, "bistro")

	_, err := CreateUser(context.Background(), database, acct, "x", "hash", "owner")
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	a := mustAccount(t, database, "bistro")
	b := mustAccount(t, database, "cafe")

	mustUser(t, database, a, "chef")
	_, err := CreateUser(ctx, database, b, "chef", "hash", model.RoleStaff)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict across accounts, got %v", err)
	}

	if _, err := CreateUser(ctx, database, a, "  ", "hash", model.RoleStaff); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for blank username, got %v", err)
	}
}

func TestGetUserByUsername(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	acct := mustAccount(t, database, "bistro")

	CreateUser(ctx, database, acct, "alice", "hash", model.RoleAdmin)

	user, err := GetUserByUsername(ctx, database, "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if user == nil {
		t.Fatal("expected user, got nil")
	}
	if user.Username != "alice" {
		t.Errorf("expected 'alice', got %q", user.Username)
	}

	missing, err := GetUserByUsername(ctx, database, "bob")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing user")
	}
}

func TestListUsersIsScoped(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	a := mustAccount(t, database, "a")
	b := mustAccount(t, database, "b")

	CreateUser(ctx, database, a, "a1", "hash", model.RoleStaff)
	CreateUser(ctx, database, a, "a2", "hash", model.RoleManager)
	other, _ := CreateUser(ctx, database, b, "b1", "hash", model.RoleStaff)

	users, err := ListUsers(ctx, database, a)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 2 {
		t.Errorf("expected 2 users, got %d", len(users))
	}

	got, err := GetUser(ctx, database, a, other.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got != nil {
		t.Error("expected nil for user of another account")
	}
}

func TestDeleteUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	acct := mustAccount(t, database, "bistro")

	user, _ := CreateUser(ctx, database, acct, "deleteme", "hash", model.RoleStaff)
	if err := DeleteUser(ctx, database, acct, user.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	users, _ := ListUsers(ctx, database, acct)
	if len(users) != 0 {
		t.Errorf("expected 0 users after delete, got %d", len(users))
	}

	if err := DeleteUser(ctx, database, acct, user.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestUpdateUserPassword(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	acct := mustAccount(t, database, "bistro")

	user, _ := CreateUser(ctx, database, acct, "pwuser", "oldhash", model.RoleStaff)
	if err := UpdateUserPassword(ctx, database, acct, user.ID, "newhash"); err != nil {
		t.Fatalf("UpdateUserPassword: %v", err)
	}

	got, _ := GetUser(ctx, database, acct, user.ID)
	if got.PasswordHash != "newhash" {
		t.Errorf("expected password hash 'newhash', got %q", got.PasswordHash)
	}
}
