package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/erazemk/shramba/internal/model"
)

// CreateAccount creates a new tenant account.
func CreateAccount(ctx context.Context, db *sql.DB, name string) (*model.Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("account name is required")
	}

	result, err := db.ExecContext(ctx, `INSERT INTO accounts (name) VALUES (?)`, name)
	if err != nil {
		return nil, fmt.Errorf("creating account: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting account id: %w", err)
	}

	return GetAccount(ctx, db, id)
}

// CreateAccountWithAdmin creates an account and its first admin user in one
// transaction, so a taken username leaves no empty account behind.
func CreateAccountWithAdmin(ctx context.Context, db *sql.DB, name, username, passwordHash string) (*model.Account, *model.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil, invalid("account name is required")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, wrap("beginning transaction", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `INSERT INTO accounts (name) VALUES (?)`, name)
	if err != nil {
		return nil, nil, wrap("creating account", err)
	}
	accountID, err := result.LastInsertId()
	if err != nil {
		return nil, nil, fmt.Errorf("getting account id: %w", err)
	}

	userID, err := insertUser(ctx, tx, accountID, username, passwordHash, model.RoleAdmin)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, wrap("committing account", err)
	}

	account, err := GetAccount(ctx, db, accountID)
	if err != nil {
		return nil, nil, err
	}
	user, err := GetUser(ctx, db, accountID, userID)
	if err != nil {
		return nil, nil, err
	}
	return account, user, nil
}

// GetAccount returns an account by ID.
func GetAccount(ctx context.Context, db *sql.DB, id int64) (*model.Account, error) {
	a := &model.Account{}
	err := db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM accounts WHERE id = ?`, id,
	).Scan(&a.ID, &a.Name, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting account: %w", err)
	}
	return a, nil
}

// ListAccounts returns all accounts.
func ListAccounts(ctx context.Context, db *sql.DB) ([]model.Account, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, name, created_at FROM accounts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		var a model.Account
		if err := rows.Scan(&a.ID, &a.Name, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}
