package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/erazemk/shramba/internal/model"
)

const userColumns = `id, account_id, username, password_hash, role, created_at, deleted_at`

func scanUser(row interface{ Scan(...any) error }, u *model.User) error {
	return row.Scan(&u.ID, &u.AccountID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.DeletedAt)
}

// CreateUser creates a new user in an account.
func CreateUser(ctx context.Context, db *sql.DB, accountID int64, username, passwordHash, role string) (*model.User, error) {
	id, err := insertUser(ctx, db, accountID, username, passwordHash, role)
	if err != nil {
		return nil, err
	}
	return GetUser(ctx, db, accountID, id)
}

func insertUser(ctx context.Context, q Querier, accountID int64, username, passwordHash, role string) (int64, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return 0, invalid("username is required")
	}
	if !model.ValidRole(role) {
		return 0, invalid("unknown role %q", role)
	}

	result, err := q.ExecContext(ctx,
		`INSERT INTO users (account_id, username, password_hash, role) VALUES (?, ?, ?, ?)`,
		accountID, username, passwordHash, role,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: username %q already exists", ErrConflict, username)
		}
		return 0, fmt.Errorf("creating user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting user id: %w", err)
	}
	return id, nil
}

// GetUser returns a user of the account by ID.
func GetUser(ctx context.Context, db *sql.DB, accountID, id int64) (*model.User, error) {
	u := &model.User{}
	err := scanUser(db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ? AND account_id = ?`, id, accountID,
	), u)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

// GetUserByUsername returns an active user by username. Usernames are unique
// across accounts, so login needs no account hint.
func GetUserByUsername(ctx context.Context, db *sql.DB, username string) (*model.User, error) {
	u := &model.User{}
	err := scanUser(db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ? AND deleted_at IS NULL`, username,
	), u)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by username: %w", err)
	}
	return u, nil
}

// ListUsers returns all non-deleted users of an account.
func ListUsers(ctx context.Context, db *sql.DB, accountID int64) ([]model.User, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE account_id = ? AND deleted_at IS NULL ORDER BY id`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := scanUser(rows, &u); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateUser updates a user's role.
func UpdateUser(ctx context.Context, db *sql.DB, accountID, id int64, role string) error {
	if !model.ValidRole(role) {
		return invalid("unknown role %q", role)
	}
	result, err := db.ExecContext(ctx,
		`UPDATE users SET role = ? WHERE id = ? AND account_id = ? AND deleted_at IS NULL`,
		role, id, accountID,
	)
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}
	return requireRow(result, "user", id)
}

// UpdateUserPassword updates a user's password hash.
func UpdateUserPassword(ctx context.Context, db *sql.DB, accountID, id int64, passwordHash string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ? AND account_id = ? AND deleted_at IS NULL`,
		passwordHash, id, accountID,
	)
	if err != nil {
		return fmt.Errorf("updating user password: %w", err)
	}
	return requireRow(result, "user", id)
}

// DeleteUser soft-deletes a user.
func DeleteUser(ctx context.Context, db *sql.DB, accountID, id int64) error {
	result, err := db.ExecContext(ctx,
		`UPDATE users SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND account_id = ? AND deleted_at IS NULL`,
		id, accountID,
	)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	return requireRow(result, "user", id)
}

// requireRow turns a zero-row update into ErrNotFound.
func requireRow(result sql.Result, what string, id int64) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return notFound(what, id)
	}
	return nil
}
