package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/erazemk/shramba/internal/model"
)

// CreateCategory creates a category. Names are unique per account.
func CreateCategory(ctx context.Context, db *sql.DB, accountID int64, name string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("category name is required")
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO categories (account_id, name) VALUES (?, ?)`, accountID, name,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: category %q already exists", ErrConflict, name)
		}
		return nil, fmt.Errorf("creating category: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting category id: %w", err)
	}
	return &model.Category{ID: id, AccountID: accountID, Name: name}, nil
}

// ListCategories returns the categories of an account.
func ListCategories(ctx context.Context, db *sql.DB, accountID int64) ([]model.Category, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, account_id, name FROM categories WHERE account_id = ? ORDER BY name`, accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.AccountID, &c.Name); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// DeleteCategory removes a category. Items in it become uncategorised.
func DeleteCategory(ctx context.Context, db *sql.DB, accountID, id int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE items SET category_id = NULL WHERE category_id = ? AND account_id = ?`, id, accountID,
	); err != nil {
		return fmt.Errorf("clearing item categories: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`DELETE FROM categories WHERE id = ? AND account_id = ?`, id, accountID,
	)
	if err != nil {
		return fmt.Errorf("deleting category: %w", err)
	}
	if err := requireRow(result, "category", id); err != nil {
		return err
	}
	return tx.Commit()
}

func ensureCategory(ctx context.Context, q Querier, accountID, id int64) error {
	var one int
	err := q.QueryRowContext(ctx,
		`SELECT 1 FROM categories WHERE id = ? AND account_id = ?`, id, accountID,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return notFound("category", id)
	}
	if err != nil {
		return fmt.Errorf("checking category: %w", err)
	}
	return nil
}
