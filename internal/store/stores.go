package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/erazemk/shramba/internal/model"
)

// CreateStore creates a new store (kitchen, bar, storeroom).
func CreateStore(ctx context.Context, db *sql.DB, accountID int64, name, address string) (*model.Store, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("store name is required")
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO stores (account_id, name, address) VALUES (?, ?, ?)`,
		accountID, name, nullString(address),
	)
	if err != nil {
		return nil, fmt.Errorf("creating store: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting store id: %w", err)
	}

	return GetStore(ctx, db, accountID, id)
}

// GetStore returns a store of the account by ID.
func GetStore(ctx context.Context, db *sql.DB, accountID, id int64) (*model.Store, error) {
	s := &model.Store{}
	var address sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT id, account_id, name, address, created_at, deleted_at
		 FROM stores WHERE id = ? AND account_id = ?`, id, accountID,
	).Scan(&s.ID, &s.AccountID, &s.Name, &address, &s.CreatedAt, &s.DeletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting store: %w", err)
	}
	s.Address = address.String
	return s, nil
}

// ListStores returns all non-deleted stores of an account.
func ListStores(ctx context.Context, db *sql.DB, accountID int64) ([]model.Store, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, account_id, name, address, created_at, deleted_at
		 FROM stores WHERE account_id = ? AND deleted_at IS NULL ORDER BY name`, accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing stores: %w", err)
	}
	defer rows.Close()

	var stores []model.Store
	for rows.Next() {
		var s model.Store
		var address sql.NullString
		if err := rows.Scan(&s.ID, &s.AccountID, &s.Name, &address, &s.CreatedAt, &s.DeletedAt); err != nil {
			return nil, fmt.Errorf("scanning store: %w", err)
		}
		s.Address = address.String
		stores = append(stores, s)
	}
	return stores, rows.Err()
}

// UpdateStore updates a store's name and address.
func UpdateStore(ctx context.Context, db *sql.DB, accountID, id int64, name, address string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return invalid("store name is required")
	}
	result, err := db.ExecContext(ctx,
		`UPDATE stores SET name = ?, address = ? WHERE id = ? AND account_id = ? AND deleted_at IS NULL`,
		name, nullString(address), id, accountID,
	)
	if err != nil {
		return fmt.Errorf("updating store: %w", err)
	}
	return requireRow(result, "store", id)
}

// DeleteStore soft-deletes a store. A store still holding stock cannot be deleted.
func DeleteStore(ctx context.Context, db *sql.DB, accountID, id int64) error {
	levels, err := CalculateStockByStore(ctx, db, accountID, id)
	if err != nil {
		return err
	}
	for _, l := range levels {
		if l.Quantity > 0 {
			return fmt.Errorf("%w: store %d still holds %s", ErrInvalidState, id, l.ItemName)
		}
	}

	result, err := db.ExecContext(ctx,
		`UPDATE stores SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND account_id = ? AND deleted_at IS NULL`,
		id, accountID,
	)
	if err != nil {
		return fmt.Errorf("deleting store: %w", err)
	}
	return requireRow(result, "store", id)
}

// ensureActive returns ErrNotFound unless table holds an active row with id in the account.
// table is always a package constant.
func ensureActive(ctx context.Context, q Querier, table string, accountID, id int64) error {
	var one int
	err := q.QueryRowContext(ctx,
		`SELECT 1 FROM `+table+` WHERE id = ? AND account_id = ? AND deleted_at IS NULL`,
		id, accountID,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return notFound(strings.TrimSuffix(table, "s"), id)
	}
	if err != nil {
		return wrap("checking "+table, err)
	}
	return nil
}
