package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/erazemk/shramba/internal/model"
)

// CreateSupplier creates a new supplier.
func CreateSupplier(ctx context.Context, db *sql.DB, accountID int64, name, contact string) (*model.Supplier, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("supplier name is required")
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO suppliers (account_id, name, contact) VALUES (?, ?, ?)`,
		accountID, name, nullString(contact),
	)
	if err != nil {
		return nil, fmt.Errorf("creating supplier: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting supplier id: %w", err)
	}

	return GetSupplier(ctx, db, accountID, id)
}

// GetSupplier returns a supplier of the account by ID.
func GetSupplier(ctx context.Context, db *sql.DB, accountID, id int64) (*model.Supplier, error) {
	s := &model.Supplier{}
	var contact sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT id, account_id, name, contact, created_at, deleted_at
		 FROM suppliers WHERE id = ? AND account_id = ?`, id, accountID,
	).Scan(&s.ID, &s.AccountID, &s.Name, &contact, &s.CreatedAt, &s.DeletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting supplier: %w", err)
	}
	s.Contact = contact.String
	return s, nil
}

// ListSuppliers returns all non-deleted suppliers of an account.
func ListSuppliers(ctx context.Context, db *sql.DB, accountID int64) ([]model.Supplier, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, account_id, name, contact, created_at, deleted_at
		 FROM suppliers WHERE account_id = ? AND deleted_at IS NULL ORDER BY name`, accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing suppliers: %w", err)
	}
	defer rows.Close()

	var suppliers []model.Supplier
	for rows.Next() {
		var s model.Supplier
		var contact sql.NullString
		if err := rows.Scan(&s.ID, &s.AccountID, &s.Name, &contact, &s.CreatedAt, &s.DeletedAt); err != nil {
			return nil, fmt.Errorf("scanning supplier: %w", err)
		}
		s.Contact = contact.String
		suppliers = append(suppliers, s)
	}
	return suppliers, rows.Err()
}

// UpdateSupplier updates a supplier's name and contact.
func UpdateSupplier(ctx context.Context, db *sql.DB, accountID, id int64, name, contact string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return invalid("supplier name is required")
	}
	result, err := db.ExecContext(ctx,
		`UPDATE suppliers SET name = ?, contact = ? WHERE id = ? AND account_id = ? AND deleted_at IS NULL`,
		name, nullString(contact), id, accountID,
	)
	if err != nil {
		return fmt.Errorf("updating supplier: %w", err)
	}
	return requireRow(result, "supplier", id)
}

// DeleteSupplier soft-deletes a supplier.
func DeleteSupplier(ctx context.Context, db *sql.DB, accountID, id int64) error {
	result, err := db.ExecContext(ctx,
		`UPDATE suppliers SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND account_id = ? AND deleted_at IS NULL`,
		id, accountID,
	)
	if err != nil {
		return fmt.Errorf("deleting supplier: %w", err)
	}
	return requireRow(result, "supplier", id)
}

// LinkSupplierItem records that a supplier sells an item, or updates the
// existing link's SKU and price.
func LinkSupplierItem(ctx context.Context, db *sql.DB, accountID, supplierID, itemID int64, sku string, unitPrice *float64) (*model.SupplierItem, error) {
	if unitPrice != nil && *unitPrice < 0 {
		return nil, invalid("unit price must not be negative")
	}
	if err := ensureActive(ctx, db, "suppliers", accountID, supplierID); err != nil {
		return nil, err
	}
	if err := ensureActive(ctx, db, "items", accountID, itemID); err != nil {
		return nil, err
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO supplier_items (supplier_id, item_id, sku, unit_price) VALUES (?, ?, ?, ?)
		 ON CONFLICT (supplier_id, item_id) DO UPDATE SET sku = excluded.sku, unit_price = excluded.unit_price`,
		supplierID, itemID, nullString(sku), unitPrice,
	)
	if err != nil {
		return nil, fmt.Errorf("linking supplier item: %w", err)
	}

	links, err := listSupplierItems(ctx, db, `si.supplier_id = ? AND si.item_id = ?`, supplierID, itemID)
	if err != nil {
		return nil, err
	}
	if len(links) == 0 {
		return nil, notFound("supplier item", itemID)
	}
	return &links[0], nil
}

// UnlinkSupplierItem removes a supplier-item link.
func UnlinkSupplierItem(ctx context.Context, db *sql.DB, accountID, supplierID, itemID int64) error {
	if err := ensureActive(ctx, db, "suppliers", accountID, supplierID); err != nil {
		return err
	}
	result, err := db.ExecContext(ctx,
		`DELETE FROM supplier_items WHERE supplier_id = ? AND item_id = ?`, supplierID, itemID,
	)
	if err != nil {
		return fmt.Errorf("unlinking supplier item: %w", err)
	}
	return requireRow(result, "supplier item", itemID)
}

// ListSupplierItems returns the items a supplier sells.
func ListSupplierItems(ctx context.Context, db *sql.DB, accountID, supplierID int64) ([]model.SupplierItem, error) {
	if err := ensureActive(ctx, db, "suppliers", accountID, supplierID); err != nil {
		return nil, err
	}
	return listSupplierItems(ctx, db, `si.supplier_id = ?`, supplierID)
}

func listSupplierItems(ctx context.Context, q Querier, where string, args ...any) ([]model.SupplierItem, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT si.id, si.supplier_id, si.item_id, si.sku, si.unit_price, s.name, i.name
		 FROM supplier_items si
		 JOIN suppliers s ON s.id = si.supplier_id
		 JOIN items i ON i.id = si.item_id
		 WHERE `+where+` ORDER BY s.name, i.name`, args...,
	)
	if err != nil {
		return nil, fmt.Errorf("listing supplier items: %w", err)
	}
	defer rows.Close()

	var links []model.SupplierItem
	for rows.Next() {
		var l model.SupplierItem
		var sku sql.NullString
		if err := rows.Scan(&l.ID, &l.SupplierID, &l.ItemID, &sku, &l.UnitPrice, &l.SupplierName, &l.ItemName); err != nil {
			return nil, fmt.Errorf("scanning supplier item: %w", err)
		}
		l.SKU = sku.String
		links = append(links, l)
	}
	return links, rows.Err()
}
