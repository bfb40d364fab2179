package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/erazemk/shramba/internal/model"
)

const itemColumns = `id, account_id, store_id, category_id, supplier_id, name, barcode, supplier_sku,
	unit, min_stock, image_mime, created_at, updated_at, deleted_at`

func scanItem(row interface{ Scan(...any) error }, item *model.Item) error {
	var barcode, sku, imageMime sql.NullString
	err := row.Scan(&item.ID, &item.AccountID, &item.StoreID, &item.CategoryID, &item.SupplierID,
		&item.Name, &barcode, &sku, &item.Unit, &item.MinStock, &imageMime,
		&item.CreatedAt, &item.UpdatedAt, &item.DeletedAt)
	if err != nil {
		return err
	}
	item.Barcode = barcode.String
	item.SupplierSKU = sku.String
	item.ImageMime = imageMime.String
	return nil
}

// validateItemInput normalises in and checks its references belong to the account.
func validateItemInput(ctx context.Context, q Querier, accountID int64, in *model.ItemInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return invalid("item name is required")
	}
	in.Unit = strings.TrimSpace(in.Unit)
	if in.Unit == "" {
		in.Unit = model.DefaultUnit
	}
	if in.MinStock < 0 {
		return invalid("min_stock must not be negative")
	}
	if in.StoreID != nil {
		if err := ensureActive(ctx, q, "stores", accountID, *in.StoreID); err != nil {
			return err
		}
	}
	if in.SupplierID != nil {
		if err := ensureActive(ctx, q, "suppliers", accountID, *in.SupplierID); err != nil {
			return err
		}
	}
	if in.CategoryID != nil {
		if err := ensureCategory(ctx, q, accountID, *in.CategoryID); err != nil {
			return err
		}
	}
	return nil
}

// CreateItem creates a new item.
func CreateItem(ctx context.Context, db *sql.DB, accountID int64, in model.ItemInput) (*model.Item, error) {
	if err := validateItemInput(ctx, db, accountID, &in); err != nil {
		return nil, err
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO items (account_id, store_id, category_id, supplier_id, name, barcode, supplier_sku, unit, min_stock)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		accountID, in.StoreID, in.CategoryID, in.SupplierID, in.Name,
		nullString(in.Barcode), nullString(in.SupplierSKU), in.Unit, in.MinStock,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	return GetItem(ctx, db, accountID, id)
}

// GetItem returns an item of the account by ID, including soft-deleted ones.
func GetItem(ctx context.Context, db *sql.DB, accountID, id int64) (*model.Item, error) {
	return getItem(ctx, db, accountID, id)
}

func getItem(ctx context.Context, q Querier, accountID, id int64) (*model.Item, error) {
	item := &model.Item{}
	err := scanItem(q.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ? AND account_id = ?`, id, accountID,
	), item)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, wrap("getting item", err)
	}
	return item, nil
}

// getActiveItem is getItem that treats a soft-deleted or missing item as ErrNotFound.
func getActiveItem(ctx context.Context, q Querier, accountID, id int64) (*model.Item, error) {
	item, err := getItem(ctx, q, accountID, id)
	if err != nil {
		return nil, err
	}
	if item == nil || item.DeletedAt != nil {
		return nil, notFound("item", id)
	}
	return item, nil
}

// ItemFilter narrows ListItems. Zero values match everything.
type ItemFilter struct {
	StoreID    int64
	CategoryID int64
	SupplierID int64
	Search     string
}

// ListItems returns the non-deleted items of an account.
func ListItems(ctx context.Context, db *sql.DB, accountID int64, f ItemFilter) ([]model.Item, error) {
	where := []string{"account_id = ?", "deleted_at IS NULL"}
	args := []any{accountID}
	if f.StoreID != 0 {
		where = append(where, "store_id = ?")
		args = append(args, f.StoreID)
	}
	if f.CategoryID != 0 {
		where = append(where, "category_id = ?")
		args = append(args, f.CategoryID)
	}
	if f.SupplierID != 0 {
		where = append(where, "supplier_id = ?")
		args = append(args, f.SupplierID)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		where = append(where, "name LIKE ?")
		args = append(args, "%"+s+"%")
	}

	return queryItems(ctx, db,
		`SELECT `+itemColumns+` FROM items WHERE `+strings.Join(where, " AND ")+` ORDER BY name, id`, args...)
}

// ListItemsForMatching returns every active item of an account except excludeID.
// Pass 0 to exclude nothing.
func ListItemsForMatching(ctx context.Context, q Querier, accountID, excludeID int64) ([]model.Item, error) {
	return queryItems(ctx, q,
		`SELECT `+itemColumns+` FROM items
		 WHERE account_id = ? AND deleted_at IS NULL AND id != ? ORDER BY id`, accountID, excludeID)
}

func queryItems(ctx context.Context, q Querier, query string, args ...any) ([]model.Item, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		var item model.Item
		if err := scanItem(rows, &item); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// UpdateItem updates an item's metadata.
func UpdateItem(ctx context.Context, db *sql.DB, accountID, id int64, in model.ItemInput) error {
	if err := validateItemInput(ctx, db, accountID, &in); err != nil {
		return err
	}
	result, err := db.ExecContext(ctx,
		`UPDATE items SET store_id = ?, category_id = ?, supplier_id = ?, name = ?, barcode = ?,
		        supplier_sku = ?, unit = ?, min_stock = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND account_id = ? AND deleted_at IS NULL`,
		in.StoreID, in.CategoryID, in.SupplierID, in.Name, nullString(in.Barcode),
		nullString(in.SupplierSKU), in.Unit, in.MinStock, id, accountID,
	)
	if err != nil {
		return fmt.Errorf("updating item: %w", err)
	}
	return requireRow(result, "item", id)
}

// DeleteItem soft-deletes an item. Its history stays in place; pending
// duplicate candidates naming it are dismissed.
func DeleteItem(ctx context.Context, db *sql.DB, accountID, id int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return wrap("beginning transaction", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE items SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND account_id = ? AND deleted_at IS NULL`,
		id, accountID,
	)
	if err != nil {
		return wrap("deleting item", err)
	}
	if err := requireRow(result, "item", id); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE duplicate_candidates SET status = 'dismissed', resolved_at = ?
		 WHERE account_id = ? AND status = 'pending' AND (item_id = ? OR matched_item_id = ?)`,
		time.Now().UTC(), accountID, id, id,
	); err != nil {
		return wrap("closing candidates of deleted item", err)
	}

	if err := tx.Commit(); err != nil {
		return wrap("committing item deletion", err)
	}
	return nil
}

// SetItemImage sets an item's image data.
func SetItemImage(ctx context.Context, db *sql.DB, accountID, id int64, image []byte, mime string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE items SET image = ?, image_mime = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND account_id = ? AND deleted_at IS NULL`,
		image, mime, id, accountID,
	)
	if err != nil {
		return fmt.Errorf("setting item image: %w", err)
	}
	return requireRow(result, "item", id)
}

// GetItemImage returns an item's image data and MIME type.
func GetItemImage(ctx context.Context, db *sql.DB, accountID, id int64) ([]byte, string, error) {
	var image []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT image, image_mime FROM items WHERE id = ? AND account_id = ?`, id, accountID,
	).Scan(&image, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting item image: %w", err)
	}
	return image, mime.String, nil
}

// GetItemMovements returns the stock movement history of an item.
func GetItemMovements(ctx context.Context, db *sql.DB, accountID, itemID int64) ([]model.StockMovement, error) {
	return ListMovements(ctx, db, accountID, MovementFilter{ItemID: itemID})
}
