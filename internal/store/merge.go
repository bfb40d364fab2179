package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/shramba/internal/model"
)

// GetAffectedByMerge lists every record that merging removeID into keepID
// would touch. It writes nothing.
func GetAffectedByMerge(ctx context.Context, db *sql.DB, accountID, removeID, keepID int64) (*model.MergeImpact, error) {
	if removeID == keepID {
		return nil, invalid("cannot merge item %d into itself", removeID)
	}

	remove, err := getActiveItem(ctx, db, accountID, removeID)
	if err != nil {
		return nil, err
	}
	keep, err := getActiveItem(ctx, db, accountID, keepID)
	if err != nil {
		return nil, err
	}

	impact := &model.MergeImpact{
		RemoveItem:    *remove,
		KeepItem:      *keep,
		Recipes:       []model.RecipeRef{},
		SupplierLinks: []model.SupplierRef{},
	}

	rows, err := db.QueryContext(ctx,
		`SELECT r.id, r.name,
		        EXISTS (SELECT 1 FROM recipe_ingredients k WHERE k.recipe_id = r.id AND k.item_id = ?)
		 FROM recipe_ingredients ri
		 JOIN recipes r ON r.id = ri.recipe_id
		 WHERE ri.item_id = ? AND r.account_id = ?
		 ORDER BY r.name, r.id`, keepID, removeID, accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing affected recipes: %w", err)
	}
	for rows.Next() {
		var ref model.RecipeRef
		if err := rows.Scan(&ref.ID, &ref.Name, &ref.Collides); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning affected recipe: %w", err)
		}
		impact.Recipes = append(impact.Recipes, ref)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing affected recipes: %w", err)
	}

	rows, err = db.QueryContext(ctx,
		`SELECT s.id, s.name, COALESCE(si.sku, ''),
		        EXISTS (SELECT 1 FROM supplier_items k WHERE k.supplier_id = si.supplier_id AND k.item_id = ?)
		 FROM supplier_items si
		 JOIN suppliers s ON s.id = si.supplier_id
		 WHERE si.item_id = ? AND s.account_id = ?
		 ORDER BY s.name, s.id`, keepID, removeID, accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing affected supplier links: %w", err)
	}
	for rows.Next() {
		var ref model.SupplierRef
		if err := rows.Scan(&ref.SupplierID, &ref.SupplierName, &ref.SKU, &ref.Collides); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning affected supplier link: %w", err)
		}
		impact.SupplierLinks = append(impact.SupplierLinks, ref)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing affected supplier links: %w", err)
	}

	counts := []struct {
		dest  *int
		query string
	}{
		{&impact.StockMovements, `SELECT COUNT(*) FROM stock_movements WHERE item_id = ? AND account_id = ?`},
		{&impact.StockEntries, `SELECT COUNT(*) FROM stock_entries WHERE item_id = ? AND account_id = ?`},
		{&impact.Notifications, `SELECT COUNT(*) FROM notifications WHERE item_id = ? AND account_id = ?`},
		{&impact.PendingCandidates, `SELECT COUNT(*) FROM duplicate_candidates
			WHERE (item_id = ? OR matched_item_id = ?) AND account_id = ? AND status = 'pending'`},
	}
	for _, c := range counts {
		args := []any{removeID, accountID}
		if c.dest == &impact.PendingCandidates {
			args = []any{removeID, removeID, accountID}
		}
		if err := db.QueryRowContext(ctx, c.query, args...).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("counting merge impact: %w", err)
		}
	}

	return impact, nil
}

// MergeItems re-points every record referencing removeID to keepID and then
// deletes removeID, all in one transaction. Running it again after success
// fails with ErrNotFound.
func MergeItems(ctx context.Context, db *sql.DB, accountID, removeID, keepID, actorID int64) (*model.MergeResult, error) {
	if removeID == keepID {
		return nil, invalid("cannot merge item %d into itself", removeID)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, wrap("beginning transaction", err)
	}
	defer tx.Rollback()

	// The first statement is a write so the transaction owns the write lock
	// before it reads anything. A concurrent merge of the same item either
	// waits and then finds nothing, or fails busy.
	touched, err := tx.ExecContext(ctx,
		`UPDATE items SET updated_at = CURRENT_TIMESTAMP WHERE id = ? AND account_id = ? AND deleted_at IS NULL`,
		removeID, accountID,
	)
	if err != nil {
		return nil, wrap("locking item", err)
	}
	if err := requireRow(touched, "item", removeID); err != nil {
		return nil, err
	}
	if _, err := getActiveItem(ctx, tx, accountID, keepID); err != nil {
		return nil, err
	}

	res := &model.MergeResult{KeptItemID: keepID, RemovedItemID: removeID}
	m := merger{ctx: ctx, tx: tx}

	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT recipe_id) FROM recipe_ingredients WHERE item_id = ?`, removeID,
	).Scan(&res.MigratedRecipes); err != nil {
		return nil, wrap("counting recipes", err)
	}

	// Where both items are on a recipe, the kept item's line wins.
	m.exec(&res.DiscardedIngredientLines, "discarding ingredient lines",
		`DELETE FROM recipe_ingredients WHERE item_id = ?
		 AND recipe_id IN (SELECT recipe_id FROM recipe_ingredients WHERE item_id = ?)`, removeID, keepID)
	m.exec(&res.MigratedIngredientLines, "migrating ingredient lines",
		`UPDATE recipe_ingredients SET item_id = ? WHERE item_id = ?`, keepID, removeID)

	m.exec(&res.MigratedMovements, "migrating stock movements",
		`UPDATE stock_movements SET item_id = ? WHERE item_id = ? AND account_id = ?`, keepID, removeID, accountID)
	m.exec(&res.MigratedStockEntries, "migrating stock entries",
		`UPDATE stock_entries SET item_id = ? WHERE item_id = ? AND account_id = ?`, keepID, removeID, accountID)

	m.exec(&res.DiscardedSupplierLinks, "discarding supplier links",
		`DELETE FROM supplier_items WHERE item_id = ?
		 AND supplier_id IN (SELECT supplier_id FROM supplier_items WHERE item_id = ?)`, removeID, keepID)
	m.exec(&res.MigratedSupplierLinks, "migrating supplier links",
		`UPDATE supplier_items SET item_id = ? WHERE item_id = ?`, keepID, removeID)

	m.exec(&res.MigratedNotifications, "migrating notifications",
		`UPDATE notifications SET item_id = ? WHERE item_id = ? AND account_id = ?`, keepID, removeID, accountID)
	if m.err != nil {
		return nil, m.err
	}

	if err := resolveMergedCandidates(ctx, tx, accountID, removeID, keepID, actorID, res); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE id = ? AND account_id = ?`, removeID, accountID); err != nil {
		return nil, wrap("deleting merged item", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, wrap("committing merge", err)
	}
	return res, nil
}

// merger runs a sequence of statements and keeps the first error.
type merger struct {
	ctx context.Context
	tx  *sql.Tx
	err error
}

func (m *merger) exec(count *int, op, query string, args ...any) {
	if m.err != nil {
		return
	}
	result, err := m.tx.ExecContext(m.ctx, query, args...)
	if err != nil {
		m.err = wrap(op, err)
		return
	}
	n, err := result.RowsAffected()
	if err != nil {
		m.err = fmt.Errorf("%s: %w", op, err)
		return
	}
	*count = int(n)
}

// resolveMergedCandidates closes the merged pair and moves the removed item's
// other pending candidates onto the survivor. A candidate that would pair the
// survivor with itself or duplicate a pending pair is closed as merged instead.
func resolveMergedCandidates(ctx context.Context, tx *sql.Tx, accountID, removeID, keepID, actorID int64, res *model.MergeResult) error {
	now := time.Now().UTC()
	actor := actorRef(actorID)

	closed, err := tx.ExecContext(ctx,
		`UPDATE duplicate_candidates SET status = 'merged', resolved_at = ?, resolved_by = ?
		 WHERE account_id = ? AND status = 'pending' AND `+pairMatch,
		append([]any{now, actor, accountID}, pairArgs(removeID, keepID)...)...,
	)
	if err != nil {
		return wrap("resolving merged candidates", err)
	}
	n, _ := closed.RowsAffected()
	res.ResolvedCandidates = int(n)

	others, err := queryCandidates(ctx, tx,
		candidateSelect+` WHERE c.account_id = ? AND c.status = 'pending'
		  AND (c.item_id = ? OR c.matched_item_id = ?) ORDER BY c.id`,
		accountID, removeID, removeID)
	if err != nil {
		return err
	}

	for _, c := range others {
		other := c.Other(removeID)

		var pending int
		if other != keepID {
			if err := tx.QueryRowContext(ctx,
				`SELECT COUNT(*) FROM duplicate_candidates WHERE account_id = ? AND status = 'pending' AND `+pairMatch,
				append([]any{accountID}, pairArgs(keepID, other)...)...,
			).Scan(&pending); err != nil {
				return wrap("checking survivor candidates", err)
			}
		}

		if other == keepID || pending > 0 {
			if _, err := tx.ExecContext(ctx,
				`UPDATE duplicate_candidates SET status = 'merged', resolved_at = ?, resolved_by = ? WHERE id = ?`,
				now, actor, c.ID,
			); err != nil {
				return wrap("resolving candidate", err)
			}
			res.ResolvedCandidates++
			continue
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE duplicate_candidates
			 SET item_id = CASE WHEN item_id = ? THEN ? ELSE item_id END,
			     matched_item_id = CASE WHEN matched_item_id = ? THEN ? ELSE matched_item_id END
			 WHERE id = ?`,
			removeID, keepID, removeID, keepID, c.ID,
		); err != nil {
			return wrap("re-pointing candidate", err)
		}
		res.RepointedCandidates++
	}
	return nil
}
