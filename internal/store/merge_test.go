package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/erazemk/shramba/internal/db"
	"github.com/erazemk/shramba/internal/model"
)

func TestMergeEndToEnd(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	acct := mustAccount(t, database, "bistro")
	s := mustStore(t, database, acct, "Kitchen")

	keep := mustItem(t, database, acct, model.ItemInput{Name: "Tomato", Unit: "kg"})
	remove := mustItem(t, database, acct, model.ItemInput{Name: "Tomatoe", Unit: "kg"})
	onion := mustItem(t, database, acct, model.ItemInput{Name: "Onion"})
	garlic := mustItem(t, database, acct, model.ItemInput{Name: "Garlic"})

	solo, _ := CreateRecipe(ctx, database, acct, "Salsa", 1, "")
	both, _ := CreateRecipe(ctx, database, acct, "Ragu", 1, "")
	SetIngredient(ctx, database, acct, solo.ID, remove.ID, 0.5, "kg")
	SetIngredient(ctx, database, acct, both.ID, remove.ID, 0.3, "kg")
	SetIngredient(ctx, database, acct, both.ID, keep.ID, 0.7, "kg")

	RecordMovement(ctx, database, acct, model.StockMovement{StoreID: s.ID, ItemID: keep.ID, Type: model.MovementPurchase, Quantity: 4})
	RecordMovement(ctx, database, acct, model.StockMovement{StoreID: s.ID, ItemID: remove.ID, Type: model.MovementPurchase, Quantity: 5})
	RecordMovement(ctx, database, acct, model.StockMovement{StoreID: s.ID, ItemID: remove.ID, Type: model.MovementUsage, Quantity: 2})
	if _, err := RecordStockEntry(ctx, database, acct, model.StockEntry{StoreID: s.ID, ItemID: remove.ID, Quantity: 3}); err != nil {
		t.Fatalf("RecordStockEntry: %v", err)
	}

	freshco, _ := CreateSupplier(ctx, database, acct, "Freshco", "")
	farmhand, _ := CreateSupplier(ctx, database, acct, "Farmhand", "")
	LinkSupplierItem(ctx, database, acct, freshco.ID, remove.ID, "TOM-OLD", nil)
	LinkSupplierItem(ctx, database, acct, farmhand.ID, remove.ID, "F-1", nil)
	LinkSupplierItem(ctx, database, acct, farmhand.ID, keep.ID, "F-2", nil)

	pair, _, _ := RecordCandidate(ctx, database, acct, remove.ID, keep.ID, 0.85, []string{model.SignalNameSimilar})
	closes, _, _ := RecordCandidate(ctx, database, acct, remove.ID, onion.ID, 0.8, nil)
	RecordCandidate(ctx, database, acct, keep.ID, onion.ID, 0.8, nil)
	moves, _, _ := RecordCandidate(ctx, database, acct, garlic.ID, remove.ID, 0.8, nil)
	CreateNotification(ctx, database, acct, &remove.ID, model.NotifyLowStock, "Tomatoe is low")

	impact, err := GetAffectedByMerge(ctx, database, acct, remove.ID, keep.ID)
	if err != nil {
		t.Fatalf("GetAffectedByMerge: %v", err)
	}
	if len(impact.Recipes) != 2 {
		t.Fatalf("expected 2 affected recipes, got %+v", impact.Recipes)
	}
	for _, r := range impact.Recipes {
		if (r.ID == both.ID) != r.Collides {
			t.Errorf("recipe %q collides=%v", r.Name, r.Collides)
		}
	}
	if impact.StockMovements != 2 || impact.StockEntries != 1 {
		t.Errorf("expected 2 movements and 1 entry, got %d and %d", impact.StockMovements, impact.StockEntries)
	}
	if len(impact.SupplierLinks) != 2 {
		t.Fatalf("expected 2 supplier links, got %+v", impact.SupplierLinks)
	}
	for _, l := range impact.SupplierLinks {
		if (l.SupplierID == farmhand.ID) != l.Collides {
			t.Errorf("supplier %q collides=%v", l.SupplierName, l.Collides)
		}
	}
	// remove~keep, remove~onion, garlic~remove
	if impact.PendingCandidates != 3 {
		t.Errorf("expected 3 pending candidates, got %d", impact.PendingCandidates)
	}
	// Two candidate notifications name the removed item, plus the low stock one.
	if impact.Notifications != 3 {
		t.Errorf("expected 3 notifications, got %d", impact.Notifications)
	}

	res, err := MergeItems(ctx, database, acct, remove.ID, keep.ID, 0)
	if err != nil {
		t.Fatalf("MergeItems: %v", err)
	}
	want := model.MergeResult{
		KeptItemID:               keep.ID,
		RemovedItemID:            remove.ID,
		MigratedRecipes:          2,
		MigratedIngredientLines:  1,
		DiscardedIngredientLines: 1,
		MigratedMovements:        2,
		MigratedStockEntries:     1,
		MigratedSupplierLinks:    1,
		DiscardedSupplierLinks:   1,
		MigratedNotifications:    3,
		ResolvedCandidates:       2,
		RepointedCandidates:      1,
	}
	if *res != want {
		t.Errorf("merge result\n got: %+v\nwant: %+v", *res, want)
	}

	if got, _ := GetItem(ctx, database, acct, remove.ID); got != nil {
		t.Error("expected removed item to be hard-deleted")
	}

	for _, table := range []string{"recipe_ingredients", "stock_movements", "stock_entries", "supplier_items", "notifications"} {
		var n int
		if err := database.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table+` WHERE item_id = ?`, remove.ID).Scan(&n); err != nil {
			t.Fatalf("counting %s: %v", table, err)
		}
		if n != 0 {
			t.Errorf("%s still references the removed item (%d rows)", table, n)
		}
	}

	// Ragu keeps the kept item's own line.
	ragu, _ := GetRecipe(ctx, database, acct, both.ID)
	if len(ragu.Ingredients) != 1 || ragu.Ingredients[0].Quantity != 0.7 {
		t.Errorf("expected Ragu to keep the 0.7 kg line, got %+v", ragu.Ingredients)
	}

	// Latest count of 3 is the baseline for the merged item; the kept item's
	// earlier purchase happened before that count.
	levels, _ := CalculateStockByStore(ctx, database, acct, s.ID)
	if len(levels) != 1 || levels[0].ItemID != keep.ID || levels[0].Quantity != 3 {
		t.Errorf("expected a single level of 3 for Tomato, got %+v", levels)
	}

	gotPair, _ := GetCandidate(ctx, database, acct, pair.ID)
	if gotPair.Status != model.CandidateMerged || gotPair.ResolvedAt == nil {
		t.Errorf("expected merged pair, got %+v", gotPair)
	}
	gotClosed, _ := GetCandidate(ctx, database, acct, closes.ID)
	if gotClosed.Status != model.CandidateMerged {
		t.Errorf("expected remove~onion closed as merged, got %q", gotClosed.Status)
	}
	gotMoved, _ := GetCandidate(ctx, database, acct, moves.ID)
	if gotMoved.Status != model.CandidatePending || !gotMoved.Involves(keep.ID) || !gotMoved.Involves(garlic.ID) {
		t.Errorf("expected garlic candidate re-pointed to Tomato, got %+v", gotMoved)
	}

	// Candidates are never deleted.
	all, _ := ListCandidates(ctx, database, acct, "", 0)
	if len(all) != 4 {
		t.Errorf("expected 4 candidates kept as audit trail, got %d", len(all))
	}

	if _, err := MergeItems(ctx, database, acct, remove.ID, keep.ID, 0); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on re-merge, got %v", err)
	}
	if _, err := GetAffectedByMerge(ctx, database, acct, remove.ID, keep.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound planning a finished merge, got %v", err)
	}
}

func TestMergeValidation(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	acct := mustAccount(t, database, "bistro")
	other := mustAccount(t, database, "other")
	a := mustItem(t, database, acct, model.ItemInput{Name: "Leek"})
	b := mustItem(t, database, acct, model.ItemInput{Name: "Leeks"})
	foreign := mustItem(t, database, other, model.ItemInput{Name: "Leek"})

	if _, err := GetAffectedByMerge(ctx, database, acct, a.ID, a.ID); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("plan self merge: expected ErrInvalidArgument, got %v", err)
	}
	if _, err := MergeItems(ctx, database, acct, a.ID, a.ID, 0); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("self merge: expected ErrInvalidArgument, got %v", err)
	}
	if _, err := GetAffectedByMerge(ctx, database, acct, foreign.ID, a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("plan foreign merge: expected ErrNotFound, got %v", err)
	}
	if _, err := MergeItems(ctx, database, acct, a.ID, foreign.ID, 0); !errors.Is(err, ErrNotFound) {
		t.Errorf("merge into foreign item: expected ErrNotFound, got %v", err)
	}
	if _, err := MergeItems(ctx, database, other, a.ID, b.ID, 0); !errors.Is(err, ErrNotFound) {
		t.Errorf("merge from another account: expected ErrNotFound, got %v", err)
	}

	// Failed merges changed nothing.
	if got, _ := GetItem(ctx, database, acct, a.ID); got == nil || got.DeletedAt != nil {
		t.Error("expected item to survive failed merges")
	}

	DeleteItem(ctx, database, acct, b.ID)
	if _, err := MergeItems(ctx, database, acct, a.ID, b.ID, 0); !errors.Is(err, ErrNotFound) {
		t.Errorf("merge into soft-deleted item: expected ErrNotFound, got %v", err)
	}
}

// danglingRefs counts rows that still point at an item row that no longer exists.
func danglingRefs(t *testing.T, database *sql.DB) int {
	t.Helper()
	var total int
	for _, table := range []string{"recipe_ingredients", "stock_movements", "stock_entries", "supplier_items"} {
		var n int
		err := database.QueryRow(
			`SELECT COUNT(*) FROM ` + table + ` WHERE item_id NOT IN (SELECT id FROM items)`,
		).Scan(&n)
		if err != nil {
			t.Fatalf("counting dangling %s: %v", table, err)
		}
		total += n
	}
	return total
}

func TestConcurrentOverlappingMerges(t *testing.T) {
	database := db.NewTestFileDB(t)
	ctx := context.Background()
	acct := mustAccount(t, database, "bistro")
	s := mustStore(t, database, acct, "Kitchen")

	for round := range 5 {
		var items [3]*model.Item
		for i := range items {
			items[i] = mustItem(t, database, acct, model.ItemInput{Name: fmt.Sprintf("Shallot %d-%d", round, i), Unit: "kg"})
			RecordMovement(ctx, database, acct, model.StockMovement{StoreID: s.ID, ItemID: items[i].ID, Type: model.MovementPurchase, Quantity: float64(i + 1)})
			RecordStockEntry(ctx, database, acct, model.StockEntry{StoreID: s.ID, ItemID: items[i].ID, Quantity: float64(i + 1)})
		}
		recipe, _ := CreateRecipe(ctx, database, acct, fmt.Sprintf("Dressing %d", round), 1, "")
		SetIngredient(ctx, database, acct, recipe.ID, items[0].ID, 0.1, "kg")
		SetIngredient(ctx, database, acct, recipe.ID, items[1].ID, 0.2, "kg")

		a, b, c := items[0].ID, items[1].ID, items[2].ID
		pairs := [][2]int64{{a, b}, {b, c}}

		var wg sync.WaitGroup
		errs := make([]error, len(pairs))
		for i, p := range pairs {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, errs[i] = MergeItems(ctx, database, acct, p[0], p[1], 0)
			}()
		}
		wg.Wait()

		succeeded := 0
		for i, err := range errs {
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ErrNotFound), errors.Is(err, ErrConflict):
			default:
				t.Errorf("round %d: merge %v: unexpected error %v", round, pairs[i], err)
			}
		}
		if succeeded == 0 {
			t.Errorf("round %d: expected at least one merge to succeed, got %v", round, errs)
		}
		if n := danglingRefs(t, database); n != 0 {
			t.Fatalf("round %d: %d rows reference removed items", round, n)
		}
	}

	// Merges move stock between items; they never create or lose any.
	var total float64
	if err := database.QueryRow(`SELECT COALESCE(SUM(quantity), 0) FROM stock_movements`).Scan(&total); err != nil {
		t.Fatalf("summing movements: %v", err)
	}
	if total != 5*(1+2+3) {
		t.Errorf("expected movement total %d, got %v", 5*(1+2+3), total)
	}
}

func TestFailedMergeLeavesNoPartialState(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	acct := mustAccount(t, database, "bistro")
	s := mustStore(t, database, acct, "Kitchen")
	keep := mustItem(t, database, acct, model.ItemInput{Name: "Cream", Unit: "l"})
	remove := mustItem(t, database, acct, model.ItemInput{Name: "Creme", Unit: "l"})

	recipe, _ := CreateRecipe(ctx, database, acct, "Panna cotta", 4, "")
	SetIngredient(ctx, database, acct, recipe.ID, remove.ID, 0.5, "l")
	RecordMovement(ctx, database, acct, model.StockMovement{StoreID: s.ID, ItemID: remove.ID, Type: model.MovementPurchase, Quantity: 3})
	RecordStockEntry(ctx, database, acct, model.StockEntry{StoreID: s.ID, ItemID: remove.ID, Quantity: 2})
	pair, _, _ := RecordCandidate(ctx, database, acct, remove.ID, keep.ID, 0.9, nil)

	// Fail the merge after ingredient lines and movements have been repointed.
	if _, err := database.Exec(`CREATE TRIGGER refuse_entry_moves BEFORE UPDATE ON stock_entries
		BEGIN SELECT RAISE(ABORT, 'stock entries are read-only'); END`); err != nil {
		t.Fatalf("creating trigger: %v", err)
	}

	if _, err := MergeItems(ctx, database, acct, remove.ID, keep.ID, 0); err == nil {
		t.Fatal("expected merge to fail")
	}

	tables := map[string]int{"recipe_ingredients": 1, "stock_movements": 1, "stock_entries": 1}
	for table, want := range tables {
		var n int
		if err := database.QueryRow(`SELECT COUNT(*) FROM `+table+` WHERE item_id = ?`, remove.ID).Scan(&n); err != nil {
			t.Fatalf("counting %s: %v", table, err)
		}
		if n != want {
			t.Errorf("expected %d %s rows still on the removed item, got %d", want, table, n)
		}
	}

	item, err := GetItem(ctx, database, acct, remove.ID)
	if err != nil || item == nil || item.DeletedAt != nil {
		t.Errorf("expected removed item to survive a failed merge, got %+v (%v)", item, err)
	}
	cand, _ := GetCandidate(ctx, database, acct, pair.ID)
	if cand == nil || cand.Status != model.CandidatePending {
		t.Errorf("expected candidate still pending, got %+v", cand)
	}

	// Once the cause is gone the same merge goes through.
	if _, err := database.Exec(`DROP TRIGGER refuse_entry_moves`); err != nil {
		t.Fatalf("dropping trigger: %v", err)
	}
	if _, err := MergeItems(ctx, database, acct, remove.ID, keep.ID, 0); err != nil {
		t.Fatalf("MergeItems after failure: %v", err)
	}
}
