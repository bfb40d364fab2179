package model

import "time"

// Candidate statuses.
const (
	CandidatePending   = "pending"
	CandidateDismissed = "dismissed"
	CandidateMerged    = "merged"
)

// Match signals.
const (
	SignalBarcode          = "barcode"
	SignalSupplierSKU      = "supplier_sku"
	SignalNameExact        = "name_exact"
	SignalNameSimilar      = "name_similar"
	SignalNamePartial      = "name_partial"
	SignalCategorySupplier = "category_supplier"
)

// Match is one potential duplicate found for a query.
type Match struct {
	Item       Item     `json:"item"`
	Confidence float64  `json:"confidence"`
	Signals    []string `json:"signals"`
}

// DuplicateCandidate is a persisted suggestion that two items are the same good.
type DuplicateCandidate struct {
	ID            int64      `json:"id"`
	AccountID     int64      `json:"account_id"`
	ItemID        int64      `json:"item_id"`
	MatchedItemID int64      `json:"matched_item_id"`
	Confidence    float64    `json:"confidence"`
	Signals       []string   `json:"signals"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	ResolvedAt    *time.Time `json:"resolved_at,omitempty"`
	ResolvedBy    *int64     `json:"resolved_by,omitempty"`

	// Joined fields (not always populated).
	ItemName        string `json:"item_name,omitempty"`
	MatchedItemName string `json:"matched_item_name,omitempty"`
}

// PairKey returns the candidate's item ids as an ordered (low, high) pair.
func (c DuplicateCandidate) PairKey() [2]int64 {
	if c.ItemID < c.MatchedItemID {
		return [2]int64{c.ItemID, c.MatchedItemID}
	}
	return [2]int64{c.MatchedItemID, c.ItemID}
}

// Involves reports whether the candidate names the given item on either side.
func (c DuplicateCandidate) Involves(itemID int64) bool {
	return c.ItemID == itemID || c.MatchedItemID == itemID
}

// Other returns the item paired with itemID.
func (c DuplicateCandidate) Other(itemID int64) int64 {
	if c.ItemID == itemID {
		return c.MatchedItemID
	}
	return c.ItemID
}

// RecipeRef identifies a recipe touched by a merge.
type RecipeRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	// Collides is set when the kept item is already an ingredient.
	Collides bool `json:"collides"`
}

// SupplierRef identifies a supplier link touched by a merge.
type SupplierRef struct {
	SupplierID   int64  `json:"supplier_id"`
	SupplierName string `json:"supplier_name"`
	SKU          string `json:"sku,omitempty"`
	Collides     bool   `json:"collides"`
}

// MergeImpact lists every record that would change if RemoveItem were merged into KeepItem.
type MergeImpact struct {
	RemoveItem        Item          `json:"remove_item"`
	KeepItem          Item          `json:"keep_item"`
	Recipes           []RecipeRef   `json:"recipes"`
	StockMovements    int           `json:"stock_movements"`
	StockEntries      int           `json:"stock_entries"`
	SupplierLinks     []SupplierRef `json:"supplier_links"`
	PendingCandidates int           `json:"pending_candidates"`
	Notifications     int           `json:"notifications"`
}

// MergeResult summarises a completed merge.
type MergeResult struct {
	KeptItemID               int64 `json:"kept_item_id"`
	RemovedItemID            int64 `json:"removed_item_id"`
	MigratedRecipes          int   `json:"migrated_recipes"`
	MigratedIngredientLines  int   `json:"migrated_ingredient_lines"`
	DiscardedIngredientLines int   `json:"discarded_ingredient_lines"`
	MigratedMovements        int   `json:"migrated_movements"`
	MigratedStockEntries     int   `json:"migrated_stock_entries"`
	MigratedSupplierLinks    int   `json:"migrated_supplier_links"`
	DiscardedSupplierLinks   int   `json:"discarded_supplier_links"`
	MigratedNotifications    int   `json:"migrated_notifications"`
	ResolvedCandidates       int   `json:"resolved_candidates"`
	RepointedCandidates      int   `json:"repointed_candidates"`
}
