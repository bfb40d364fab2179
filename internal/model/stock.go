package model

import "time"

// Movement types.
const (
	MovementPurchase    = "purchase"
	MovementUsage       = "usage"
	MovementWaste       = "waste"
	MovementAdjustment  = "adjustment"
	MovementTransferIn  = "transfer_in"
	MovementTransferOut = "transfer_out"
)

// MovementSign returns the sign applied to a positive quantity of the given
// movement type. Adjustments carry their own sign and return 0, as do
// unknown types.
func MovementSign(movementType string) float64 {
	switch movementType {
	case MovementPurchase, MovementTransferIn:
		return 1
	case MovementUsage, MovementWaste, MovementTransferOut:
		return -1
	default:
		return 0
	}
}

// ValidMovementType reports whether t is a known movement type.
func ValidMovementType(t string) bool {
	return t == MovementAdjustment || MovementSign(t) != 0
}

// StockMovement is one ledger line. Quantity is signed.
type StockMovement struct {
	ID         int64     `json:"id"`
	AccountID  int64     `json:"account_id"`
	StoreID    int64     `json:"store_id"`
	ItemID     int64     `json:"item_id"`
	Type       string    `json:"type"`
	Quantity   float64   `json:"quantity"`
	Notes      string    `json:"notes,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
	CreatedBy  *int64    `json:"created_by,omitempty"`

	// Joined fields (not always populated).
	ItemName  string `json:"item_name,omitempty"`
	StoreName string `json:"store_name,omitempty"`
}

// StockEntry is a physical stock count at a point in time.
type StockEntry struct {
	ID        int64     `json:"id"`
	AccountID int64     `json:"account_id"`
	StoreID   int64     `json:"store_id"`
	ItemID    int64     `json:"item_id"`
	Quantity  float64   `json:"quantity"`
	CountedAt time.Time `json:"counted_at"`
	CreatedBy *int64    `json:"created_by,omitempty"`
}

// StockLevel is the derived current quantity of an item in a store.
type StockLevel struct {
	StoreID   int64      `json:"store_id"`
	ItemID    int64      `json:"item_id"`
	Quantity  float64    `json:"quantity"`
	CountedAt *time.Time `json:"counted_at,omitempty"`
	Movements int        `json:"movements"`

	// Joined fields (not always populated).
	ItemName  string  `json:"item_name,omitempty"`
	StoreName string  `json:"store_name,omitempty"`
	Unit      string  `json:"unit,omitempty"`
	MinStock  float64 `json:"min_stock,omitempty"`
}

// Alert severities.
const (
	AlertOutOfStock = "out_of_stock"
	AlertLowStock   = "low_stock"
)

// StockAlert flags an item whose level is at or under its minimum.
type StockAlert struct {
	StoreID   int64   `json:"store_id"`
	StoreName string  `json:"store_name"`
	ItemID    int64   `json:"item_id"`
	ItemName  string  `json:"item_name"`
	Quantity  float64 `json:"quantity"`
	MinStock  float64 `json:"min_stock"`
	Unit      string  `json:"unit"`
	Severity  string  `json:"severity"`
}
