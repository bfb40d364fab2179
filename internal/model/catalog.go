package model

import "time"

// Store is a physical location (kitchen, bar, storeroom) that holds stock.
type Store struct {
	ID        int64      `json:"id"`
	AccountID int64      `json:"account_id"`
	Name      string     `json:"name"`
	Address   string     `json:"address,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// Category groups items (produce, dairy, dry goods, ...).
type Category struct {
	ID        int64  `json:"id"`
	AccountID int64  `json:"account_id"`
	Name      string `json:"name"`
}

// Supplier is a vendor that items are purchased from.
type Supplier struct {
	ID        int64      `json:"id"`
	AccountID int64      `json:"account_id"`
	Name      string     `json:"name"`
	Contact   string     `json:"contact,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// SupplierItem links an item to a supplier's catalog entry.
type SupplierItem struct {
	ID         int64    `json:"id"`
	SupplierID int64    `json:"supplier_id"`
	ItemID     int64    `json:"item_id"`
	SKU        string   `json:"sku,omitempty"`
	UnitPrice  *float64 `json:"unit_price,omitempty"`

	// Joined fields (not always populated).
	SupplierName string `json:"supplier_name,omitempty"`
	ItemName     string `json:"item_name,omitempty"`
}
