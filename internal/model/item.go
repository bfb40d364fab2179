package model

import "time"

// Item is a purchasable, stockable good.
type Item struct {
	ID          int64      `json:"id"`
	AccountID   int64      `json:"account_id"`
	StoreID     *int64     `json:"store_id,omitempty"`
	CategoryID  *int64     `json:"category_id,omitempty"`
	SupplierID  *int64     `json:"supplier_id,omitempty"`
	Name        string     `json:"name"`
	Barcode     string     `json:"barcode,omitempty"`
	SupplierSKU string     `json:"supplier_sku,omitempty"`
	Unit        string     `json:"unit"`
	MinStock    float64    `json:"min_stock"`
	ImageMime   string     `json:"image_mime,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

// ItemInput carries the writable fields of an item.
type ItemInput struct {
	StoreID     *int64  `json:"store_id"`
	CategoryID  *int64  `json:"category_id"`
	SupplierID  *int64  `json:"supplier_id"`
	Name        string  `json:"name"`
	Barcode     string  `json:"barcode"`
	SupplierSKU string  `json:"supplier_sku"`
	Unit        string  `json:"unit"`
	MinStock    float64 `json:"min_stock"`
}

// DefaultUnit is used when an item is created without a unit.
const DefaultUnit = "pc"

// MatchQuery describes a candidate item to compare against existing items.
type MatchQuery struct {
	Name        string `json:"name"`
	Barcode     string `json:"barcode,omitempty"`
	SupplierSKU string `json:"supplier_sku,omitempty"`
	SupplierID  *int64 `json:"supplier_id,omitempty"`
	CategoryID  *int64 `json:"category_id,omitempty"`
}

// QueryFromItem builds a match query from an existing item.
func QueryFromItem(item *Item) MatchQuery {
	return MatchQuery{
		Name:        item.Name,
		Barcode:     item.Barcode,
		SupplierSKU: item.SupplierSKU,
		SupplierID:  item.SupplierID,
		CategoryID:  item.CategoryID,
	}
}

// SameID reports whether two optional references point at the same non-nil id.
func SameID(a, b *int64) bool {
	return a != nil && b != nil && *a == *b
}
