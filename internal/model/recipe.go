package model

import "time"

// Recipe is a dish or preparation built from items.
type Recipe struct {
	ID            int64              `json:"id"`
	AccountID     int64              `json:"account_id"`
	Name          string             `json:"name"`
	YieldQuantity float64            `json:"yield_quantity"`
	YieldUnit     string             `json:"yield_unit"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
	DeletedAt     *time.Time         `json:"deleted_at,omitempty"`
	Ingredients   []RecipeIngredient `json:"ingredients"`
}

// RecipeIngredient is one item line of a recipe.
type RecipeIngredient struct {
	ID       int64   `json:"id"`
	RecipeID int64   `json:"recipe_id"`
	ItemID   int64   `json:"item_id"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`

	// Joined fields (not always populated).
	ItemName string `json:"item_name,omitempty"`
}
