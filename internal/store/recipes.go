package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/erazemk/shramba/internal/model"
)

// CreateRecipe creates a recipe without ingredients.
func CreateRecipe(ctx context.Context, db *sql.DB, accountID int64, name string, yieldQuantity float64, yieldUnit string) (*model.Recipe, error) {
	name, yieldUnit, err := validateRecipe(name, yieldQuantity, yieldUnit)
	if err != nil {
		return nil, err
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO recipes (account_id, name, yield_quantity, yield_unit) VALUES (?, ?, ?, ?)`,
		accountID, name, yieldQuantity, yieldUnit,
	)
	if err != nil {
		return nil, fmt.Errorf("creating recipe: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting recipe id: %w", err)
	}

	return GetRecipe(ctx, db, accountID, id)
}

func validateRecipe(name string, yieldQuantity float64, yieldUnit string) (string, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", invalid("recipe name is required")
	}
	if yieldQuantity <= 0 {
		return "", "", invalid("yield quantity must be positive")
	}
	yieldUnit = strings.TrimSpace(yieldUnit)
	if yieldUnit == "" {
		yieldUnit = "portion"
	}
	return name, yieldUnit, nil
}

// GetRecipe returns a non-deleted recipe with its ingredients.
func GetRecipe(ctx context.Context, db *sql.DB, accountID, id int64) (*model.Recipe, error) {
	r := &model.Recipe{}
	err := db.QueryRowContext(ctx,
		`SELECT id, account_id, name, yield_quantity, yield_unit, created_at, updated_at, deleted_at
		 FROM recipes WHERE id = ? AND account_id = ? AND deleted_at IS NULL`, id, accountID,
	).Scan(&r.ID, &r.AccountID, &r.Name, &r.YieldQuantity, &r.YieldUnit, &r.CreatedAt, &r.UpdatedAt, &r.DeletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting recipe: %w", err)
	}

	r.Ingredients, err = listIngredients(ctx, db, r.ID)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func listIngredients(ctx context.Context, q Querier, recipeID int64) ([]model.RecipeIngredient, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT ri.id, ri.recipe_id, ri.item_id, ri.quantity, ri.unit, i.name
		 FROM recipe_ingredients ri
		 JOIN items i ON i.id = ri.item_id
		 WHERE ri.recipe_id = ? ORDER BY i.name`, recipeID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing ingredients: %w", err)
	}
	defer rows.Close()

	var lines []model.RecipeIngredient
	for rows.Next() {
		var l model.RecipeIngredient
		if err := rows.Scan(&l.ID, &l.RecipeID, &l.ItemID, &l.Quantity, &l.Unit, &l.ItemName); err != nil {
			return nil, fmt.Errorf("scanning ingredient: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// ListRecipes returns the non-deleted recipes of an account, without ingredients.
func ListRecipes(ctx context.Context, db *sql.DB, accountID int64) ([]model.Recipe, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, account_id, name, yield_quantity, yield_unit, created_at, updated_at, deleted_at
		 FROM recipes WHERE account_id = ? AND deleted_at IS NULL ORDER BY name`, accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing recipes: %w", err)
	}
	defer rows.Close()

	var recipes []model.Recipe
	for rows.Next() {
		var r model.Recipe
		if err := rows.Scan(&r.ID, &r.AccountID, &r.Name, &r.YieldQuantity, &r.YieldUnit, &r.CreatedAt, &r.UpdatedAt, &r.DeletedAt); err != nil {
			return nil, fmt.Errorf("scanning recipe: %w", err)
		}
		recipes = append(recipes, r)
	}
	return recipes, rows.Err()
}

// UpdateRecipe updates a recipe's name and yield.
func UpdateRecipe(ctx context.Context, db *sql.DB, accountID, id int64, name string, yieldQuantity float64, yieldUnit string) error {
	name, yieldUnit, err := validateRecipe(name, yieldQuantity, yieldUnit)
	if err != nil {
		return err
	}
	result, err := db.ExecContext(ctx,
		`UPDATE recipes SET name = ?, yield_quantity = ?, yield_unit = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND account_id = ? AND deleted_at IS NULL`,
		name, yieldQuantity, yieldUnit, id, accountID,
	)
	if err != nil {
		return fmt.Errorf("updating recipe: %w", err)
	}
	return requireRow(result, "recipe", id)
}

// DeleteRecipe soft-deletes a recipe.
func DeleteRecipe(ctx context.Context, db *sql.DB, accountID, id int64) error {
	result, err := db.ExecContext(ctx,
		`UPDATE recipes SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND account_id = ? AND deleted_at IS NULL`,
		id, accountID,
	)
	if err != nil {
		return fmt.Errorf("deleting recipe: %w", err)
	}
	return requireRow(result, "recipe", id)
}

// SetIngredient adds an item to a recipe or replaces its quantity and unit.
func SetIngredient(ctx context.Context, db *sql.DB, accountID, recipeID, itemID int64, quantity float64, unit string) error {
	if quantity <= 0 {
		return invalid("ingredient quantity must be positive")
	}
	if err := ensureActive(ctx, db, "recipes", accountID, recipeID); err != nil {
		return err
	}
	item, err := getActiveItem(ctx, db, accountID, itemID)
	if err != nil {
		return err
	}
	unit = strings.TrimSpace(unit)
	if unit == "" {
		unit = item.Unit
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO recipe_ingredients (recipe_id, item_id, quantity, unit) VALUES (?, ?, ?, ?)
		 ON CONFLICT (recipe_id, item_id) DO UPDATE SET quantity = excluded.quantity, unit = excluded.unit`,
		recipeID, itemID, quantity, unit,
	)
	if err != nil {
		return fmt.Errorf("setting ingredient: %w", err)
	}
	return nil
}

// RemoveIngredient removes an item from a recipe.
func RemoveIngredient(ctx context.Context, db *sql.DB, accountID, recipeID, itemID int64) error {
	if err := ensureActive(ctx, db, "recipes", accountID, recipeID); err != nil {
		return err
	}
	result, err := db.ExecContext(ctx,
		`DELETE FROM recipe_ingredients WHERE recipe_id = ? AND item_id = ?`, recipeID, itemID,
	)
	if err != nil {
		return fmt.Errorf("removing ingredient: %w", err)
	}
	return requireRow(result, "ingredient", itemID)
}
