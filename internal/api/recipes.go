package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/erazemk/shramba/internal/store"
)

// RecipesHandler handles recipe and ingredient endpoints.
type RecipesHandler struct {
	DB *sql.DB
}

type recipeRequest struct {
	Name          string  `json:"name"`
	YieldQuantity float64 `json:"yield_quantity"`
	YieldUnit     string  `json:"yield_unit"`
}

type ingredientRequest struct {
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

// List handles GET /api/recipes.
func (h *RecipesHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	recipes, err := store.ListRecipes(r.Context(), h.DB, claims.AccountID)
	if err != nil {
		storeError(w, r, err, "failed to list recipes")
		return
	}
	jsonResponse(w, http.StatusOK, orEmpty(recipes))
}

// Create handles POST /api/recipes.
func (h *RecipesHandler) Create(w http.ResponseWriter, r *http.Request) {
	req := recipeRequest{YieldQuantity: 1}
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims := GetClaims(r.Context())
	recipe, err := store.CreateRecipe(r.Context(), h.DB, claims.AccountID, req.Name, req.YieldQuantity, req.YieldUnit)
	if err != nil {
		storeError(w, r, err, "failed to create recipe")
		return
	}

	slog.Info("recipe created", "user", claims.Username, "recipe", recipe.Name)
	jsonResponse(w, http.StatusCreated, recipe)
}

// Get handles GET /api/recipes/{id}.
func (h *RecipesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "recipe")
	if !ok {
		return
	}

	claims := GetClaims(r.Context())
	recipe, err := store.GetRecipe(r.Context(), h.DB, claims.AccountID, id)
	if err != nil {
		storeError(w, r, err, "failed to get recipe")
		return
	}
	if recipe == nil {
		jsonError(w, http.StatusNotFound, "recipe not found")
		return
	}
	recipe.Ingredients = orEmpty(recipe.Ingredients)
	jsonResponse(w, http.StatusOK, recipe)
}

// Update handles PUT /api/recipes/{id}.
func (h *RecipesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "recipe")
	if !ok {
		return
	}

	req := recipeRequest{YieldQuantity: 1}
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims := GetClaims(r.Context())
	if err := store.UpdateRecipe(r.Context(), h.DB, claims.AccountID, id, req.Name, req.YieldQuantity, req.YieldUnit); err != nil {
		storeError(w, r, err, "failed to update recipe")
		return
	}

	slog.Info("recipe updated", "user", claims.Username, "recipe_id", id)
	h.Get(w, r)
}

// Delete handles DELETE /api/recipes/{id}.
func (h *RecipesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "recipe")
	if !ok {
		return
	}

	claims := GetClaims(r.Context())
	if err := store.DeleteRecipe(r.Context(), h.DB, claims.AccountID, id); err != nil {
		storeError(w, r, err, "failed to delete recipe")
		return
	}

	slog.Info("recipe deleted", "user", claims.Username, "recipe_id", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "recipe deleted"})
}

// SetIngredient handles PUT /api/recipes/{id}/ingredients/{itemID}.
func (h *RecipesHandler) SetIngredient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "recipe")
	if !ok {
		return
	}
	itemID, ok := pathID(w, r, "itemID", "item")
	if !ok {
		return
	}

	var req ingredientRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims := GetClaims(r.Context())
	if err := store.SetIngredient(r.Context(), h.DB, claims.AccountID, id, itemID, req.Quantity, req.Unit); err != nil {
		storeError(w, r, err, "failed to set ingredient")
		return
	}

	slog.Info("recipe ingredient set", "user", claims.Username, "recipe_id", id, "item_id", itemID, "quantity", req.Quantity)
	h.Get(w, r)
}

// RemoveIngredient handles DELETE /api/recipes/{id}/ingredients/{itemID}.
func (h *RecipesHandler) RemoveIngredient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "recipe")
	if !ok {
		return
	}
	itemID, ok := pathID(w, r, "itemID", "item")
	if !ok {
		return
	}

	claims := GetClaims(r.Context())
	if err := store.RemoveIngredient(r.Context(), h.DB, claims.AccountID, id, itemID); err != nil {
		storeError(w, r, err, "failed to remove ingredient")
		return
	}

	slog.Info("recipe ingredient removed", "user", claims.Username, "recipe_id", id, "item_id", itemID)
	h.Get(w, r)
}
