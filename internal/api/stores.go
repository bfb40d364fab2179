package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/erazemk/shramba/internal/store"
)

// StoresHandler handles store and category endpoints.
type StoresHandler struct {
	DB *sql.DB
}

type storeRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

type categoryRequest struct {
	Name string `json:"name"`
}

// List handles GET /api/stores.
func (h *StoresHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	stores, err := store.ListStores(r.Context(), h.DB, claims.AccountID)
	if err != nil {
		storeError(w, r, err, "failed to list stores")
		return
	}
	jsonResponse(w, http.StatusOK, orEmpty(stores))
}

// Create handles POST /api/stores.
func (h *StoresHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req storeRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims := GetClaims(r.Context())
	s, err := store.CreateStore(r.Context(), h.DB, claims.AccountID, req.Name, req.Address)
	if err != nil {
		storeError(w, r, err, "failed to create store")
		return
	}

	slog.Info("store created", "user", claims.Username, "store", s.Name)
	jsonResponse(w, http.StatusCreated, s)
}

// Get handles GET /api/stores/{id}, including the store's stock levels.
func (h *StoresHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "store")
	if !ok {
		return
	}

	claims := GetClaims(r.Context())
	s, err := store.GetStore(r.Context(), h.DB, claims.AccountID, id)
	if err != nil {
		storeError(w, r, err, "failed to get store")
		return
	}
	if s == nil || s.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "store not found")
		return
	}

	levels, err := store.CalculateStockByStore(r.Context(), h.DB, claims.AccountID, id)
	if err != nil {
		storeError(w, r, err, "failed to calculate stock")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"store": s,
		"stock": orEmpty(levels),
	})
}

// Update handles PUT /api/stores/{id}.
func (h *StoresHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "store")
	if !ok {
		return
	}

	var req storeRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims := GetClaims(r.Context())
	if err := store.UpdateStore(r.Context(), h.DB, claims.AccountID, id, req.Name, req.Address); err != nil {
		storeError(w, r, err, "failed to update store")
		return
	}

	s, err := store.GetStore(r.Context(), h.DB, claims.AccountID, id)
	if err != nil {
		storeError(w, r, err, "failed to get store")
		return
	}
	slog.Info("store updated", "user", claims.Username, "store", s.Name)
	jsonResponse(w, http.StatusOK, s)
}

// Delete handles DELETE /api/stores/{id}.
func (h *StoresHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "store")
	if !ok {
		return
	}

	claims := GetClaims(r.Context())
	if err := store.DeleteStore(r.Context(), h.DB, claims.AccountID, id); err != nil {
		storeError(w, r, err, "failed to delete store")
		return
	}

	slog.Info("store deleted", "user", claims.Username, "store_id", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "store deleted"})
}

// ListCategories handles GET /api/categories.
func (h *StoresHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	categories, err := store.ListCategories(r.Context(), h.DB, claims.AccountID)
	if err != nil {
		storeError(w, r, err, "failed to list categories")
		return
	}
	jsonResponse(w, http.StatusOK, orEmpty(categories))
}

// CreateCategory handles POST /api/categories.
func (h *StoresHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims := GetClaims(r.Context())
	c, err := store.CreateCategory(r.Context(), h.DB, claims.AccountID, req.Name)
	if err != nil {
		storeError(w, r, err, "failed to create category")
		return
	}

	slog.Info("category created", "user", claims.Username, "category", c.Name)
	jsonResponse(w, http.StatusCreated, c)
}

// DeleteCategory handles DELETE /api/categories/{id}.
func (h *StoresHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "category")
	if !ok {
		return
	}

	claims := GetClaims(r.Context())
	if err := store.DeleteCategory(r.Context(), h.DB, claims.AccountID, id); err != nil {
		storeError(w, r, err, "failed to delete category")
		return
	}

	slog.Info("category deleted", "user", claims.Username, "category_id", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "category deleted"})
}
