package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/erazemk/shramba/internal/store"
)

// SuppliersHandler handles supplier and supplier-item endpoints.
type SuppliersHandler struct {
	DB *sql.DB
}

type supplierRequest struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
}

type linkItemRequest struct {
	ItemID    int64    `json:"item_id"`
	SKU       string   `json:"sku"`
	UnitPrice *float64 `json:"unit_price"`
}

// List handles GET /api/suppliers.
func (h *SuppliersHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	suppliers, err := store.ListSuppliers(r.Context(), h.DB, claims.AccountID)
	if err != nil {
		storeError(w, r, err, "failed to list suppliers")
		return
	}
	jsonResponse(w, http.StatusOK, orEmpty(suppliers))
}

// Create handles POST /api/suppliers.
func (h *SuppliersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req supplierRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims := GetClaims(r.Context())
	s, err := store.CreateSupplier(r.Context(), h.DB, claims.AccountID, req.Name, req.Contact)
	if err != nil {
		storeError(w, r, err, "failed to create supplier")
		return
	}

	slog.Info("supplier created", "user", claims.Username, "supplier", s.Name)
	jsonResponse(w, http.StatusCreated, s)
}

// Get handles GET /api/suppliers/{id}, including the items it sells.
func (h *SuppliersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "supplier")
	if !ok {
		return
	}

	claims := GetClaims(r.Context())
	s, err := store.GetSupplier(r.Context(), h.DB, claims.AccountID, id)
	if err != nil {
		storeError(w, r, err, "failed to get supplier")
		return
	}
	if s == nil || s.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "supplier not found")
		return
	}

	items, err := store.ListSupplierItems(r.Context(), h.DB, claims.AccountID, id)
	if err != nil {
		storeError(w, r, err, "failed to list supplier items")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"supplier": s,
		"items":    orEmpty(items),
	})
}

// Update handles PUT /api/suppliers/{id}.
func (h *SuppliersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "supplier")
	if !ok {
		return
	}

	var req supplierRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims := GetClaims(r.Context())
	if err := store.UpdateSupplier(r.Context(), h.DB, claims.AccountID, id, req.Name, req.Contact); err != nil {
		storeError(w, r, err, "failed to update supplier")
		return
	}

	s, err := store.GetSupplier(r.Context(), h.DB, claims.AccountID, id)
	if err != nil {
		storeError(w, r, err, "failed to get supplier")
		return
	}
	slog.Info("supplier updated", "user", claims.Username, "supplier", s.Name)
	jsonResponse(w, http.StatusOK, s)
}

// Delete handles DELETE /api/suppliers/{id}.
func (h *SuppliersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "supplier")
	if !ok {
		return
	}

	claims := GetClaims(r.Context())
	if err := store.DeleteSupplier(r.Context(), h.DB, claims.AccountID, id); err != nil {
		storeError(w, r, err, "failed to delete supplier")
		return
	}

	slog.Info("supplier deleted", "user", claims.Username, "supplier_id", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "supplier deleted"})
}

// LinkItem handles POST /api/suppliers/{id}/items.
func (h *SuppliersHandler) LinkItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "supplier")
	if !ok {
		return
	}

	var req linkItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ItemID <= 0 {
		jsonError(w, http.StatusBadRequest, "item_id required")
		return
	}

	claims := GetClaims(r.Context())
	link, err := store.LinkSupplierItem(r.Context(), h.DB, claims.AccountID, id, req.ItemID, req.SKU, req.UnitPrice)
	if err != nil {
		storeError(w, r, err, "failed to link supplier item")
		return
	}

	slog.Info("supplier item linked", "user", claims.Username, "supplier", link.SupplierName, "item", link.ItemName)
	jsonResponse(w, http.StatusOK, link)
}

// UnlinkItem handles DELETE /api/suppliers/{id}/items/{itemID}.
func (h *SuppliersHandler) UnlinkItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "supplier")
	if !ok {
		return
	}
	itemID, ok := pathID(w, r, "itemID", "item")
	if !ok {
		return
	}

	claims := GetClaims(r.Context())
	if err := store.UnlinkSupplierItem(r.Context(), h.DB, claims.AccountID, id, itemID); err != nil {
		storeError(w, r, err, "failed to unlink supplier item")
		return
	}

	slog.Info("supplier item unlinked", "user", claims.Username, "supplier_id", id, "item_id", itemID)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "item unlinked"})
}
