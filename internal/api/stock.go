package api

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/erazemk/shramba/internal/model"
	"github.com/erazemk/shramba/internal/store"
)

// StockHandler handles ledger, count and stock level endpoints.
type StockHandler struct {
	DB *sql.DB
}

type movementRequest struct {
	StoreID    int64      `json:"store_id"`
	ItemID     int64      `json:"item_id"`
	Type       string     `json:"type"`
	Quantity   float64    `json:"quantity"`
	Notes      string     `json:"notes"`
	OccurredAt *time.Time `json:"occurred_at"`
}

type entryRequest struct {
	StoreID   int64      `json:"store_id"`
	ItemID    int64      `json:"item_id"`
	Quantity  float64    `json:"quantity"`
	CountedAt *time.Time `json:"counted_at"`
}

type transferRequest struct {
	ItemID      int64   `json:"item_id"`
	FromStoreID int64   `json:"from_store_id"`
	ToStoreID   int64   `json:"to_store_id"`
	Quantity    float64 `json:"quantity"`
	Notes       string  `json:"notes"`
}

// ListMovements handles GET /api/stock/movements.
func (h *StockHandler) ListMovements(w http.ResponseWriter, r *http.Request) {
	var f store.MovementFilter
	var ok bool
	if f.StoreID, ok = queryID(w, r, "store_id"); !ok {
		return
	}
	if f.ItemID, ok = queryID(w, r, "item_id"); !ok {
		return
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			jsonError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		f.Limit = n
	}

	claims := GetClaims(r.Context())
	movements, err := store.ListMovements(r.Context(), h.DB, claims.AccountID, f)
	if err != nil {
		storeError(w, r, err, "failed to list movements")
		return
	}
	jsonResponse(w, http.StatusOK, orEmpty(movements))
}

// RecordMovement handles POST /api/stock/movements.
func (h *StockHandler) RecordMovement(w http.ResponseWriter, r *http.Request) {
	var req movementRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.StoreID <= 0 || req.ItemID <= 0 {
		jsonError(w, http.StatusBadRequest, "store_id and item_id required")
		return
	}

	claims := GetClaims(r.Context())
	m := model.StockMovement{
		StoreID:   req.StoreID,
		ItemID:    req.ItemID,
		Type:      req.Type,
		Quantity:  req.Quantity,
		Notes:     req.Notes,
		CreatedBy: &claims.UserID,
	}
	if req.OccurredAt != nil {
		m.OccurredAt = *req.OccurredAt
	}

	movement, err := store.RecordMovement(r.Context(), h.DB, claims.AccountID, m)
	if err != nil {
		storeError(w, r, err, "failed to record movement")
		return
	}

	slog.Info("stock movement recorded", "user", claims.Username,
		"item", movement.ItemName, "store", movement.StoreName,
		"type", movement.Type, "quantity", movement.Quantity)

	if movement.Quantity < 0 {
		h.notifyLowStock(r, claims.AccountID, movement.StoreID, movement.ItemID)
	}
	jsonResponse(w, http.StatusCreated, movement)
}

// RecordEntry handles POST /api/stock/entries.
func (h *StockHandler) RecordEntry(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.StoreID <= 0 || req.ItemID <= 0 {
		jsonError(w, http.StatusBadRequest, "store_id and item_id required")
		return
	}

	claims := GetClaims(r.Context())
	e := model.StockEntry{
		StoreID:   req.StoreID,
		ItemID:    req.ItemID,
		Quantity:  req.Quantity,
		CreatedBy: &claims.UserID,
	}
	if req.CountedAt != nil {
		e.CountedAt = *req.CountedAt
	}

	entry, err := store.RecordStockEntry(r.Context(), h.DB, claims.AccountID, e)
	if err != nil {
		storeError(w, r, err, "failed to record stock count")
		return
	}

	slog.Info("stock counted", "user", claims.Username, "item_id", entry.ItemID, "store_id", entry.StoreID, "quantity", entry.Quantity)
	h.notifyLowStock(r, claims.AccountID, entry.StoreID, entry.ItemID)
	jsonResponse(w, http.StatusCreated, entry)
}

// Transfer handles POST /api/stock/transfers.
func (h *StockHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.ItemID <= 0 || req.FromStoreID <= 0 || req.ToStoreID <= 0 || req.Quantity <= 0 {
		jsonError(w, http.StatusBadRequest, "item_id, from_store_id, to_store_id, and quantity are required and must be positive")
		return
	}

	claims := GetClaims(r.Context())
	movements, err := store.TransferStock(r.Context(), h.DB, claims.AccountID,
		req.ItemID, req.FromStoreID, req.ToStoreID, req.Quantity, req.Notes, &claims.UserID)
	if err != nil {
		storeError(w, r, err, "failed to transfer stock")
		return
	}

	out, in := movements[0], movements[1]
	slog.Info("stock transferred", "user", claims.Username,
		"item", out.ItemName, "quantity", in.Quantity,
		"from", out.StoreName, "to", in.StoreName)

	h.notifyLowStock(r, claims.AccountID, req.FromStoreID, req.ItemID)
	jsonResponse(w, http.StatusCreated, movements)
}

// Levels handles GET /api/stock?store_id=.
func (h *StockHandler) Levels(w http.ResponseWriter, r *http.Request) {
	storeID, ok := queryID(w, r, "store_id")
	if !ok {
		return
	}

	claims := GetClaims(r.Context())
	levels, err := store.CalculateStockByStore(r.Context(), h.DB, claims.AccountID, storeID)
	if err != nil {
		storeError(w, r, err, "failed to calculate stock")
		return
	}
	jsonResponse(w, http.StatusOK, orEmpty(levels))
}

// Alerts handles GET /api/stock/alerts?store_id=.
func (h *StockHandler) Alerts(w http.ResponseWriter, r *http.Request) {
	storeID, ok := queryID(w, r, "store_id")
	if !ok {
		return
	}

	claims := GetClaims(r.Context())
	alerts, err := store.GetStockAlerts(r.Context(), h.DB, claims.AccountID, storeID)
	if err != nil {
		storeError(w, r, err, "failed to get stock alerts")
		return
	}
	jsonResponse(w, http.StatusOK, orEmpty(alerts))
}

// notifyLowStock raises a low_stock notification when the item has dropped
// below its minimum in the store. Failures are logged, not returned.
func (h *StockHandler) notifyLowStock(r *http.Request, accountID, storeID, itemID int64) {
	alert, err := store.CheckLowStock(r.Context(), h.DB, accountID, storeID, itemID)
	if err != nil {
		slog.Error("failed to check stock level", "error", err, "item_id", itemID, "store_id", storeID)
		return
	}
	if alert == nil {
		return
	}

	msg := fmt.Sprintf("%s at %s is %s: %g %s left, minimum %g",
		alert.ItemName, alert.StoreName, alert.Severity, alert.Quantity, alert.Unit, alert.MinStock)
	if _, err := store.CreateNotification(r.Context(), h.DB, accountID, &itemID, model.NotifyLowStock, msg); err != nil {
		slog.Error("failed to create notification", "error", err, "item_id", itemID)
		return
	}
	slog.Warn("low stock", "item", alert.ItemName, "store", alert.StoreName, "quantity", alert.Quantity, "min_stock", alert.MinStock)
}
