package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/erazemk/shramba/internal/dedup"
	"github.com/erazemk/shramba/internal/model"
	"github.com/erazemk/shramba/internal/store"
)

// DuplicatesHandler handles matching, merge and dismissal endpoints.
type DuplicatesHandler struct {
	DB     *sql.DB
	Engine *dedup.Engine
}

type matchRequest struct {
	model.MatchQuery
	ExcludeItemID int64 `json:"exclude_item_id"`
}

type mergeRequest struct {
	RemoveID int64 `json:"remove_id"`
	KeepID   int64 `json:"keep_id"`
}

// Match handles POST /api/items/match. Nothing is recorded.
func (h *DuplicatesHandler) Match(w http.ResponseWriter, r *http.Request) {
	var req matchRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims := GetClaims(r.Context())
	matches, err := h.Engine.FindPotentialMatches(r.Context(), req.MatchQuery, claims.AccountID, req.ExcludeItemID)
	if err != nil {
		storeError(w, r, err, "failed to find matches")
		return
	}
	jsonResponse(w, http.StatusOK, orEmpty(matches))
}

// ForItem handles GET /api/items/{id}/duplicates: the pending candidates that
// name the item.
func (h *DuplicatesHandler) ForItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "item")
	if !ok {
		return
	}

	claims := GetClaims(r.Context())
	cands, err := store.ListCandidates(r.Context(), h.DB, claims.AccountID, model.CandidatePending, id)
	if err != nil {
		storeError(w, r, err, "failed to list duplicates")
		return
	}
	jsonResponse(w, http.StatusOK, orEmpty(cands))
}

// List handles GET /api/duplicates?status=. status defaults to pending; "all"
// lists every candidate.
func (h *DuplicatesHandler) List(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	switch status {
	case "":
		status = model.CandidatePending
	case "all":
		status = ""
	case model.CandidatePending, model.CandidateDismissed, model.CandidateMerged:
	default:
		jsonError(w, http.StatusBadRequest, "invalid status")
		return
	}

	claims := GetClaims(r.Context())
	cands, err := store.ListCandidates(r.Context(), h.DB, claims.AccountID, status, 0)
	if err != nil {
		storeError(w, r, err, "failed to list duplicates")
		return
	}
	jsonResponse(w, http.StatusOK, orEmpty(cands))
}

// Dismiss handles POST /api/duplicates/{id}/dismiss.
func (h *DuplicatesHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "candidate")
	if !ok {
		return
	}

	claims := GetClaims(r.Context())
	cand, err := h.Engine.DismissDuplicate(r.Context(), claims.AccountID, id, claims.UserID)
	if err != nil {
		storeError(w, r, err, "failed to dismiss duplicate")
		return
	}

	slog.Info("duplicate dismissed", "user", claims.Username, "item", cand.ItemName, "matched_item", cand.MatchedItemName)
	jsonResponse(w, http.StatusOK, cand)
}

// Preview handles GET /api/items/merge/preview?remove=&keep=.
func (h *DuplicatesHandler) Preview(w http.ResponseWriter, r *http.Request) {
	removeID, ok := queryID(w, r, "remove")
	if !ok {
		return
	}
	keepID, ok := queryID(w, r, "keep")
	if !ok {
		return
	}
	if removeID == 0 || keepID == 0 {
		jsonError(w, http.StatusBadRequest, "remove and keep required")
		return
	}

	claims := GetClaims(r.Context())
	impact, err := h.Engine.GetAffectedByMerge(r.Context(), claims.AccountID, removeID, keepID)
	if err != nil {
		storeError(w, r, err, "failed to preview merge")
		return
	}
	jsonResponse(w, http.StatusOK, impact)
}

// Merge handles POST /api/items/merge.
func (h *DuplicatesHandler) Merge(w http.ResponseWriter, r *http.Request) {
	var req mergeRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.RemoveID <= 0 || req.KeepID <= 0 {
		jsonError(w, http.StatusBadRequest, "remove_id and keep_id required")
		return
	}

	claims := GetClaims(r.Context())
	res, err := h.Engine.MergeItems(r.Context(), claims.AccountID, req.RemoveID, req.KeepID, claims.UserID)
	if err != nil {
		storeError(w, r, err, "failed to merge items")
		return
	}

	slog.Info("items merged", "user", claims.Username,
		"removed", res.RemovedItemID, "kept", res.KeptItemID,
		"recipes", res.MigratedRecipes, "movements", res.MigratedMovements,
		"entries", res.MigratedStockEntries, "supplier_links", res.MigratedSupplierLinks)
	jsonResponse(w, http.StatusOK, res)
}
