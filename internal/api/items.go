package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/shramba/internal/dedup"
	"github.com/erazemk/shramba/internal/imaging"
	"github.com/erazemk/shramba/internal/model"
	"github.com/erazemk/shramba/internal/store"
)

// ItemsHandler handles item CRUD endpoints.
type ItemsHandler struct {
	DB     *sql.DB
	Engine *dedup.Engine
}

type createItemResponse struct {
	Item       *model.Item                `json:"item"`
	Matches    []model.Match              `json:"matches"`
	Candidates []model.DuplicateCandidate `json:"candidates"`
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	var f store.ItemFilter
	var ok bool
	if f.StoreID, ok = queryID(w, r, "store_id"); !ok {
		return
	}
	if f.CategoryID, ok = queryID(w, r, "category_id"); !ok {
		return
	}
	if f.SupplierID, ok = queryID(w, r, "supplier_id"); !ok {
		return
	}
	f.Search = r.URL.Query().Get("q")

	claims := GetClaims(r.Context())
	items, err := store.ListItems(r.Context(), h.DB, claims.AccountID, f)
	if err != nil {
		storeError(w, r, err, "failed to list items")
		return
	}
	jsonResponse(w, http.StatusOK, orEmpty(items))
}

// Create handles POST /api/items. The new item is checked against the
// account's catalog and any likely duplicates are returned with it.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.ItemInput
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims := GetClaims(r.Context())
	item, err := store.CreateItem(r.Context(), h.DB, claims.AccountID, req)
	if err != nil {
		storeError(w, r, err, "failed to create item")
		return
	}
	slog.Info("item created", "user", claims.Username, "item", item.Name)

	// The item is already committed; a failed check still returns it.
	check, err := h.Engine.CheckItem(r.Context(), claims.AccountID, item.ID)
	if err != nil {
		slog.Error("duplicate check failed", "user", claims.Username, "item_id", item.ID, "error", err)
		check = &dedup.CheckResult{}
	}
	if check.Created > 0 {
		slog.Info("duplicate candidates recorded", "user", claims.Username, "item", item.Name, "count", check.Created)
	}

	jsonResponse(w, http.StatusCreated, createItemResponse{
		Item:       item,
		Matches:    orEmpty(check.Matches),
		Candidates: orEmpty(check.Candidates),
	})
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "item")
	if !ok {
		return
	}

	claims := GetClaims(r.Context())
	item, err := store.GetItem(r.Context(), h.DB, claims.AccountID, id)
	if err != nil {
		storeError(w, r, err, "failed to get item")
		return
	}
	if item == nil || item.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	jsonResponse(w, http.StatusOK, item)
}

// Update handles PUT /api/items/{id}. Changed identifiers are re-checked for
// duplicates.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "item")
	if !ok {
		return
	}

	var req model.ItemInput
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims := GetClaims(r.Context())
	if err := store.UpdateItem(r.Context(), h.DB, claims.AccountID, id, req); err != nil {
		storeError(w, r, err, "failed to update item")
		return
	}

	check, err := h.Engine.CheckItem(r.Context(), claims.AccountID, id)
	if err != nil {
		storeError(w, r, err, "failed to check for duplicates")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, claims.AccountID, id)
	if err != nil {
		storeError(w, r, err, "failed to get item")
		return
	}
	slog.Info("item updated", "user", claims.Username, "item", item.Name, "new_candidates", check.Created)
	jsonResponse(w, http.StatusOK, item)
}

// Delete handles DELETE /api/items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "item")
	if !ok {
		return
	}

	claims := GetClaims(r.Context())
	if err := store.DeleteItem(r.Context(), h.DB, claims.AccountID, id); err != nil {
		storeError(w, r, err, "failed to delete item")
		return
	}

	slog.Info("item deleted", "user", claims.Username, "item_id", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

// UploadImage handles PUT /api/items/{id}/image.
func (h *ItemsHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "item")
	if !ok {
		return
	}

	// Leave room for multipart framing around the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadSize+1<<20)

	if err := r.ParseMultipartForm(imaging.MaxUploadSize); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	photo, err := imaging.Process(file)
	switch {
	case errors.Is(err, imaging.ErrTooLarge):
		jsonError(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	case errors.Is(err, imaging.ErrUnsupported):
		jsonError(w, http.StatusBadRequest, "image must be JPEG or PNG")
		return
	case err != nil:
		storeError(w, r, err, "failed to process image")
		return
	}

	claims := GetClaims(r.Context())
	if err := store.SetItemImage(r.Context(), h.DB, claims.AccountID, id, photo.Data, photo.MIME); err != nil {
		storeError(w, r, err, "failed to save image")
		return
	}

	slog.Info("item image uploaded", "user", claims.Username, "item_id", id, "width", photo.Width, "height", photo.Height)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "image uploaded"})
}

// GetImage handles GET /api/items/{id}/image.
func (h *ItemsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "item")
	if !ok {
		return
	}

	claims := GetClaims(r.Context())
	data, mime, err := store.GetItemImage(r.Context(), h.DB, claims.AccountID, id)
	if err != nil {
		storeError(w, r, err, "failed to get image")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no image")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Write(data)
}

// GetHistory handles GET /api/items/{id}/history.
func (h *ItemsHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "item")
	if !ok {
		return
	}

	claims := GetClaims(r.Context())
	movements, err := store.GetItemMovements(r.Context(), h.DB, claims.AccountID, id)
	if err != nil {
		storeError(w, r, err, "failed to get item history")
		return
	}
	jsonResponse(w, http.StatusOK, orEmpty(movements))
}
