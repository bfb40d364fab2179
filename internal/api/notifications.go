package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/shramba/internal/store"
)

// NotificationsHandler handles notification endpoints.
type NotificationsHandler struct {
	DB *sql.DB
}

// List handles GET /api/notifications. ?unread=1 limits to unread ones.
func (h *NotificationsHandler) List(w http.ResponseWriter, r *http.Request) {
	unread := r.URL.Query().Get("unread")
	claims := GetClaims(r.Context())
	notes, err := store.ListNotifications(r.Context(), h.DB, claims.AccountID, unread == "1" || unread == "true")
	if err != nil {
		storeError(w, r, err, "failed to list notifications")
		return
	}
	jsonResponse(w, http.StatusOK, orEmpty(notes))
}

// MarkRead handles POST /api/notifications/{id}/read.
func (h *NotificationsHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "notification")
	if !ok {
		return
	}

	claims := GetClaims(r.Context())
	if err := store.MarkNotificationRead(r.Context(), h.DB, claims.AccountID, id); err != nil {
		storeError(w, r, err, "failed to mark notification read")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "notification read"})
}
