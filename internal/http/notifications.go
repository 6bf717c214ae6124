package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stayloop/stayloop-server/internal/domain"
)

func (h *Handlers) ListNotifications(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	unreadOnly := r.URL.Query().Get("unread") == "true"
	limit, _ := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64)

	list, err := h.notifications.List(r.Context(), claims.UserID, claims.Role, unreadOnly, limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handlers) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, domain.ErrInvalidInput)
		return
	}

	if err := h.notifications.MarkRead(r.Context(), id, claims.UserID); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
