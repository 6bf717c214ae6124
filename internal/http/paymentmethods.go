package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stayloop/stayloop-server/internal/domain"
)

func (h *Handlers) ListPaymentMethods(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	list, err := h.methods.List(r.Context(), claims.UserID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handlers) AddPaymentMethod(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	key := r.Header.Get("Idempotency-Key")
	if existing, err := h.idemp.Get(r.Context(), key); err == nil && existing != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(existing.Status)
		w.Write(existing.Result)
		return
	}

	var pm domain.PaymentMethod
	if err := decode(r, &pm); err != nil {
		h.writeError(w, err)
		return
	}

	created, err := h.methods.Add(r.Context(), claims.UserID, pm)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.respondIdempotent(w, r, key, http.StatusCreated, created)
}

func (h *Handlers) SetDefaultPaymentMethod(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, domain.ErrInvalidInput)
		return
	}

	if err := h.methods.SetDefault(r.Context(), claims.UserID, id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
