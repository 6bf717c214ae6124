package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stayloop/stayloop-server/internal/domain"
)

// ListReservations scopes by the caller's role: tenants see the
// reservations they made, advertisers the ones against their listings.
func (h *Handlers) ListReservations(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	var (
		list []domain.Reservation
		err  error
	)
	switch claims.Role {
	case domain.RoleAdvertiser:
		list, err = h.reservations.ListForAdvertiser(r.Context(), claims.UserID)
	default:
		list, err = h.reservations.ListForTenant(r.Context(), claims.UserID)
	}
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handlers) GetReservation(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, domain.ErrInvalidInput)
		return
	}

	res, err := h.reservations.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if claims.Role != domain.RoleAdmin && res.TenantID != claims.UserID && res.AdvertiserID != claims.UserID {
		h.writeError(w, domain.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handlers) UpdateReservationStatus(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, domain.ErrInvalidInput)
		return
	}
	var req struct {
		Status domain.ReservationStatus `json:"status"`
		Reason string                   `json:"reason"`
	}
	if err := decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	if !req.Status.IsValid() {
		h.writeError(w, domain.ValidationErrors{"status": "unknown status"})
		return
	}

	res, err := h.reservations.UpdateStatus(r.Context(), claims.UserID, claims.Role, id, req.Status, req.Reason)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// RefundReservation executes a gateway refund and lands the reservation on
// refundComplete or refundFailed. The service gates it to admins.
func (h *Handlers) RefundReservation(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, domain.ErrInvalidInput)
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if err := decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	res, err := h.reservations.ResolveRefund(r.Context(), claims.UserID, claims.Role, id, req.Reason)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// LastReservation backs the gateway return page, which arrives with no
// draft context and needs the reservation the tenant just confirmed.
func (h *Handlers) LastReservation(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	id, err := h.checkout.LastReservationID(r.Context(), claims.UserID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	res, err := h.reservations.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if res.TenantID != claims.UserID {
		h.writeError(w, domain.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
