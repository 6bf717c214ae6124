package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stayloop/stayloop-server/internal/domain"
)

func (h *Handlers) CreateBooking(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	if claims.Role != domain.RoleAdvertiser {
		h.writeError(w, domain.ErrUnauthorized)
		return
	}

	key := r.Header.Get("Idempotency-Key")
	if existing, err := h.idemp.Get(r.Context(), key); err == nil && existing != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(existing.Status)
		w.Write(existing.Result)
		return
	}

	var req struct {
		PropertyAddress string    `json:"propertyAddress"`
		ScheduledAt     time.Time `json:"scheduledAt"`
	}
	if err := decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	b, err := h.bookings.Create(r.Context(), claims.UserID, req.PropertyAddress, req.ScheduledAt)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.respondIdempotent(w, r, key, http.StatusCreated, b)
}

// ListBookings shows advertisers their own bookings. Admins get the cross
// advertiser work queue, filterable by ?status= and defaulting to pending.
func (h *Handlers) ListBookings(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)

	var (
		list []domain.PhotoshootBooking
		err  error
	)
	if claims.Role == domain.RoleAdmin {
		status := domain.BookingStatus(r.URL.Query().Get("status"))
		if status == "" {
			status = domain.BookingPending
		}
		list, err = h.bookings.ListByStatus(r.Context(), status)
	} else {
		list, err = h.bookings.ListForAdvertiser(r.Context(), claims.UserID)
	}
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handlers) GetBooking(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, domain.ErrInvalidInput)
		return
	}

	b, err := h.bookings.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if claims.Role != domain.RoleAdmin && b.AdvertiserID != claims.UserID {
		h.writeError(w, domain.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *Handlers) AssignBookingTeam(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	if claims.Role != domain.RoleAdmin {
		h.writeError(w, domain.ErrUnauthorized)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, domain.ErrInvalidInput)
		return
	}
	var req struct {
		TeamID uuid.UUID `json:"teamId"`
	}
	if err := decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	b, err := h.bookings.AssignTeam(r.Context(), claims.UserID, id, req.TeamID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *Handlers) CompleteBooking(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	if claims.Role != domain.RoleAdmin {
		h.writeError(w, domain.ErrUnauthorized)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, domain.ErrInvalidInput)
		return
	}
	var req struct {
		PropertyID uuid.UUID `json:"propertyId"`
		Images     []string  `json:"images"`
	}
	if err := decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	b, err := h.bookings.Complete(r.Context(), id, req.PropertyID, req.Images)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *Handlers) CancelBooking(w http.ResponseWriter, r *http.Request) {
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

	if claims.Role != domain.RoleAdmin {
		b, err := h.bookings.Get(r.Context(), id)
		if err != nil {
			h.writeError(w, err)
			return
		}
		if b.AdvertiserID != claims.UserID {
			h.writeError(w, domain.ErrNotFound)
			return
		}
	}

	b, err := h.bookings.Cancel(r.Context(), claims.UserID, id, req.Reason)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *Handlers) RescheduleBooking(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, domain.ErrInvalidInput)
		return
	}
	var req struct {
		ScheduledAt time.Time `json:"scheduledAt"`
	}
	if err := decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	if claims.Role != domain.RoleAdmin {
		b, err := h.bookings.Get(r.Context(), id)
		if err != nil {
			h.writeError(w, err)
			return
		}
		if b.AdvertiserID != claims.UserID {
			h.writeError(w, domain.ErrNotFound)
			return
		}
	}

	b, err := h.bookings.Reschedule(r.Context(), id, req.ScheduledAt)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}
