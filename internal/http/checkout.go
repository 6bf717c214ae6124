package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stayloop/stayloop-server/internal/domain"
)

func (h *Handlers) StartCheckout(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	var req struct {
		ListingID uuid.UUID `json:"listingId"`
	}
	if err := decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	d, err := h.checkout.Start(r.Context(), claims.UserID, req.ListingID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (h *Handlers) GetCheckout(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	draftID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, domain.ErrInvalidInput)
		return
	}

	d, err := h.checkout.Get(r.Context(), claims.UserID, draftID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *Handlers) SubmitApplication(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	draftID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, domain.ErrInvalidInput)
		return
	}
	var app domain.RentalApplication
	if err := decode(r, &app); err != nil {
		h.writeError(w, err)
		return
	}

	d, err := h.checkout.SubmitApplication(r.Context(), claims.UserID, draftID, app)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *Handlers) SelectPlan(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	draftID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, domain.ErrInvalidInput)
		return
	}
	var req struct {
		PlanID string `json:"planId"`
	}
	if err := decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	d, err := h.checkout.SelectPlan(r.Context(), claims.UserID, draftID, req.PlanID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *Handlers) SetPaymentDetails(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	draftID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, domain.ErrInvalidInput)
		return
	}
	var req struct {
		TermsAccepted   bool       `json:"termsAccepted"`
		PaymentMethodID *uuid.UUID `json:"paymentMethodId"`
	}
	if err := decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	d, err := h.checkout.SetPaymentDetails(r.Context(), claims.UserID, draftID, req.TermsAccepted, req.PaymentMethodID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *Handlers) CheckoutBack(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	draftID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, domain.ErrInvalidInput)
		return
	}

	d, err := h.checkout.Back(r.Context(), claims.UserID, draftID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// ConfirmCheckout answers retries from the idempotency cache; the order
// lock underneath guards the window before the first response is cached.
func (h *Handlers) ConfirmCheckout(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	key := r.Header.Get("Idempotency-Key")
	if existing, err := h.idemp.Get(r.Context(), key); err == nil && existing != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(existing.Status)
		w.Write(existing.Result)
		return
	}

	draftID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, domain.ErrInvalidInput)
		return
	}

	result, err := h.checkout.Confirm(r.Context(), claims.UserID, draftID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	status := http.StatusOK
	if result.Declined != "" {
		status = http.StatusPaymentRequired
	}
	h.respondIdempotent(w, r, key, status, result)
}

func (h *Handlers) PendingReservation(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	draftID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, domain.ErrInvalidInput)
		return
	}

	res, err := h.checkout.PendingReservation(r.Context(), claims.UserID, draftID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handlers) AbandonCheckout(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	draftID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, domain.ErrInvalidInput)
		return
	}

	if err := h.checkout.Abandon(r.Context(), claims.UserID, draftID); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) ProtectionPlans(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, domain.ActiveProtectionPlans())
}
