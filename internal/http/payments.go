package http

import (
	"errors"
	"net/http"

	"github.com/stayloop/stayloop-server/internal/domain"
)

// PaymentCallback is the gateway's server-to-server result. It is
// unauthenticated at the router level and replay-tolerant: a duplicate
// success callback hits an already paid reservation and is acknowledged
// without effect.
func (h *Handlers) PaymentCallback(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderID       string `json:"orderId"`
		Status        string `json:"status"`
		TransactionID string `json:"transactionId"`
	}
	if err := decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	if req.OrderID == "" {
		h.writeError(w, domain.ErrInvalidInput)
		return
	}

	// The confirm-time order lock is released either way: the order is now
	// settled or free to be retried.
	defer func() {
		if err := h.locks.ReleaseOrderLock(r.Context(), req.OrderID); err != nil {
			h.logger.WithField("order_id", req.OrderID).WithError(err).Warn("release order lock")
		}
	}()

	if req.Status != "SUCCEEDED" {
		h.logger.WithField("order_id", req.OrderID).
			WithField("status", req.Status).
			Info("payment failed")
		w.WriteHeader(http.StatusOK)
		return
	}

	// The callback itself is unauthenticated, so a claimed success is
	// checked against the gateway before the reservation is marked paid.
	verified, err := h.gateway.Status(r.Context(), req.OrderID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if verified.Status != "SUCCEEDED" {
		h.logger.WithField("order_id", req.OrderID).
			WithField("status", verified.Status).
			Warn("callback status disagrees with gateway")
		h.writeError(w, domain.ErrInvalidInput)
		return
	}

	res, err := h.reservations.MarkPaid(r.Context(), req.OrderID, verified.TransactionID)
	if errors.Is(err, domain.ErrInvalidTransition) {
		w.WriteHeader(http.StatusOK)
		return
	}
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.logger.WithField("order_id", req.OrderID).
		WithField("reservation_id", res.ID.String()).
		WithField("transaction_id", req.TransactionID).
		Info("payment confirmed")
	w.WriteHeader(http.StatusOK)
}
