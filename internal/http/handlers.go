package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/stayloop/stayloop-server/internal/adapters/pg"
	redisadapter "github.com/stayloop/stayloop-server/internal/adapters/redis"
	"github.com/stayloop/stayloop-server/internal/checkout"
	"github.com/stayloop/stayloop-server/internal/config"
	"github.com/stayloop/stayloop-server/internal/domain"
	"github.com/stayloop/stayloop-server/internal/observability"
	"github.com/stayloop/stayloop-server/internal/payments"
	"github.com/stayloop/stayloop-server/internal/services"
)

// StatusChecker is the gateway lookup the payment callback uses to verify
// a claimed result before acting on it.
type StatusChecker interface {
	Status(ctx context.Context, orderID string) (*payments.StatusResult, error)
}

type Handlers struct {
	cfg           *config.Config
	checkout      *checkout.Orchestrator
	reservations  *services.ReservationService
	bookings      *services.BookingService
	methods       *services.PaymentMethodService
	notifications *services.NotificationService
	gateway       StatusChecker
	idemp         *redisadapter.Idempotency
	locks         *redisadapter.Cache
	repo          *pg.Repository
	logger        observability.Logger
}

func NewHandlers(cfg *config.Config, co *checkout.Orchestrator, reservations *services.ReservationService, bookings *services.BookingService, methods *services.PaymentMethodService, notifications *services.NotificationService, gateway StatusChecker, idemp *redisadapter.Idempotency, locks *redisadapter.Cache, repo *pg.Repository, logger observability.Logger) *Handlers {
	return &Handlers{
		cfg:           cfg,
		checkout:      co,
		reservations:  reservations,
		bookings:      bookings,
		methods:       methods,
		notifications: notifications,
		gateway:       gateway,
		idemp:         idemp,
		locks:         locks,
		repo:          repo,
		logger:        logger,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps the domain error taxonomy onto HTTP. Validation errors
// come back as a field-keyed object so the client can mark the offending
// inputs.
func (h *Handlers) writeError(w http.ResponseWriter, err error) {
	var verrs domain.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"errors": verrs})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, domain.ErrUnauthorized):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden"})
	case errors.Is(err, domain.ErrInvalidTransition):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "invalid state for this operation"})
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrSerializationFailure):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "conflict, try again"})
	case errors.Is(err, domain.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid input"})
	case errors.Is(err, redisadapter.ErrDraftSchemaMismatch):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "checkout session is from an older version, start over"})
	default:
		h.logger.WithError(err).Error("request failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

// respondIdempotent writes the response and caches it under the caller's
// idempotency key so a retry replays the same outcome.
func (h *Handlers) respondIdempotent(w http.ResponseWriter, r *http.Request, key string, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)

	if err := h.idemp.Set(r.Context(), key, redisadapter.IdempResponse{Status: status, Result: data}, idempotencyTTL); err != nil {
		h.logger.WithError(err).Warn("cache idempotent response")
	}
}

const idempotencyTTL = 24 * time.Hour

func decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.ErrInvalidInput
	}
	return nil
}

func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// Readyz pings the stores a request would need; a failing dependency takes
// the instance out of rotation.
func (h *Handlers) Readyz(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Pool().Ping(r.Context()); err != nil {
		http.Error(w, "postgres not ready", http.StatusServiceUnavailable)
		return
	}
	if err := h.locks.Client().Ping(r.Context()).Err(); err != nil {
		http.Error(w, "redis not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Ready"))
}
