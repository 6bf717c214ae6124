package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stayloop/stayloop-server/internal/auth"
	"github.com/stayloop/stayloop-server/internal/observability"
	"github.com/stayloop/stayloop-server/internal/ratelimit"
)

func SetupRouter(h *Handlers, logger observability.Logger, verifier *auth.Verifier, rl *ratelimit.RateLimiter) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(LoggerMiddleware(logger))
	r.Use(TracingMiddleware)

	r.Get("/v1/healthz", h.Healthz)
	r.Get("/v1/readyz", h.Readyz)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	// Gateway callbacks authenticate out of band, not with user tokens.
	r.Post("/v1/payments/callback", h.PaymentCallback)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(verifier))
		r.Use(RateLimitMiddleware(rl))
		r.Use(IdempotencyKeyMiddleware)

		r.Get("/v1/protection-plans", h.ProtectionPlans)

		r.Post("/v1/checkouts", h.StartCheckout)
		r.Get("/v1/checkouts/{id}", h.GetCheckout)
		r.Post("/v1/checkouts/{id}/application", h.SubmitApplication)
		r.Post("/v1/checkouts/{id}/plan", h.SelectPlan)
		r.Post("/v1/checkouts/{id}/payment", h.SetPaymentDetails)
		r.Post("/v1/checkouts/{id}/back", h.CheckoutBack)
		r.Post("/v1/checkouts/{id}/confirm", h.ConfirmCheckout)
		r.Get("/v1/checkouts/{id}/pending", h.PendingReservation)
		r.Delete("/v1/checkouts/{id}", h.AbandonCheckout)

		r.Get("/v1/reservations", h.ListReservations)
		r.Get("/v1/reservations/last", h.LastReservation)
		r.Get("/v1/reservations/{id}", h.GetReservation)
		r.Post("/v1/reservations/{id}/status", h.UpdateReservationStatus)
		r.Post("/v1/reservations/{id}/refund", h.RefundReservation)

		r.Post("/v1/photoshoots", h.CreateBooking)
		r.Get("/v1/photoshoots", h.ListBookings)
		r.Get("/v1/photoshoots/{id}", h.GetBooking)
		r.Post("/v1/photoshoots/{id}/assign", h.AssignBookingTeam)
		r.Post("/v1/photoshoots/{id}/complete", h.CompleteBooking)
		r.Post("/v1/photoshoots/{id}/cancel", h.CancelBooking)
		r.Post("/v1/photoshoots/{id}/reschedule", h.RescheduleBooking)

		r.Get("/v1/notifications", h.ListNotifications)
		r.Post("/v1/notifications/{id}/read", h.MarkNotificationRead)

		r.Get("/v1/payment-methods", h.ListPaymentMethods)
		r.Post("/v1/payment-methods", h.AddPaymentMethod)
		r.Post("/v1/payment-methods/{id}/default", h.SetDefaultPaymentMethod)
	})

	return r
}
