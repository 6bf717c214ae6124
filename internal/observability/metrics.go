package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stayloop_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "code", "method"},
	)

	CheckoutsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stayloop_checkouts_started_total",
			Help: "Checkout sessions started",
		},
	)

	CheckoutsConfirmed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stayloop_checkouts_confirmed_total",
			Help: "Checkouts that reached payment initiation",
		},
	)

	ReservationTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stayloop_reservation_transitions_total",
			Help: "Reservation status transitions applied",
		},
		[]string{"to"},
	)

	PaymentInitiations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stayloop_payment_initiations_total",
			Help: "Payment gateway initiation attempts",
		},
		[]string{"result"},
	)

	OutboxLag = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "stayloop_outbox_lag_seconds",
			Help: "Age of the oldest pending notification intent",
		},
	)

	NotificationsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stayloop_notifications_dispatched_total",
			Help: "Notification intents drained from the outbox",
		},
		[]string{"type"},
	)

	SweepChecksRun = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stayloop_sweep_checks_total",
			Help: "Due checks processed by the sweeper",
		},
		[]string{"kind", "result"},
	)

	RateLimitExceeded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stayloop_rate_limit_exceeded_total",
			Help: "Requests rejected by the rate limiter",
		},
	)
)
