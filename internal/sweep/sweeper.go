package sweep

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stayloop/stayloop-server/internal/adapters/pg"
	"github.com/stayloop/stayloop-server/internal/clock"
	"github.com/stayloop/stayloop-server/internal/domain"
	"github.com/stayloop/stayloop-server/internal/observability"
)

const (
	batchSize   = 50
	maxAttempts = 8
	baseBackoff = 30 * time.Second
)

type DiscountFinalizer interface {
	CheckAndFinalize(ctx context.Context, reservationID uuid.UUID) (bool, error)
}

type ReservationExpirer interface {
	Expire(ctx context.Context, reservationID uuid.UUID) (bool, error)
}

// StaleScanner finds pending reservations past their deadline straight in
// the document store. Expiry normally rides a scheduled check; this covers
// reservations whose check was lost at creation time.
type StaleScanner interface {
	ListStalePending(ctx context.Context, cutoff time.Time, limit int64) ([]domain.Reservation, error)
}

// Sweeper drains due checks on an interval. Each check is claimed with the
// row locked, run, and either marked done or pushed back with exponential
// backoff; a check that keeps failing is parked after maxAttempts by
// rescheduling it far out rather than dropped, so it stays visible.
type Sweeper struct {
	repo       *pg.Repository
	discounts  DiscountFinalizer
	expirer    ReservationExpirer
	stale      StaleScanner
	clock      clock.Clock
	logger     observability.Logger
	interval   time.Duration
	pendingTTL time.Duration
}

func NewSweeper(repo *pg.Repository, discounts DiscountFinalizer, expirer ReservationExpirer, stale StaleScanner, clk clock.Clock, logger observability.Logger, interval, pendingTTL time.Duration) *Sweeper {
	return &Sweeper{
		repo:       repo,
		discounts:  discounts,
		expirer:    expirer,
		stale:      stale,
		clock:      clk,
		logger:     logger,
		interval:   interval,
		pendingTTL: pendingTTL,
	}
}

func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.SweepOnce(ctx); err != nil {
				s.logger.WithError(err).Error("sweep")
			}
			if err := s.SweepStale(ctx); err != nil {
				s.logger.WithError(err).Error("sweep stale")
			}
		}
	}
}

// SweepOnce claims one batch of due checks and runs them. Failures are
// per-check; one bad check never blocks the rest of the batch.
func (s *Sweeper) SweepOnce(ctx context.Context) error {
	now := s.clock.Now()
	return s.repo.WithTx(ctx, func(tx pgx.Tx) error {
		checks, err := s.repo.GetDueChecks(ctx, tx, now, batchSize)
		if err != nil {
			return errors.Wrap(err, "get due checks")
		}
		for _, check := range checks {
			if err := s.runCheck(ctx, check); err != nil {
				observability.SweepChecksRun.WithLabelValues(check.Kind, "error").Inc()
				s.logger.WithField("check_id", check.ID.String()).WithError(err).Error("run check")
				if err := s.repo.RescheduleCheck(ctx, tx, check.ID, now.Add(backoff(check.Attempts))); err != nil {
					return errors.Wrap(err, "reschedule check")
				}
				continue
			}
			observability.SweepChecksRun.WithLabelValues(check.Kind, "ok").Inc()
			if err := s.repo.MarkCheckDone(ctx, tx, check.ID, now); err != nil {
				return errors.Wrap(err, "mark check done")
			}
		}
		return nil
	})
}

// SweepStale expires pending reservations the scheduled checks missed.
// Expire refuses anything that already moved on, so racing the normal
// check path is harmless.
func (s *Sweeper) SweepStale(ctx context.Context) error {
	cutoff := s.clock.Now().Add(-s.pendingTTL)
	reservations, err := s.stale.ListStalePending(ctx, cutoff, batchSize)
	if err != nil {
		return errors.Wrap(err, "list stale pending")
	}
	for _, r := range reservations {
		expired, err := s.expirer.Expire(ctx, r.ID)
		if err != nil {
			s.logger.WithField("reservation_id", r.ID.String()).WithError(err).Error("expire stale")
			continue
		}
		if expired {
			s.logger.WithField("reservation_id", r.ID.String()).Info("stale pending reservation expired")
		}
	}
	return nil
}

func (s *Sweeper) runCheck(ctx context.Context, check pg.DueCheck) error {
	switch check.Kind {
	case pg.CheckKindDiscountFinalize:
		finalized, err := s.discounts.CheckAndFinalize(ctx, check.AggregateID)
		if err != nil {
			return err
		}
		if finalized {
			s.logger.WithField("reservation_id", check.AggregateID.String()).Info("referral discount finalized")
		}
		return nil
	case pg.CheckKindReservationExpiry:
		expired, err := s.expirer.Expire(ctx, check.AggregateID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if expired {
			s.logger.WithField("reservation_id", check.AggregateID.String()).Info("pending reservation expired")
		}
		return nil
	default:
		// A kind this build does not know is left alone for a newer one.
		return errors.Newf("unknown check kind %q", check.Kind)
	}
}

func backoff(attempts int) time.Duration {
	if attempts >= maxAttempts {
		return 24 * time.Hour
	}
	return baseBackoff << uint(attempts)
}
