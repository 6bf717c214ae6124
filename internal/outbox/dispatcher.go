package outbox

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stayloop/stayloop-server/internal/adapters/pg"
	"github.com/stayloop/stayloop-server/internal/domain"
	"github.com/stayloop/stayloop-server/internal/observability"
)

const (
	defaultBatchSize = 25
	maxAttempts      = 5
)

type NotificationWriter interface {
	Insert(ctx context.Context, n *domain.Notification) error
}

type EventPublisher interface {
	Publish(ctx context.Context, key string, msg amqp.Publishing) error
}

// Dispatcher drains pending intents: for each one it stores the
// user-facing notification record and publishes a delivery event. Rows are
// claimed with SKIP LOCKED so several dispatchers can run side by side.
type Dispatcher struct {
	repo          *pg.Repository
	notifications NotificationWriter
	publisher     EventPublisher
	logger        observability.Logger
	interval      time.Duration
}

func NewDispatcher(repo *pg.Repository, notifications NotificationWriter, publisher EventPublisher, logger observability.Logger, interval time.Duration) *Dispatcher {
	return &Dispatcher{
		repo:          repo,
		notifications: notifications,
		publisher:     publisher,
		logger:        logger,
		interval:      interval,
	}
}

func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.logger.Info("outbox dispatcher started")
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := d.DrainOnce(ctx); err != nil {
				d.logger.WithError(err).Error("outbox drain failed")
			}
			if lag, err := d.repo.OldestPendingAge(ctx, time.Now()); err == nil {
				observability.OutboxLag.Set(lag.Seconds())
			}
		}
	}
}

// DrainOnce claims one batch and processes it inside a single transaction;
// a record that fails is attempt-counted rather than blocking its batch.
func (d *Dispatcher) DrainOnce(ctx context.Context) error {
	return d.repo.WithTx(ctx, func(tx pgx.Tx) error {
		records, err := d.repo.GetUnpublishedOutbox(ctx, tx, defaultBatchSize)
		if err != nil {
			return err
		}
		for _, rec := range records {
			if err := d.dispatch(ctx, rec); err != nil {
				d.logger.WithField("outbox_id", rec.ID.String()).WithError(err).Error("failed to dispatch intent")
				if markErr := d.repo.MarkAttempted(ctx, tx, rec.ID, maxAttempts); markErr != nil {
					return markErr
				}
				continue
			}
			if err := d.repo.MarkPublished(ctx, tx, rec.ID, time.Now()); err != nil {
				return err
			}
		}
		return nil
	})
}

func (d *Dispatcher) dispatch(ctx context.Context, rec pg.OutboxRecord) error {
	var intent Intent
	if err := json.Unmarshal(rec.Payload, &intent); err != nil {
		return err
	}

	notification, err := domain.NewNotification(
		intent.UserID, intent.Role, intent.Type,
		intent.Title, intent.Message, intent.Link, intent.Metadata,
		time.Now(),
	)
	if err != nil {
		return err
	}
	if err := d.notifications.Insert(ctx, notification); err != nil {
		return err
	}

	msg := amqp.Publishing{
		MessageId:   rec.DedupeKey,
		ContentType: "application/json",
		Body:        rec.Payload,
	}
	if err := d.publisher.Publish(ctx, rec.EventType, msg); err != nil {
		return err
	}

	observability.NotificationsDispatched.WithLabelValues(string(intent.Type)).Inc()
	return nil
}
