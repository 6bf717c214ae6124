package mongo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stayloop/stayloop-server/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// AuditLogger records admin actions (team assignment, cancellations,
// refunds). Best-effort: failures are logged, never propagated.
type AuditLogger struct {
	coll   *mongo.Collection
	logger observability.Logger
}

func NewAuditLogger(store *Store, logger observability.Logger) *AuditLogger {
	return &AuditLogger{
		coll:   store.Collection(CollAuditLogs),
		logger: logger,
	}
}

type AuditLog struct {
	ID        uuid.UUID `bson:"_id"`
	Action    string    `bson:"action"`
	ActorID   uuid.UUID `bson:"actor_id"`
	Timestamp time.Time `bson:"timestamp"`
	Data      bson.M    `bson:"data"`
}

func (a *AuditLogger) LogEvent(ctx context.Context, action string, actorID uuid.UUID, data map[string]interface{}) {
	log := AuditLog{
		ID:        uuid.New(),
		Action:    action,
		ActorID:   actorID,
		Timestamp: time.Now(),
		Data:      bson.M(data),
	}
	if _, err := a.coll.InsertOne(ctx, log); err != nil {
		a.logger.WithField("action", action).WithError(err).Error("failed to insert audit log")
	}
}

func (a *AuditLogger) LogTeamAssigned(ctx context.Context, actorID, bookingID, teamID uuid.UUID) {
	a.LogEvent(ctx, "booking.team_assigned", actorID, map[string]interface{}{
		"booking_id": bookingID,
		"team_id":    teamID,
	})
}

func (a *AuditLogger) LogBookingCancelled(ctx context.Context, actorID, bookingID uuid.UUID, reason string) {
	a.LogEvent(ctx, "booking.cancelled", actorID, map[string]interface{}{
		"booking_id": bookingID,
		"reason":     reason,
	})
}

func (a *AuditLogger) LogRefund(ctx context.Context, actorID, reservationID uuid.UUID, amountCents int64) {
	a.LogEvent(ctx, "reservation.refund", actorID, map[string]interface{}{
		"reservation_id": reservationID,
		"amount_cents":   amountCents,
	})
}
