package outbox

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/stayloop/stayloop-server/internal/adapters/pg"
	"github.com/stayloop/stayloop-server/internal/domain"
)

// Intent is a notification the system owes somebody. Services append
// intents as part of their mutations; the dispatcher turns them into
// stored notification records and delivery events. An intent is the only
// way a service is allowed to notify; there are no direct sends.
type Intent struct {
	UserID        uuid.UUID               `json:"userId"`
	Role          domain.Role             `json:"role"`
	Type          domain.NotificationType `json:"type"`
	Title         string                  `json:"title"`
	Message       string                  `json:"message"`
	Link          string                  `json:"link,omitempty"`
	Metadata      map[string]string       `json:"metadata,omitempty"`
	AggregateType string                  `json:"aggregateType"`
	AggregateID   uuid.UUID               `json:"aggregateId"`
}

type Enqueuer interface {
	Enqueue(ctx context.Context, intent Intent) error
}

// PGEnqueuer appends intents to the Postgres outbox table.
type PGEnqueuer struct {
	repo *pg.Repository
}

func NewPGEnqueuer(repo *pg.Repository) *PGEnqueuer {
	return &PGEnqueuer{repo: repo}
}

func (e *PGEnqueuer) Enqueue(ctx context.Context, intent Intent) error {
	if !intent.Type.ValidFor(intent.Role) {
		return domain.ErrInvalidInput
	}
	payload, err := json.Marshal(intent)
	if err != nil {
		return err
	}
	return e.repo.InsertOutboxDirect(ctx, pg.OutboxRecord{
		ID:            uuid.New(),
		AggregateType: intent.AggregateType,
		AggregateID:   intent.AggregateID,
		EventType:     "notification." + string(intent.Type),
		Payload:       payload,
		DedupeKey:     dedupeKey(intent),
	})
}

// dedupeKey makes re-enqueues of the same intent for the same aggregate
// detectable downstream.
func dedupeKey(intent Intent) string {
	return fmt.Sprintf("%s:%s:%s", intent.AggregateID, intent.Type, intent.UserID)
}
