package mongo

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/stayloop/stayloop-server/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
)

type NotificationRepository struct {
	store *Store
}

func NewNotificationRepository(store *Store) *NotificationRepository {
	return &NotificationRepository{store: store}
}

func (r *NotificationRepository) Insert(ctx context.Context, n *domain.Notification) error {
	return r.store.Insert(ctx, CollNotifications, n)
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID uuid.UUID, role domain.Role, unreadOnly bool, limit int64) ([]domain.Notification, error) {
	filter := bson.M{"user_id": userID, "role": role}
	if unreadOnly {
		filter["is_read"] = false
	}
	var out []domain.Notification
	err := r.store.Find(ctx, CollNotifications, filter, &out,
		&FindOptions{SortField: "created_at", SortDesc: true, Limit: limit})
	return out, err
}

// MarkRead flips the read flag; the record is otherwise immutable.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	res, err := r.store.Collection(CollNotifications).UpdateOne(ctx,
		bson.M{"_id": id, "user_id": userID},
		bson.M{"$set": bson.M{"is_read": true}})
	if err != nil {
		return errors.Wrap(err, "mark notification read")
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}
