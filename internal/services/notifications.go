package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/stayloop/stayloop-server/internal/domain"
)

type NotificationStore interface {
	ListByUser(ctx context.Context, userID uuid.UUID, role domain.Role, unreadOnly bool, limit int64) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
}

const defaultNotificationLimit = 50

// NotificationService is the read side of notifications; writes happen
// only through the outbox dispatcher.
type NotificationService struct {
	notifications NotificationStore
}

func NewNotificationService(notifications NotificationStore) *NotificationService {
	return &NotificationService{notifications: notifications}
}

func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, role domain.Role, unreadOnly bool, limit int64) ([]domain.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = defaultNotificationLimit
	}
	return s.notifications.ListByUser(ctx, userID, role, unreadOnly, limit)
}

// MarkRead scopes by owner: marking someone else's notification is a 404,
// not a 403, so ids cannot be probed.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	return s.notifications.MarkRead(ctx, id, userID)
}
