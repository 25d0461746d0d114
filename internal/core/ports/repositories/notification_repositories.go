package repositories

import (
	"context"

	"github.com/SscSPs/expenseflow/internal/core/domain"
)

// NotificationRepository persists in-app notifications.
type NotificationRepository interface {
	SaveNotification(ctx context.Context, n domain.Notification) error
	ListNotificationsByUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]domain.Notification, error)
	// MarkRead flags a notification owned by userID. Returns apperrors.ErrNotFound otherwise.
	MarkRead(ctx context.Context, notificationID, userID string) error
}
