package services

import (
	"context"

	"github.com/SscSPs/expenseflow/internal/core/domain"
)

// NotificationSvc persists inbox entries and delivers best-effort email.
type NotificationSvc interface {
	// Send persists n and then tries to deliver email, if given. Only a
	// persistence failure is returned.
	Send(ctx context.Context, identity domain.Identity, n domain.Notification, email *domain.Email) (*domain.Notification, error)

	// NotifyUser is Send for internal callers. Every failure is logged and swallowed.
	NotifyUser(ctx context.Context, n domain.Notification, email *domain.Email)

	ListNotifications(ctx context.Context, identity domain.Identity, unreadOnly bool, limit int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, identity domain.Identity, notificationID string) error
}
