package services

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/SscSPs/expenseflow/internal/apperrors"
	"github.com/SscSPs/expenseflow/internal/core/domain"
	portsrepo "github.com/SscSPs/expenseflow/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/expenseflow/internal/core/ports/services"
	"github.com/google/uuid"
)

const maxNotificationListSize = 100

// notificationService implements portssvc.NotificationSvc
type notificationService struct {
	BaseService
	repo   portsrepo.NotificationRepository
	mailer portssvc.Mailer
}

// NewNotificationService creates the notification service. A nil mailer
// disables email delivery.
func NewNotificationService(repo portsrepo.NotificationRepository, mailer portssvc.Mailer) *notificationService {
	return &notificationService{
		BaseService: newBaseService(),
		repo:        repo,
		mailer:      mailer,
	}
}

var _ portssvc.NotificationSvc = (*notificationService)(nil)

func (s *notificationService) Send(ctx context.Context, identity domain.Identity, n domain.Notification, email *domain.Email) (*domain.Notification, error) {
	if err := s.RequireIdentity(identity); err != nil {
		return nil, err
	}
	saved, err := s.persist(ctx, n)
	if err != nil {
		return nil, err
	}
	s.deliver(ctx, email)
	return saved, nil
}

func (s *notificationService) NotifyUser(ctx context.Context, n domain.Notification, email *domain.Email) {
	if _, err := s.persist(ctx, n); err != nil {
		s.LogError(ctx, err, "Failed to persist notification", slog.String("user_id", n.UserID))
	}
	s.deliver(ctx, email)
}

func (s *notificationService) persist(ctx context.Context, n domain.Notification) (*domain.Notification, error) {
	fields := map[string]string{}
	if strings.TrimSpace(n.UserID) == "" {
		fields["notification.userId"] = "Recipient is required"
	}
	if strings.TrimSpace(n.Title) == "" {
		fields["notification.title"] = "Title is required"
	}
	if len(fields) > 0 {
		return nil, apperrors.NewValidationError(fields)
	}
	if n.Type == "" {
		n.Type = domain.NotificationGeneral
	}
	n.ID = newID()
	n.IsRead = false
	n.CreatedAt = s.Now()

	if err := s.repo.SaveNotification(ctx, n); err != nil {
		s.LogError(ctx, err, "Failed to save notification", slog.String("user_id", n.UserID))
		return nil, fmt.Errorf("failed to save notification: %w", err)
	}
	return &n, nil
}

// deliver sends email when configured. Failures are logged only.
func (s *notificationService) deliver(ctx context.Context, email *domain.Email) {
	if email == nil || s.mailer == nil || strings.TrimSpace(email.To) == "" {
		return
	}
	if err := s.mailer.Send(ctx, *email); err != nil {
		s.LogError(ctx, err, "Failed to send notification email", slog.String("to", email.To))
		return
	}
	s.LogDebug(ctx, "Notification email sent", slog.String("to", email.To))
}

func (s *notificationService) ListNotifications(ctx context.Context, identity domain.Identity, unreadOnly bool, limit int) ([]domain.Notification, error) {
	if err := s.RequireIdentity(identity); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > maxNotificationListSize {
		limit = maxNotificationListSize
	}
	list, err := s.repo.ListNotificationsByUser(ctx, identity.UserID, unreadOnly, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	if list == nil {
		list = []domain.Notification{}
	}
	return list, nil
}

func (s *notificationService) MarkRead(ctx context.Context, identity domain.Identity, notificationID string) error {
	if err := s.RequireIdentity(identity); err != nil {
		return err
	}
	if err := s.repo.MarkRead(ctx, notificationID, identity.UserID); err != nil {
		if isNotFound(err) {
			return apperrors.NewNotFoundError("Notification not found")
		}
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

func newID() string {
	return uuid.NewString()
}

// emailBody renders a minimal HTML message. Inputs are escaped.
func emailBody(title, message string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; padding: 20px;">
    <h2>%s</h2>
    <p>%s</p>
    <p style="color: #666;">ExpenseFlow</p>
</body>
</html>
`, html.EscapeString(title), html.EscapeString(message))
}
