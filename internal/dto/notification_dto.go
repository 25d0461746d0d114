package dto

import "github.com/SscSPs/expenseflow/internal/core/domain"

// NotificationPayload is the inbox part of a send request.
type NotificationPayload struct {
	UserID    string                  `json:"userId"`
	Type      domain.NotificationType `json:"type"`
	Title     string                  `json:"title"`
	Message   string                  `json:"message"`
	ExpenseID *string                 `json:"expenseId,omitempty"`
}

// SendNotificationRequest is the body of POST /api/notifications/send.
type SendNotificationRequest struct {
	To           string              `json:"to"`
	Subject      string              `json:"subject"`
	HTML         string              `json:"html"`
	Notification NotificationPayload `json:"notification"`
}

// ToDomain splits the request into the inbox row and the optional email.
func (r SendNotificationRequest) ToDomain() (domain.Notification, *domain.Email) {
	n := domain.Notification{
		UserID:    r.Notification.UserID,
		Type:      r.Notification.Type,
		Title:     r.Notification.Title,
		Message:   r.Notification.Message,
		ExpenseID: r.Notification.ExpenseID,
	}
	if r.To == "" {
		return n, nil
	}
	return n, &domain.Email{To: r.To, Subject: r.Subject, HTML: r.HTML}
}

// SendNotificationResponse carries the persisted row.
type SendNotificationResponse struct {
	Message      string              `json:"message"`
	Notification domain.Notification `json:"notification"`
}

// ListNotificationsParams are the query parameters of GET /api/notifications.
type ListNotificationsParams struct {
	UnreadOnly bool `form:"unread"`
	Limit      int  `form:"limit" binding:"omitempty,min=1,max=200"`
}

// ListNotificationsResponse is the caller's inbox.
type ListNotificationsResponse struct {
	Notifications []domain.Notification `json:"notifications"`
}
