package domain

import "time"

// NotificationType classifies inbox entries.
type NotificationType string

const (
	NotificationExpenseSubmitted NotificationType = "expense_submitted"
	NotificationExpenseApproved  NotificationType = "expense_approved"
	NotificationExpenseRejected  NotificationType = "expense_rejected"
	NotificationGeneral          NotificationType = "general"
)

// Notification is an in-app message for a user, optionally about an expense.
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"userId"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	ExpenseID *string          `json:"expenseId,omitempty"`
	IsRead    bool             `json:"isRead"`
	CreatedAt time.Time        `json:"createdAt"`
}

// Email is an outbound message. HTML is the body.
type Email struct {
	To      string
	Subject string
	HTML    string
}
