package dto

import (
	"time"

	"github.com/SscSPs/expenseflow/internal/core/domain"
)

// AttachmentListResponse lists the receipts of an expense.
type AttachmentListResponse struct {
	Attachments []domain.Attachment `json:"attachments"`
}

// DownloadURLResponse carries a time-limited receipt URL.
type DownloadURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}
