package repositories

import (
	"context"

	"github.com/SscSPs/expenseflow/internal/core/domain"
)

// AttachmentRepository persists receipt metadata. Blob contents live in storage.
type AttachmentRepository interface {
	SaveAttachment(ctx context.Context, a domain.Attachment) error
	FindAttachmentByID(ctx context.Context, attachmentID string) (*domain.Attachment, error)
	ListAttachmentsByExpense(ctx context.Context, expenseID string) ([]domain.Attachment, error)
	DeleteAttachment(ctx context.Context, attachmentID string) error
}
