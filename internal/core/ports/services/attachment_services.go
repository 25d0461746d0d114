package services

import (
	"context"
	"io"

	"github.com/SscSPs/expenseflow/internal/core/domain"
)

// AttachmentSvc manages receipts of an expense.
type AttachmentSvc interface {
	// Upload stores a receipt on a draft owned by the caller. The content type is sniffed.
	Upload(ctx context.Context, identity domain.Identity, expenseID, fileName string, r io.Reader) (*domain.Attachment, error)
	List(ctx context.Context, identity domain.Identity, expenseID string) ([]domain.Attachment, error)
	// DownloadURL returns a time-limited URL of the receipt.
	DownloadURL(ctx context.Context, identity domain.Identity, expenseID, attachmentID string) (string, error)
	Delete(ctx context.Context, identity domain.Identity, expenseID, attachmentID string) error
}
