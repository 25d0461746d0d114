package repositories

import (
	"context"

	"github.com/SscSPs/expenseflow/internal/core/domain"
)

// ApprovalRepository stores approval history and append-only notes.
// Decisions themselves are written through ExpenseWriter.RecordDecision.
type ApprovalRepository interface {
	ListApprovalsByExpense(ctx context.Context, expenseID string) ([]domain.Approval, error)
	SaveNote(ctx context.Context, note domain.ApprovalNote) error
	ListNotesByExpense(ctx context.Context, expenseID string) ([]domain.ApprovalNote, error)
}
