package services

import (
	"context"

	"github.com/SscSPs/expenseflow/internal/core/domain"
)

// SubmissionSvc drives an expense through draft -> submitted -> approved|rejected.
type SubmissionSvc interface {
	// CreateDraft validates and persists a new draft owned by the caller.
	CreateDraft(ctx context.Context, identity domain.Identity, form domain.ExpenseForm) (*domain.Expense, error)

	// Submit moves the caller's draft to submitted and self-approves it when
	// the caller's role and limit allow.
	Submit(ctx context.Context, identity domain.Identity, expenseID string) (*domain.Expense, error)

	// Decide approves or rejects a submitted expense.
	Decide(ctx context.Context, identity domain.Identity, expenseID string, action domain.ApprovalAction, notes *string) (*domain.Expense, error)

	// AppendNote adds a remark to a decided expense.
	AppendNote(ctx context.Context, identity domain.Identity, expenseID, note string) (*domain.ApprovalNote, error)

	// ListPendingApprovals returns the queue of submitted expenses the caller may decide.
	ListPendingApprovals(ctx context.Context, identity domain.Identity) ([]domain.Expense, error)

	// ListApprovals returns the approval history of an expense visible to the caller.
	ListApprovals(ctx context.Context, identity domain.Identity, expenseID string) (*domain.ApprovalHistory, error)
}
