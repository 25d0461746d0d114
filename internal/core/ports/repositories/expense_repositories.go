package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/expenseflow/internal/core/domain"
)

// ExpenseReader defines read operations for expenses
type ExpenseReader interface {
	// FindExpenseByID retrieves an expense. Returns apperrors.ErrNotFound when absent.
	FindExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error)

	// ListExpenses returns a page of expenses matching the filter, newest first,
	// and the token of the next page (nil on the last page).
	ListExpenses(ctx context.Context, filter domain.ExpenseFilter) ([]domain.Expense, *string, error)

	// ListSubmittedByManager returns submitted expenses whose owners report to managerID.
	ListSubmittedByManager(ctx context.Context, managerID string) ([]domain.Expense, error)

	// ListAllSubmitted returns every submitted expense.
	ListAllSubmitted(ctx context.Context) ([]domain.Expense, error)
}

// ExpenseWriter defines write operations for expenses. Every status-sensitive
// write is conditional on the current status and fails with
// apperrors.ErrInvalidState when the condition does not hold.
type ExpenseWriter interface {
	// SaveExpense inserts a new draft.
	SaveExpense(ctx context.Context, expense domain.Expense) error

	// UpdateDraft replaces the editable fields of a draft owned by expense.UserID.
	UpdateDraft(ctx context.Context, expense domain.Expense) error

	// DeleteDraft removes a draft owned by userID.
	DeleteDraft(ctx context.Context, expenseID, userID string) error

	// MarkSubmitted moves a draft to submitted.
	MarkSubmitted(ctx context.Context, expenseID string, submittedAt time.Time) (*domain.Expense, error)

	// RecordDecision moves a submitted expense to the decided status and
	// inserts the matching approval row in one transaction.
	RecordDecision(ctx context.Context, decision domain.Decision) (*domain.Expense, *domain.Approval, error)
}

// ExpenseRepositoryFacade combines all expense-related repository interfaces
type ExpenseRepositoryFacade interface {
	ExpenseReader
	ExpenseWriter
}
