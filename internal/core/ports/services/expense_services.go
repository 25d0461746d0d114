package services

import (
	"context"

	"github.com/SscSPs/expenseflow/internal/core/domain"
)

// ExpenseReaderSvc defines read operations for expenses
type ExpenseReaderSvc interface {
	// GetExpense returns an expense visible to the caller: its owner, the
	// owner's manager, finance or admin.
	GetExpense(ctx context.Context, identity domain.Identity, expenseID string) (*domain.Expense, error)

	// ListExpenses returns the caller's own expenses, newest first.
	ListExpenses(ctx context.Context, identity domain.Identity, filter domain.ExpenseFilter) ([]domain.Expense, *string, error)
}

// ExpenseWriterSvc defines draft maintenance operations
type ExpenseWriterSvc interface {
	// UpdateDraft replaces a draft owned by the caller. Used by auto-save.
	UpdateDraft(ctx context.Context, identity domain.Identity, expenseID string, form domain.ExpenseForm) (*domain.Expense, error)

	// DeleteDraft removes a draft owned by the caller.
	DeleteDraft(ctx context.Context, identity domain.Identity, expenseID string) error
}

// ExpenseSvcFacade combines all expense-related service interfaces
type ExpenseSvcFacade interface {
	ExpenseReaderSvc
	ExpenseWriterSvc
}
