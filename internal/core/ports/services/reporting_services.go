package services

import (
	"context"

	"github.com/SscSPs/expenseflow/internal/core/domain"
)

// ReportingService defines operations for generating expense reports
type ReportingService interface {
	// Summary totals all expenses by status and type. Finance or higher.
	Summary(ctx context.Context, identity domain.Identity) (*domain.ExpenseSummary, error)

	// ExportExpenses renders the caller's expenses as an xlsx workbook.
	ExportExpenses(ctx context.Context, identity domain.Identity, filter domain.ExpenseFilter) ([]byte, error)
}
