package repositories

import (
	"context"

	"github.com/SscSPs/expenseflow/internal/core/domain"
)

// ReportingRepository defines aggregate queries over expenses
type ReportingRepository interface {
	// SummarizeExpenses groups every expense by status and type.
	SummarizeExpenses(ctx context.Context) ([]domain.SummaryRow, error)
}
