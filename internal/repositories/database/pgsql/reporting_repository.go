package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/expenseflow/internal/core/domain"
	portsrepo "github.com/SscSPs/expenseflow/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// reportingRepository implements the ReportingRepository interface
type reportingRepository struct {
	BaseRepository
}

// newReportingRepository creates a new reporting repository
func newReportingRepository(db *pgxpool.Pool) portsrepo.ReportingRepository {
	return &reportingRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

// SummarizeExpenses groups every expense by status and type
func (r *reportingRepository) SummarizeExpenses(ctx context.Context) ([]domain.SummaryRow, error) {
	query := `
		SELECT
			status,
			expense_type,
			COUNT(*) AS expense_count,
			COALESCE(SUM(total_amount), 0) AS total_amount
		FROM expenses
		GROUP BY status, expense_type
		ORDER BY status, expense_type
	`

	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying expense summary: %w", err)
	}
	defer rows.Close()

	var result []domain.SummaryRow
	for rows.Next() {
		var row domain.SummaryRow
		var status, expenseType string

		if err := rows.Scan(&status, &expenseType, &row.Count, &row.Total); err != nil {
			return nil, fmt.Errorf("error scanning expense summary row: %w", err)
		}
		row.Status = domain.ExpenseStatus(status)
		row.Type = domain.ExpenseType(expenseType)
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expense summary rows: %w", err)
	}

	return result, nil
}
