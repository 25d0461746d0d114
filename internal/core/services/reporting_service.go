package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/expenseflow/internal/apperrors"
	"github.com/SscSPs/expenseflow/internal/core/domain"
	"github.com/SscSPs/expenseflow/internal/core/policy"
	portsrepo "github.com/SscSPs/expenseflow/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/expenseflow/internal/core/ports/services"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	exportSheetName = "Expenses"
	// exportMaxRows bounds a single export.
	exportMaxRows = 10_000
)

var exportHeaders = []string{"Expense Number", "Type", "Status", "Amount", "Currency", "Description", "Created At", "Submitted At", "Approved At"}

// reportingService implements the ReportingService interface
type reportingService struct {
	BaseService
	reportingRepo portsrepo.ReportingRepository
	expenseRepo   portsrepo.ExpenseReader
	userRepo      portsrepo.UserReader
	currency      string
}

// NewReportingService creates a new reporting service.
func NewReportingService(repo portsrepo.ReportingRepository, expenseRepo portsrepo.ExpenseReader, userRepo portsrepo.UserReader, currency string) *reportingService {
	if currency == "" {
		currency = domain.DefaultCurrency
	}
	return &reportingService{
		BaseService:   newBaseService(),
		reportingRepo: repo,
		expenseRepo:   expenseRepo,
		userRepo:      userRepo,
		currency:      currency,
	}
}

// Ensure reportingService implements the ReportingService interface
var _ portssvc.ReportingService = (*reportingService)(nil)

// Summary totals all expenses by status and type.
func (s *reportingService) Summary(ctx context.Context, identity domain.Identity) (*domain.ExpenseSummary, error) {
	if err := s.RequireIdentity(identity); err != nil {
		return nil, err
	}
	profile, err := loadProfile(ctx, s.userRepo, identity.UserID)
	if err != nil {
		return nil, err
	}
	if !profile.IsActive || !policy.CanReviewExpense(profile) {
		return nil, apperrors.NewForbiddenError("Insufficient role to view reports")
	}

	rows, err := s.reportingRepo.SummarizeExpenses(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to summarize expenses")
		return nil, fmt.Errorf("failed to summarize expenses: %w", err)
	}

	summary := &domain.ExpenseSummary{
		Rows:       rows,
		GrandTotal: decimal.Zero,
		Currency:   s.currency,
	}
	if summary.Rows == nil {
		summary.Rows = []domain.SummaryRow{}
	}
	for _, row := range rows {
		summary.TotalCount += row.Count
		summary.GrandTotal = summary.GrandTotal.Add(row.Total)
	}
	return summary, nil
}

// ExportExpenses renders the caller's expenses as an xlsx workbook.
func (s *reportingService) ExportExpenses(ctx context.Context, identity domain.Identity, filter domain.ExpenseFilter) ([]byte, error) {
	if err := s.RequireIdentity(identity); err != nil {
		return nil, err
	}
	filter.UserID = identity.UserID
	filter.Limit = MaxPageSize
	filter.NextToken = nil

	var expenses []domain.Expense
	for {
		page, next, err := s.expenseRepo.ListExpenses(ctx, filter)
		if err != nil {
			s.LogError(ctx, err, "Failed to load expenses for export", slog.String("user_id", identity.UserID))
			return nil, fmt.Errorf("failed to load expenses for export: %w", err)
		}
		expenses = append(expenses, page...)
		if next == nil || len(expenses) >= exportMaxRows {
			break
		}
		filter.NextToken = next
	}
	if len(expenses) > exportMaxRows {
		expenses = expenses[:exportMaxRows]
	}

	data, err := renderExpenseWorkbook(expenses)
	if err != nil {
		s.LogError(ctx, err, "Failed to render expense export", slog.String("user_id", identity.UserID))
		return nil, fmt.Errorf("failed to render expense export: %w", err)
	}
	s.LogInfo(ctx, "Exported expenses", slog.Int("count", len(expenses)))
	return data, nil
}

func renderExpenseWorkbook(expenses []domain.Expense) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheetName); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return nil, err
	}

	_ = f.SetColWidth(exportSheetName, "A", "A", 22)
	_ = f.SetColWidth(exportSheetName, "F", "F", 50)
	_ = f.SetColWidth(exportSheetName, "G", "I", 20)

	for i, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(exportSheetName, cell, header)
		_ = f.SetCellStyle(exportSheetName, cell, cell, headerStyle)
	}

	total := decimal.Zero
	for i, e := range expenses {
		row := i + 2
		values := []any{
			e.ExpenseNumber,
			string(e.Type),
			string(e.Status),
			e.TotalAmount.InexactFloat64(),
			e.Currency,
			e.Description,
			e.CreatedAt.Format("2006-01-02 15:04:05"),
			formatOptionalTime(e.SubmittedAt),
			formatOptionalTime(e.ApprovedAt),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(exportSheetName, cell, v)
		}
		total = total.Add(e.TotalAmount)
	}

	summaryRow := len(expenses) + 2
	_ = f.SetCellValue(exportSheetName, fmt.Sprintf("A%d", summaryRow), "Total")
	_ = f.SetCellValue(exportSheetName, fmt.Sprintf("D%d", summaryRow), total.InexactFloat64())
	_ = f.SetCellValue(exportSheetName, fmt.Sprintf("F%d", summaryRow), fmt.Sprintf("%d expenses", len(expenses)))

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}
