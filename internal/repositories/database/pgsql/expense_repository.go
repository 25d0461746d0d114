package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/SscSPs/expenseflow/internal/apperrors"
	"github.com/SscSPs/expenseflow/internal/core/domain"
	portsrepo "github.com/SscSPs/expenseflow/internal/core/ports/repositories"
	"github.com/SscSPs/expenseflow/internal/models"
	"github.com/SscSPs/expenseflow/internal/utils/pagination"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	defaultExpensePageSize = 20

	selectExpenseFields = `
		e.expense_id, e.expense_number, e.user_id, e.status, e.expense_type,
		e.total_amount, e.currency, e.description, e.business_purpose, e.details,
		e.created_at, e.updated_at, e.submitted_at, e.approved_at, e.approver_id, e.approval_notes
	`

	// returningExpenseFields matches selectExpenseFields for statements without the alias.
	returningExpenseFields = `
		expense_id, expense_number, user_id, status, expense_type,
		total_amount, currency, description, business_purpose, details,
		created_at, updated_at, submitted_at, approved_at, approver_id, approval_notes
	`

	insertExpenseQuery = `
		INSERT INTO expenses (
			expense_id, expense_number, user_id, status, expense_type,
			total_amount, currency, description, business_purpose, details,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	updateDraftQuery = `
		UPDATE expenses SET
			expense_type = $3,
			total_amount = $4,
			currency = $5,
			description = $6,
			business_purpose = $7,
			details = $8,
			updated_at = $9
		WHERE expense_id = $1 AND user_id = $2 AND status = 'draft'
	`

	deleteDraftQuery = `
		DELETE FROM expenses
		WHERE expense_id = $1 AND user_id = $2 AND status = 'draft'
	`

	markSubmittedQuery = `
		UPDATE expenses
		SET status = 'submitted', submitted_at = $2, updated_at = $2
		WHERE expense_id = $1 AND status = 'draft'
		RETURNING ` + returningExpenseFields

	recordDecisionQuery = `
		UPDATE expenses
		SET status = $2, approver_id = $3, approval_notes = $4, approved_at = $5, updated_at = $5
		WHERE expense_id = $1 AND status = 'submitted'
		RETURNING ` + returningExpenseFields

	insertApprovalQuery = `
		INSERT INTO expense_approvals (
			approval_id, expense_id, approver_id, status, comment, is_self_approval, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	expenseExistsQuery = `SELECT EXISTS (SELECT 1 FROM expenses WHERE expense_id = $1)`
)

type PgxExpenseRepository struct {
	BaseRepository
}

func newPgxExpenseRepository(db *pgxpool.Pool) portsrepo.ExpenseRepositoryFacade {
	return &PgxExpenseRepository{BaseRepository: BaseRepository{Pool: db}}
}

var _ portsrepo.ExpenseRepositoryFacade = (*PgxExpenseRepository)(nil)

func toModelExpense(d domain.Expense) (models.Expense, error) {
	details, err := domain.EncodeDetails(d.Details)
	if err != nil {
		return models.Expense{}, err
	}
	return models.Expense{
		ExpenseID:       d.ID,
		ExpenseNumber:   d.ExpenseNumber,
		UserID:          d.UserID,
		Status:          string(d.Status),
		Type:            string(d.Type),
		TotalAmount:     d.TotalAmount,
		Currency:        d.Currency,
		Description:     d.Description,
		BusinessPurpose: d.BusinessPurpose,
		Details:         details,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
		SubmittedAt:     d.SubmittedAt,
		ApprovedAt:      d.ApprovedAt,
		ApproverID:      d.ApproverID,
		ApprovalNotes:   d.ApprovalNotes,
	}, nil
}

func toDomainExpense(m models.Expense) (domain.Expense, error) {
	expenseType := domain.ExpenseType(m.Type)
	details, err := domain.DecodeDetails(expenseType, m.Details)
	if err != nil {
		return domain.Expense{}, fmt.Errorf("expense %s: %w", m.ExpenseID, err)
	}
	return domain.Expense{
		ID:              m.ExpenseID,
		ExpenseNumber:   m.ExpenseNumber,
		UserID:          m.UserID,
		Status:          domain.ExpenseStatus(m.Status),
		Type:            expenseType,
		TotalAmount:     m.TotalAmount,
		Currency:        m.Currency,
		Description:     m.Description,
		BusinessPurpose: m.BusinessPurpose,
		Details:         details,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
		SubmittedAt:     m.SubmittedAt,
		ApprovedAt:      m.ApprovedAt,
		ApproverID:      m.ApproverID,
		ApprovalNotes:   m.ApprovalNotes,
	}, nil
}

func scanExpense(row pgx.Row) (*domain.Expense, error) {
	var m models.Expense
	err := row.Scan(
		&m.ExpenseID,
		&m.ExpenseNumber,
		&m.UserID,
		&m.Status,
		&m.Type,
		&m.TotalAmount,
		&m.Currency,
		&m.Description,
		&m.BusinessPurpose,
		&m.Details,
		&m.CreatedAt,
		&m.UpdatedAt,
		&m.SubmittedAt,
		&m.ApprovedAt,
		&m.ApproverID,
		&m.ApprovalNotes,
	)
	if err != nil {
		return nil, err
	}
	expense, err := toDomainExpense(m)
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

func collectExpenses(rows pgx.Rows) ([]domain.Expense, error) {
	defer rows.Close()
	expenses := []domain.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan expense row", err)
		}
		expenses = append(expenses, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating expense rows", err)
	}
	return expenses, nil
}

// FindExpenseByID retrieves an expense. Returns apperrors.ErrNotFound when absent.
func (r *PgxExpenseRepository) FindExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error) {
	query := `SELECT ` + selectExpenseFields + ` FROM expenses e WHERE e.expense_id = $1`
	expense, err := scanExpense(r.Pool.QueryRow(ctx, query, expenseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find expense "+expenseID, err)
	}
	return expense, nil
}

// ListExpenses retrieves a page of expenses using keyset pagination on (created_at, expense_id).
func (r *PgxExpenseRepository) ListExpenses(ctx context.Context, filter domain.ExpenseFilter) ([]domain.Expense, *string, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultExpensePageSize
	}

	var conditions []string
	var args []any
	addCondition := func(clause string, value any) {
		args = append(args, value)
		conditions = append(conditions, strings.ReplaceAll(clause, "?", "$"+strconv.Itoa(len(args))))
	}

	if filter.UserID != "" {
		addCondition("e.user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		addCondition("e.status = ?", string(filter.Status))
	}
	if filter.Type != "" {
		addCondition("e.expense_type = ?", string(filter.Type))
	}
	if filter.NextToken != nil && *filter.NextToken != "" {
		lastCreatedAt, lastID, err := pagination.DecodeToken(*filter.NextToken)
		if err != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", err)
		}
		args = append(args, lastCreatedAt, lastID)
		conditions = append(conditions, fmt.Sprintf("(e.created_at, e.expense_id) < ($%d, $%d)", len(args)-1, len(args)))
	}

	query := `SELECT ` + selectExpenseFields + ` FROM expenses e`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	// We fetch one extra row to determine if there is a next page.
	args = append(args, limit+1)
	query += " ORDER BY e.created_at DESC, e.expense_id DESC LIMIT $" + strconv.Itoa(len(args))

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query expenses", err)
	}
	expenses, err := collectExpenses(rows)
	if err != nil {
		return nil, nil, err
	}

	var nextToken *string
	if len(expenses) > limit {
		last := expenses[limit-1]
		token := pagination.EncodeToken(last.CreatedAt, last.ID)
		nextToken = &token
		expenses = expenses[:limit]
	}
	return expenses, nextToken, nil
}

// ListSubmittedByManager returns submitted expenses whose owners report to managerID.
func (r *PgxExpenseRepository) ListSubmittedByManager(ctx context.Context, managerID string) ([]domain.Expense, error) {
	query := `
		SELECT ` + selectExpenseFields + `
		FROM expenses e
		JOIN users u ON u.user_id = e.user_id
		WHERE e.status = 'submitted' AND u.manager_id = $1
		ORDER BY e.submitted_at ASC, e.expense_id ASC
	`
	rows, err := r.Pool.Query(ctx, query, managerID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query pending expenses for manager "+managerID, err)
	}
	return collectExpenses(rows)
}

// ListAllSubmitted returns every submitted expense, oldest submission first.
func (r *PgxExpenseRepository) ListAllSubmitted(ctx context.Context) ([]domain.Expense, error) {
	query := `
		SELECT ` + selectExpenseFields + `
		FROM expenses e
		WHERE e.status = 'submitted'
		ORDER BY e.submitted_at ASC, e.expense_id ASC
	`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query pending expenses", err)
	}
	return collectExpenses(rows)
}

func (r *PgxExpenseRepository) SaveExpense(ctx context.Context, expense domain.Expense) error {
	m, err := toModelExpense(expense)
	if err != nil {
		return err
	}
	_, err = r.Pool.Exec(ctx, insertExpenseQuery,
		m.ExpenseID,
		m.ExpenseNumber,
		m.UserID,
		m.Status,
		m.Type,
		m.TotalAmount,
		m.Currency,
		m.Description,
		m.BusinessPurpose,
		m.Details,
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("expense number %s: %w", m.ExpenseNumber, apperrors.ErrDuplicate)
		}
		return apperrors.NewAppError(500, "failed to save expense", err)
	}
	return nil
}

func (r *PgxExpenseRepository) UpdateDraft(ctx context.Context, expense domain.Expense) error {
	m, err := toModelExpense(expense)
	if err != nil {
		return err
	}
	cmdTag, err := r.Pool.Exec(ctx, updateDraftQuery,
		m.ExpenseID,
		m.UserID,
		m.Type,
		m.TotalAmount,
		m.Currency,
		m.Description,
		m.BusinessPurpose,
		m.Details,
		m.UpdatedAt,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update expense "+m.ExpenseID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return r.conditionFailed(ctx, m.ExpenseID)
	}
	return nil
}

func (r *PgxExpenseRepository) DeleteDraft(ctx context.Context, expenseID, userID string) error {
	cmdTag, err := r.Pool.Exec(ctx, deleteDraftQuery, expenseID, userID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete expense "+expenseID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return r.conditionFailed(ctx, expenseID)
	}
	return nil
}

func (r *PgxExpenseRepository) MarkSubmitted(ctx context.Context, expenseID string, submittedAt time.Time) (*domain.Expense, error) {
	expense, err := scanExpense(r.Pool.QueryRow(ctx, markSubmittedQuery, expenseID, submittedAt))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.conditionFailed(ctx, expenseID)
		}
		return nil, apperrors.NewAppError(500, "failed to submit expense "+expenseID, err)
	}
	return expense, nil
}

// RecordDecision updates the expense and inserts the approval row in one transaction.
func (r *PgxExpenseRepository) RecordDecision(ctx context.Context, decision domain.Decision) (*domain.Expense, *domain.Approval, error) {
	var expense *domain.Expense
	approval := &domain.Approval{
		ID:             uuid.NewString(),
		ExpenseID:      decision.ExpenseID,
		ApproverID:     decision.ApproverID,
		Status:         decision.Status,
		Comment:        decision.Notes,
		IsSelfApproval: decision.IsSelfApproval,
		CreatedAt:      decision.At,
	}

	err := r.inTx(ctx, func(tx pgx.Tx) error {
		var err error
		expense, err = scanExpense(tx.QueryRow(ctx, recordDecisionQuery,
			decision.ExpenseID,
			string(decision.Status),
			decision.ApproverID,
			decision.Notes,
			decision.At,
		))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return errConditionFailed
			}
			return apperrors.NewAppError(500, "failed to record decision for expense "+decision.ExpenseID, err)
		}

		if _, err := tx.Exec(ctx, insertApprovalQuery,
			approval.ID,
			approval.ExpenseID,
			approval.ApproverID,
			string(approval.Status),
			approval.Comment,
			approval.IsSelfApproval,
			approval.CreatedAt,
		); err != nil {
			return apperrors.NewAppError(500, "failed to insert approval for expense "+decision.ExpenseID, err)
		}
		return nil
	})
	if errors.Is(err, errConditionFailed) {
		// the transaction is closed; classify with a fresh read
		return nil, nil, r.conditionFailed(ctx, decision.ExpenseID)
	}
	if err != nil {
		return nil, nil, err
	}
	return expense, approval, nil
}

// errConditionFailed marks a conditional write that matched no rows.
var errConditionFailed = errors.New("condition failed")

// conditionFailed distinguishes a missing expense from one in the wrong state
// after a conditional write matched no rows.
func (r *PgxExpenseRepository) conditionFailed(ctx context.Context, expenseID string) error {
	var exists bool
	if err := r.Pool.QueryRow(ctx, expenseExistsQuery, expenseID).Scan(&exists); err != nil {
		return apperrors.NewAppError(500, "failed to check expense "+expenseID, err)
	}
	if !exists {
		return apperrors.ErrNotFound
	}
	return fmt.Errorf("expense %s: %w", expenseID, apperrors.ErrInvalidState)
}
