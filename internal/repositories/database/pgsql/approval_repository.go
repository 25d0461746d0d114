package pgsql

import (
	"context"

	"github.com/SscSPs/expenseflow/internal/apperrors"
	"github.com/SscSPs/expenseflow/internal/core/domain"
	portsrepo "github.com/SscSPs/expenseflow/internal/core/ports/repositories"
	"github.com/SscSPs/expenseflow/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxApprovalRepository struct {
	BaseRepository
}

func newPgxApprovalRepository(db *pgxpool.Pool) portsrepo.ApprovalRepository {
	return &PgxApprovalRepository{BaseRepository: BaseRepository{Pool: db}}
}

var _ portsrepo.ApprovalRepository = (*PgxApprovalRepository)(nil)

func (r *PgxApprovalRepository) ListApprovalsByExpense(ctx context.Context, expenseID string) ([]domain.Approval, error) {
	query := `
		SELECT approval_id, expense_id, approver_id, status, comment, is_self_approval, created_at
		FROM expense_approvals
		WHERE expense_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.Pool.Query(ctx, query, expenseID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query approvals for expense "+expenseID, err)
	}
	defer rows.Close()

	approvals := []domain.Approval{}
	for rows.Next() {
		var m models.Approval
		if err := rows.Scan(&m.ApprovalID, &m.ExpenseID, &m.ApproverID, &m.Status, &m.Comment, &m.IsSelfApproval, &m.CreatedAt); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan approval row", err)
		}
		approvals = append(approvals, domain.Approval{
			ID:             m.ApprovalID,
			ExpenseID:      m.ExpenseID,
			ApproverID:     m.ApproverID,
			Status:         domain.ExpenseStatus(m.Status),
			Comment:        m.Comment,
			IsSelfApproval: m.IsSelfApproval,
			CreatedAt:      m.CreatedAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating approval rows", err)
	}
	return approvals, nil
}

func (r *PgxApprovalRepository) SaveNote(ctx context.Context, note domain.ApprovalNote) error {
	query := `
		INSERT INTO approval_notes (note_id, expense_id, author_id, note, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.Pool.Exec(ctx, query, note.ID, note.ExpenseID, note.AuthorID, note.Note, note.CreatedAt); err != nil {
		return apperrors.NewAppError(500, "failed to save approval note", err)
	}
	return nil
}

func (r *PgxApprovalRepository) ListNotesByExpense(ctx context.Context, expenseID string) ([]domain.ApprovalNote, error) {
	query := `
		SELECT note_id, expense_id, author_id, note, created_at
		FROM approval_notes
		WHERE expense_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.Pool.Query(ctx, query, expenseID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query notes for expense "+expenseID, err)
	}
	defer rows.Close()

	notes := []domain.ApprovalNote{}
	for rows.Next() {
		var n domain.ApprovalNote
		if err := rows.Scan(&n.ID, &n.ExpenseID, &n.AuthorID, &n.Note, &n.CreatedAt); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan note row", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating note rows", err)
	}
	return notes, nil
}
