package pgsql

import (
	"context"
	"errors"

	"github.com/SscSPs/expenseflow/internal/apperrors"
	"github.com/SscSPs/expenseflow/internal/core/domain"
	portsrepo "github.com/SscSPs/expenseflow/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const selectAttachmentFields = `
	attachment_id, expense_id, object_key, file_name, content_type, size_bytes, uploaded_by, created_at
`

type PgxAttachmentRepository struct {
	BaseRepository
}

func newPgxAttachmentRepository(db *pgxpool.Pool) portsrepo.AttachmentRepository {
	return &PgxAttachmentRepository{BaseRepository: BaseRepository{Pool: db}}
}

var _ portsrepo.AttachmentRepository = (*PgxAttachmentRepository)(nil)

func scanAttachment(row pgx.Row) (*domain.Attachment, error) {
	var a domain.Attachment
	if err := row.Scan(&a.ID, &a.ExpenseID, &a.ObjectKey, &a.FileName, &a.ContentType, &a.Size, &a.UploadedBy, &a.CreatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *PgxAttachmentRepository) SaveAttachment(ctx context.Context, a domain.Attachment) error {
	query := `
		INSERT INTO expense_attachments (` + selectAttachmentFields + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.Pool.Exec(ctx, query, a.ID, a.ExpenseID, a.ObjectKey, a.FileName, a.ContentType, a.Size, a.UploadedBy, a.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrDuplicate
		}
		return apperrors.NewAppError(500, "failed to save attachment", err)
	}
	return nil
}

func (r *PgxAttachmentRepository) FindAttachmentByID(ctx context.Context, attachmentID string) (*domain.Attachment, error) {
	query := `SELECT ` + selectAttachmentFields + ` FROM expense_attachments WHERE attachment_id = $1`
	a, err := scanAttachment(r.Pool.QueryRow(ctx, query, attachmentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find attachment "+attachmentID, err)
	}
	return a, nil
}

func (r *PgxAttachmentRepository) ListAttachmentsByExpense(ctx context.Context, expenseID string) ([]domain.Attachment, error) {
	query := `
		SELECT ` + selectAttachmentFields + `
		FROM expense_attachments
		WHERE expense_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.Pool.Query(ctx, query, expenseID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query attachments for expense "+expenseID, err)
	}
	defer rows.Close()

	attachments := []domain.Attachment{}
	for rows.Next() {
		a, err := scanAttachment(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan attachment row", err)
		}
		attachments = append(attachments, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating attachment rows", err)
	}
	return attachments, nil
}

func (r *PgxAttachmentRepository) DeleteAttachment(ctx context.Context, attachmentID string) error {
	cmdTag, err := r.Pool.Exec(ctx, `DELETE FROM expense_attachments WHERE attachment_id = $1`, attachmentID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete attachment "+attachmentID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
