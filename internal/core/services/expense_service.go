package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/expenseflow/internal/apperrors"
	"github.com/SscSPs/expenseflow/internal/core/domain"
	portsrepo "github.com/SscSPs/expenseflow/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/expenseflow/internal/core/ports/services"
	"github.com/SscSPs/expenseflow/internal/core/validation"
	"github.com/SscSPs/expenseflow/internal/utils"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// expenseService implements portssvc.ExpenseSvcFacade
type expenseService struct {
	BaseService
	expenseRepo    portsrepo.ExpenseRepositoryFacade
	userRepo       portsrepo.UserReader
	attachmentRepo portsrepo.AttachmentRepository
	storage        portssvc.BlobStorage
}

// ExpenseServiceOption configures optional dependencies of the expense service.
type ExpenseServiceOption func(*expenseService)

// WithReceiptCleanup deletes receipt blobs when a draft is removed.
func WithReceiptCleanup(attachments portsrepo.AttachmentRepository, storage portssvc.BlobStorage) ExpenseServiceOption {
	return func(s *expenseService) {
		s.attachmentRepo = attachments
		s.storage = storage
	}
}

// NewExpenseService creates the draft maintenance and read service.
func NewExpenseService(expenseRepo portsrepo.ExpenseRepositoryFacade, userRepo portsrepo.UserReader, opts ...ExpenseServiceOption) *expenseService {
	s := &expenseService{
		BaseService: newBaseService(),
		expenseRepo: expenseRepo,
		userRepo:    userRepo,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ portssvc.ExpenseSvcFacade = (*expenseService)(nil)

func (s *expenseService) GetExpense(ctx context.Context, identity domain.Identity, expenseID string) (*domain.Expense, error) {
	if err := s.RequireIdentity(identity); err != nil {
		return nil, err
	}
	expense, err := loadExpense(ctx, s.expenseRepo, expenseID)
	if err != nil {
		return nil, err
	}
	if err := authorizeView(ctx, s.userRepo, identity, expense); err != nil {
		return nil, err
	}
	return expense, nil
}

func (s *expenseService) ListExpenses(ctx context.Context, identity domain.Identity, filter domain.ExpenseFilter) ([]domain.Expense, *string, error) {
	if err := s.RequireIdentity(identity); err != nil {
		return nil, nil, err
	}
	fields := map[string]string{}
	if filter.Status != "" && !filter.Status.IsValid() {
		fields["status"] = "Status must be one of: draft, submitted, approved, rejected"
	}
	if filter.Type != "" && !filter.Type.IsValid() {
		fields["type"] = "Type must be one of: travel, maintenance, requisition"
	}
	if len(fields) > 0 {
		return nil, nil, apperrors.NewValidationError(fields)
	}

	filter.UserID = identity.UserID
	filter.Limit = clampLimit(filter.Limit)

	expenses, next, err := s.expenseRepo.ListExpenses(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list expenses", slog.String("user_id", identity.UserID))
		return nil, nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	checkStored(ctx, expenses...)
	return expenses, next, nil
}

func (s *expenseService) UpdateDraft(ctx context.Context, identity domain.Identity, expenseID string, form domain.ExpenseForm) (*domain.Expense, error) {
	if err := s.RequireIdentity(identity); err != nil {
		return nil, err
	}
	existing, err := loadExpense(ctx, s.expenseRepo, expenseID)
	if err != nil {
		return nil, err
	}
	if err := authorizeOwnerDraft(identity, existing); err != nil {
		return nil, err
	}

	record, err := domain.FormToRecord(form, identity.UserID)
	if err != nil {
		return nil, typeError(err)
	}
	if err := validation.ValidateRecord(record); err != nil {
		return nil, typeError(err)
	}

	record.ID = existing.ID
	record.ExpenseNumber = existing.ExpenseNumber
	record.Status = domain.StatusDraft
	record.CreatedAt = existing.CreatedAt
	record.UpdatedAt = s.Now()
	record.SubmittedAt, record.ApprovedAt, record.ApproverID, record.ApprovalNotes = nil, nil, nil, nil

	if err := s.expenseRepo.UpdateDraft(ctx, record); err != nil {
		if errors.Is(err, apperrors.ErrInvalidState) {
			return nil, apperrors.NewInvalidStateError("Only draft expenses can be modified")
		}
		s.LogError(ctx, err, "Failed to update draft", slog.String("expense_id", expenseID))
		return nil, fmt.Errorf("failed to update draft: %w", err)
	}
	return &record, nil
}

func (s *expenseService) DeleteDraft(ctx context.Context, identity domain.Identity, expenseID string) error {
	if err := s.RequireIdentity(identity); err != nil {
		return err
	}
	existing, err := loadExpense(ctx, s.expenseRepo, expenseID)
	if err != nil {
		return err
	}
	if err := authorizeOwnerDraft(identity, existing); err != nil {
		return err
	}

	var receipts []domain.Attachment
	if s.attachmentRepo != nil && s.storage != nil {
		receipts, err = s.attachmentRepo.ListAttachmentsByExpense(ctx, expenseID)
		if err != nil {
			s.LogError(ctx, err, "Failed to list receipts before draft delete", slog.String("expense_id", expenseID))
			receipts = nil
		}
	}

	if err := s.expenseRepo.DeleteDraft(ctx, expenseID, identity.UserID); err != nil {
		if errors.Is(err, apperrors.ErrInvalidState) {
			return apperrors.NewInvalidStateError("Only draft expenses can be modified")
		}
		s.LogError(ctx, err, "Failed to delete draft", slog.String("expense_id", expenseID))
		return fmt.Errorf("failed to delete draft: %w", err)
	}

	for _, r := range receipts {
		if err := s.storage.Delete(ctx, r.ObjectKey); err != nil {
			s.LogError(ctx, err, "Failed to delete receipt blob", slog.String("object_key", r.ObjectKey))
		}
	}
	return nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultPageSize
	}
	if limit > MaxPageSize {
		return MaxPageSize
	}
	return limit
}

// typeError turns an unknown expense type into a field error on "type".
func typeError(err error) error {
	if errors.Is(err, apperrors.ErrUnknownExpenseType) {
		return apperrors.NewValidationError(map[string]string{"type": "Type must be one of: travel, maintenance, requisition"})
	}
	return err
}

const expenseNumberAlphabet = "0123456789ABCDEFGHJKLMNPQRSTUVWXYZ"

// newExpenseNumber returns EXP-YYYYMMDD-XXXXXX for the given day.
func newExpenseNumber(day string) (string, error) {
	suffix, err := utils.GenerateSecureRandomCode(6, expenseNumberAlphabet)
	if err != nil {
		return "", fmt.Errorf("failed to generate expense number: %w", err)
	}
	return "EXP-" + day + "-" + suffix, nil
}
