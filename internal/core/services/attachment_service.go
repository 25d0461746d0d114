package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/SscSPs/expenseflow/internal/apperrors"
	"github.com/SscSPs/expenseflow/internal/core/domain"
	portsrepo "github.com/SscSPs/expenseflow/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/expenseflow/internal/core/ports/services"
	"github.com/gabriel-vasile/mimetype"
)

// DownloadURLTTL is how long a receipt download URL stays valid.
const DownloadURLTTL = 15 * time.Minute

const maxFileNameLength = 200

type attachmentService struct {
	BaseService
	attachmentRepo portsrepo.AttachmentRepository
	expenseRepo    portsrepo.ExpenseReader
	userRepo       portsrepo.UserReader
	storage        portssvc.BlobStorage
}

// NewAttachmentService creates the receipt service over the given blob storage.
func NewAttachmentService(attachmentRepo portsrepo.AttachmentRepository, expenseRepo portsrepo.ExpenseReader, userRepo portsrepo.UserReader, storage portssvc.BlobStorage) *attachmentService {
	return &attachmentService{
		BaseService:    newBaseService(),
		attachmentRepo: attachmentRepo,
		expenseRepo:    expenseRepo,
		userRepo:       userRepo,
		storage:        storage,
	}
}

var _ portssvc.AttachmentSvc = (*attachmentService)(nil)

func (s *attachmentService) Upload(ctx context.Context, identity domain.Identity, expenseID, fileName string, r io.Reader) (*domain.Attachment, error) {
	if err := s.RequireIdentity(identity); err != nil {
		return nil, err
	}
	expense, err := loadExpense(ctx, s.expenseRepo, expenseID)
	if err != nil {
		return nil, err
	}
	if err := authorizeOwnerDraft(identity, expense); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(r, domain.MaxAttachmentSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, apperrors.NewValidationError(map[string]string{"file": "File is empty"})
	}
	if len(data) > domain.MaxAttachmentSize {
		return nil, apperrors.NewValidationError(map[string]string{"file": "File exceeds the 10 MB limit"})
	}

	contentType := mimetype.Detect(data).String()
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	if !domain.AllowedAttachmentTypes[contentType] {
		return nil, apperrors.NewValidationError(map[string]string{"file": "Unsupported file type " + contentType})
	}

	attachment := domain.Attachment{
		ID:          newID(),
		ExpenseID:   expenseID,
		FileName:    sanitizeFileName(fileName),
		ContentType: contentType,
		Size:        int64(len(data)),
		UploadedBy:  identity.UserID,
		CreatedAt:   s.Now(),
	}
	attachment.ObjectKey = path.Join("expenses", expenseID, attachment.ID, attachment.FileName)

	if err := s.storage.Put(ctx, attachment.ObjectKey, contentType, bytes.NewReader(data)); err != nil {
		s.LogError(ctx, err, "Failed to store receipt", slog.String("expense_id", expenseID))
		return nil, fmt.Errorf("failed to store receipt: %w", err)
	}
	if err := s.attachmentRepo.SaveAttachment(ctx, attachment); err != nil {
		s.LogError(ctx, err, "Failed to save receipt metadata", slog.String("expense_id", expenseID))
		if delErr := s.storage.Delete(ctx, attachment.ObjectKey); delErr != nil {
			s.LogError(ctx, delErr, "Failed to remove orphaned receipt", slog.String("object_key", attachment.ObjectKey))
		}
		return nil, fmt.Errorf("failed to save receipt: %w", err)
	}

	s.LogInfo(ctx, "Receipt uploaded", slog.String("expense_id", expenseID), slog.String("attachment_id", attachment.ID))
	return &attachment, nil
}

func (s *attachmentService) List(ctx context.Context, identity domain.Identity, expenseID string) ([]domain.Attachment, error) {
	if _, err := s.viewable(ctx, identity, expenseID); err != nil {
		return nil, err
	}
	attachments, err := s.attachmentRepo.ListAttachmentsByExpense(ctx, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list receipts: %w", err)
	}
	if attachments == nil {
		attachments = []domain.Attachment{}
	}
	return attachments, nil
}

func (s *attachmentService) DownloadURL(ctx context.Context, identity domain.Identity, expenseID, attachmentID string) (string, error) {
	if _, err := s.viewable(ctx, identity, expenseID); err != nil {
		return "", err
	}
	attachment, err := s.find(ctx, expenseID, attachmentID)
	if err != nil {
		return "", err
	}
	url, err := s.storage.URL(ctx, attachment.ObjectKey, DownloadURLTTL)
	if err != nil {
		s.LogError(ctx, err, "Failed to sign receipt URL", slog.String("attachment_id", attachmentID))
		return "", fmt.Errorf("failed to create download url: %w", err)
	}
	return url, nil
}

func (s *attachmentService) Delete(ctx context.Context, identity domain.Identity, expenseID, attachmentID string) error {
	if err := s.RequireIdentity(identity); err != nil {
		return err
	}
	expense, err := loadExpense(ctx, s.expenseRepo, expenseID)
	if err != nil {
		return err
	}
	if err := authorizeOwnerDraft(identity, expense); err != nil {
		return err
	}
	attachment, err := s.find(ctx, expenseID, attachmentID)
	if err != nil {
		return err
	}
	if err := s.attachmentRepo.DeleteAttachment(ctx, attachmentID); err != nil {
		return fmt.Errorf("failed to delete receipt: %w", err)
	}
	if err := s.storage.Delete(ctx, attachment.ObjectKey); err != nil {
		s.LogError(ctx, err, "Failed to delete receipt blob", slog.String("object_key", attachment.ObjectKey))
	}
	return nil
}

func (s *attachmentService) viewable(ctx context.Context, identity domain.Identity, expenseID string) (*domain.Expense, error) {
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

// find loads an attachment and checks it belongs to expenseID.
func (s *attachmentService) find(ctx context.Context, expenseID, attachmentID string) (*domain.Attachment, error) {
	attachment, err := s.attachmentRepo.FindAttachmentByID(ctx, attachmentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("Attachment not found")
		}
		return nil, fmt.Errorf("failed to load attachment: %w", err)
	}
	if attachment.ExpenseID != expenseID {
		return nil, apperrors.NewNotFoundError("Attachment not found")
	}
	return attachment, nil
}

// sanitizeFileName keeps the base name and replaces characters unsafe in object keys.
func sanitizeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), ".")
	if out == "" {
		out = "receipt"
	}
	if len(out) > maxFileNameLength {
		out = out[len(out)-maxFileNameLength:]
	}
	return out
}
