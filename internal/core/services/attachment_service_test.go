package services_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/SscSPs/expenseflow/internal/apperrors"
	"github.com/SscSPs/expenseflow/internal/core/domain"
	"github.com/SscSPs/expenseflow/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\x0dIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func attachmentFixture() (*MockAttachmentRepository, *MockExpenseRepository, *MockUserRepository, *MockBlobStorage) {
	return new(MockAttachmentRepository), new(MockExpenseRepository), new(MockUserRepository), new(MockBlobStorage)
}

func TestAttachmentService_Upload(t *testing.T) {
	ctx := context.Background()
	attachments, expenses, users, storage := attachmentFixture()
	expenses.On("FindExpenseByID", ctx, "exp-1").Return(travelExpense("exp-1", "emp-1", domain.StatusDraft, 100), nil)
	storage.On("Put", ctx, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "expenses/exp-1/") && strings.HasSuffix(key, "/my_receipt.png")
	}), "image/png").Return(nil).Once()
	attachments.On("SaveAttachment", ctx, mock.MatchedBy(func(a domain.Attachment) bool {
		return a.ContentType == "image/png" && a.UploadedBy == "emp-1" && a.Size == int64(len(pngHeader))
	})).Return(nil).Once()

	svc := services.NewAttachmentService(attachments, expenses, users, storage)
	a, err := svc.Upload(ctx, identityOf("emp-1"), "exp-1", "../my receipt.png", bytes.NewReader(pngHeader))

	require.NoError(t, err)
	assert.Equal(t, "my_receipt.png", a.FileName)
	storage.AssertExpectations(t)
	attachments.AssertExpectations(t)
}

func TestAttachmentService_UploadRejectsUnsupportedType(t *testing.T) {
	ctx := context.Background()
	attachments, expenses, users, storage := attachmentFixture()
	expenses.On("FindExpenseByID", ctx, "exp-1").Return(travelExpense("exp-1", "emp-1", domain.StatusDraft, 100), nil)

	svc := services.NewAttachmentService(attachments, expenses, users, storage)
	_, err := svc.Upload(ctx, identityOf("emp-1"), "exp-1", "notes.txt", strings.NewReader("plain text receipt"))

	fields, ok := apperrors.FieldErrors(err)
	require.True(t, ok)
	assert.Contains(t, fields, "file")
	storage.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything)
}

func TestAttachmentService_UploadCleansUpOnMetadataFailure(t *testing.T) {
	ctx := context.Background()
	attachments, expenses, users, storage := attachmentFixture()
	expenses.On("FindExpenseByID", ctx, "exp-1").Return(travelExpense("exp-1", "emp-1", domain.StatusDraft, 100), nil)
	storage.On("Put", ctx, mock.Anything, "image/png").Return(nil).Once()
	storage.On("Delete", ctx, mock.Anything).Return(nil).Once()
	attachments.On("SaveAttachment", ctx, mock.Anything).Return(assert.AnError).Once()

	svc := services.NewAttachmentService(attachments, expenses, users, storage)
	_, err := svc.Upload(ctx, identityOf("emp-1"), "exp-1", "r.png", bytes.NewReader(pngHeader))

	assert.ErrorIs(t, err, assert.AnError)
	storage.AssertExpectations(t)
}

func TestAttachmentService_UploadRequiresOwnedDraft(t *testing.T) {
	ctx := context.Background()
	attachments, expenses, users, storage := attachmentFixture()
	expenses.On("FindExpenseByID", ctx, "exp-1").Return(travelExpense("exp-1", "emp-1", domain.StatusSubmitted, 100), nil)
	svc := services.NewAttachmentService(attachments, expenses, users, storage)

	_, err := svc.Upload(ctx, identityOf("emp-1"), "exp-1", "r.png", bytes.NewReader(pngHeader))
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	_, err = svc.Upload(ctx, identityOf("emp-2"), "exp-1", "r.png", bytes.NewReader(pngHeader))
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestAttachmentService_DownloadURL(t *testing.T) {
	ctx := context.Background()
	attachments, expenses, users, storage := attachmentFixture()
	expenses.On("FindExpenseByID", ctx, "exp-1").Return(travelExpense("exp-1", "emp-1", domain.StatusApproved, 100), nil)
	attachments.On("FindAttachmentByID", ctx, "att-1").Return(&domain.Attachment{ID: "att-1", ExpenseID: "exp-1", ObjectKey: "k"}, nil)
	attachments.On("FindAttachmentByID", ctx, "att-2").Return(&domain.Attachment{ID: "att-2", ExpenseID: "exp-9", ObjectKey: "k2"}, nil)
	storage.On("URL", ctx, "k", services.DownloadURLTTL).Return("https://signed/k", nil).Once()
	svc := services.NewAttachmentService(attachments, expenses, users, storage)

	url, err := svc.DownloadURL(ctx, identityOf("emp-1"), "exp-1", "att-1")
	require.NoError(t, err)
	assert.Equal(t, "https://signed/k", url)

	_, err = svc.DownloadURL(ctx, identityOf("emp-1"), "exp-1", "att-2")
	assert.ErrorIs(t, err, apperrors.ErrNotFound, "attachments of other expenses are hidden")
}
