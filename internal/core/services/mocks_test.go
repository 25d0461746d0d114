package services_test

import (
	"context"
	"io"
	"time"

	"github.com/SscSPs/expenseflow/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

// --- MockUserRepository ---
type MockUserRepository struct {
	mock.Mock
	FindUserByIDFn func(ctx context.Context, userID string) (*domain.UserProfile, error)
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.UserProfile, error) {
	if m.FindUserByIDFn != nil {
		return m.FindUserByIDFn(ctx, userID)
	}
	args := m.Called(ctx, userID)
	var user *domain.UserProfile
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.UserProfile)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.UserProfile, error) {
	args := m.Called(ctx, email)
	var user *domain.UserProfile
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.UserProfile)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) FindUserByProviderDetails(ctx context.Context, provider domain.AuthProvider, providerUserID string) (*domain.UserProfile, error) {
	args := m.Called(ctx, provider, providerUserID)
	var user *domain.UserProfile
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.UserProfile)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.UserProfile) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, user domain.UserProfile) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateRefreshToken(ctx context.Context, userID string, refreshTokenHash string, refreshTokenExpiryTime time.Time) error {
	args := m.Called(ctx, userID, refreshTokenHash, refreshTokenExpiryTime)
	return args.Error(0)
}

func (m *MockUserRepository) ClearRefreshToken(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// --- MockExpenseRepository ---
type MockExpenseRepository struct {
	mock.Mock
	SaveExpenseFn    func(ctx context.Context, expense domain.Expense) error
	RecordDecisionFn func(ctx context.Context, decision domain.Decision) (*domain.Expense, *domain.Approval, error)
}

func (m *MockExpenseRepository) FindExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error) {
	args := m.Called(ctx, expenseID)
	var e *domain.Expense
	if args.Get(0) != nil {
		e = args.Get(0).(*domain.Expense)
	}
	return e, args.Error(1)
}

func (m *MockExpenseRepository) ListExpenses(ctx context.Context, filter domain.ExpenseFilter) ([]domain.Expense, *string, error) {
	args := m.Called(ctx, filter)
	var list []domain.Expense
	if args.Get(0) != nil {
		list = args.Get(0).([]domain.Expense)
	}
	var next *string
	if args.Get(1) != nil {
		next = args.Get(1).(*string)
	}
	return list, next, args.Error(2)
}

func (m *MockExpenseRepository) ListSubmittedByManager(ctx context.Context, managerID string) ([]domain.Expense, error) {
	args := m.Called(ctx, managerID)
	var list []domain.Expense
	if args.Get(0) != nil {
		list = args.Get(0).([]domain.Expense)
	}
	return list, args.Error(1)
}

func (m *MockExpenseRepository) ListAllSubmitted(ctx context.Context) ([]domain.Expense, error) {
	args := m.Called(ctx)
	var list []domain.Expense
	if args.Get(0) != nil {
		list = args.Get(0).([]domain.Expense)
	}
	return list, args.Error(1)
}

func (m *MockExpenseRepository) SaveExpense(ctx context.Context, expense domain.Expense) error {
	if m.SaveExpenseFn != nil {
		return m.SaveExpenseFn(ctx, expense)
	}
	args := m.Called(ctx, expense)
	return args.Error(0)
}

func (m *MockExpenseRepository) UpdateDraft(ctx context.Context, expense domain.Expense) error {
	args := m.Called(ctx, expense)
	return args.Error(0)
}

func (m *MockExpenseRepository) DeleteDraft(ctx context.Context, expenseID, userID string) error {
	args := m.Called(ctx, expenseID, userID)
	return args.Error(0)
}

func (m *MockExpenseRepository) MarkSubmitted(ctx context.Context, expenseID string, submittedAt time.Time) (*domain.Expense, error) {
	args := m.Called(ctx, expenseID, submittedAt)
	var e *domain.Expense
	if args.Get(0) != nil {
		e = args.Get(0).(*domain.Expense)
	}
	return e, args.Error(1)
}

func (m *MockExpenseRepository) RecordDecision(ctx context.Context, decision domain.Decision) (*domain.Expense, *domain.Approval, error) {
	if m.RecordDecisionFn != nil {
		return m.RecordDecisionFn(ctx, decision)
	}
	args := m.Called(ctx, decision)
	var e *domain.Expense
	if args.Get(0) != nil {
		e = args.Get(0).(*domain.Expense)
	}
	var a *domain.Approval
	if args.Get(1) != nil {
		a = args.Get(1).(*domain.Approval)
	}
	return e, a, args.Error(2)
}

// --- MockApprovalRepository ---
type MockApprovalRepository struct {
	mock.Mock
}

func (m *MockApprovalRepository) ListApprovalsByExpense(ctx context.Context, expenseID string) ([]domain.Approval, error) {
	args := m.Called(ctx, expenseID)
	var list []domain.Approval
	if args.Get(0) != nil {
		list = args.Get(0).([]domain.Approval)
	}
	return list, args.Error(1)
}

func (m *MockApprovalRepository) SaveNote(ctx context.Context, note domain.ApprovalNote) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}

func (m *MockApprovalRepository) ListNotesByExpense(ctx context.Context, expenseID string) ([]domain.ApprovalNote, error) {
	args := m.Called(ctx, expenseID)
	var list []domain.ApprovalNote
	if args.Get(0) != nil {
		list = args.Get(0).([]domain.ApprovalNote)
	}
	return list, args.Error(1)
}

// --- MockNotificationRepository ---
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) SaveNotification(ctx context.Context, n domain.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationRepository) ListNotificationsByUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]domain.Notification, error) {
	args := m.Called(ctx, userID, unreadOnly, limit)
	var list []domain.Notification
	if args.Get(0) != nil {
		list = args.Get(0).([]domain.Notification)
	}
	return list, args.Error(1)
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, notificationID, userID string) error {
	args := m.Called(ctx, notificationID, userID)
	return args.Error(0)
}

// --- MockAttachmentRepository ---
type MockAttachmentRepository struct {
	mock.Mock
}

func (m *MockAttachmentRepository) SaveAttachment(ctx context.Context, a domain.Attachment) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAttachmentRepository) FindAttachmentByID(ctx context.Context, attachmentID string) (*domain.Attachment, error) {
	args := m.Called(ctx, attachmentID)
	var a *domain.Attachment
	if args.Get(0) != nil {
		a = args.Get(0).(*domain.Attachment)
	}
	return a, args.Error(1)
}

func (m *MockAttachmentRepository) ListAttachmentsByExpense(ctx context.Context, expenseID string) ([]domain.Attachment, error) {
	args := m.Called(ctx, expenseID)
	var list []domain.Attachment
	if args.Get(0) != nil {
		list = args.Get(0).([]domain.Attachment)
	}
	return list, args.Error(1)
}

func (m *MockAttachmentRepository) DeleteAttachment(ctx context.Context, attachmentID string) error {
	args := m.Called(ctx, attachmentID)
	return args.Error(0)
}

// --- MockAPITokenRepository ---
type MockAPITokenRepository struct {
	mock.Mock
	CreateFn func(ctx context.Context, token *domain.APIToken) error
}

func (m *MockAPITokenRepository) Create(ctx context.Context, token *domain.APIToken) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, token)
	}
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockAPITokenRepository) FindByID(ctx context.Context, id string) (*domain.APIToken, error) {
	args := m.Called(ctx, id)
	var t *domain.APIToken
	if args.Get(0) != nil {
		t = args.Get(0).(*domain.APIToken)
	}
	return t, args.Error(1)
}

func (m *MockAPITokenRepository) FindByUserID(ctx context.Context, userID string) ([]domain.APIToken, error) {
	args := m.Called(ctx, userID)
	var list []domain.APIToken
	if args.Get(0) != nil {
		list = args.Get(0).([]domain.APIToken)
	}
	return list, args.Error(1)
}

func (m *MockAPITokenRepository) TouchLastUsed(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockAPITokenRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAPITokenRepository) DeleteByUserID(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockAPITokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

// --- MockReportingRepository ---
type MockReportingRepository struct {
	mock.Mock
}

func (m *MockReportingRepository) SummarizeExpenses(ctx context.Context) ([]domain.SummaryRow, error) {
	args := m.Called(ctx)
	var rows []domain.SummaryRow
	if args.Get(0) != nil {
		rows = args.Get(0).([]domain.SummaryRow)
	}
	return rows, args.Error(1)
}

// --- MockNotifier ---
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Send(ctx context.Context, identity domain.Identity, n domain.Notification, email *domain.Email) (*domain.Notification, error) {
	args := m.Called(ctx, identity, n, email)
	var out *domain.Notification
	if args.Get(0) != nil {
		out = args.Get(0).(*domain.Notification)
	}
	return out, args.Error(1)
}

func (m *MockNotifier) NotifyUser(ctx context.Context, n domain.Notification, email *domain.Email) {
	m.Called(ctx, n, email)
}

func (m *MockNotifier) ListNotifications(ctx context.Context, identity domain.Identity, unreadOnly bool, limit int) ([]domain.Notification, error) {
	args := m.Called(ctx, identity, unreadOnly, limit)
	return args.Get(0).([]domain.Notification), args.Error(1)
}

func (m *MockNotifier) MarkRead(ctx context.Context, identity domain.Identity, notificationID string) error {
	args := m.Called(ctx, identity, notificationID)
	return args.Error(0)
}

// --- MockMailer ---
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, email domain.Email) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

// --- MockBlobStorage ---
type MockBlobStorage struct {
	mock.Mock
}

func (m *MockBlobStorage) Put(ctx context.Context, key, contentType string, r io.Reader) error {
	_, _ = io.Copy(io.Discard, r)
	args := m.Called(ctx, key, contentType)
	return args.Error(0)
}

func (m *MockBlobStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockBlobStorage) URL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Error(1)
}

// --- MockTracker ---
type MockTracker struct {
	mock.Mock
}

func (m *MockTracker) Track(distinctID, event string, properties map[string]any) {
	m.Called(distinctID, event, properties)
}
