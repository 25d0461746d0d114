package handlers_test

import (
	"context"
	"time"

	"github.com/SscSPs/expenseflow/internal/core/domain"
	portssvc "github.com/SscSPs/expenseflow/internal/core/ports/services"
	"github.com/stretchr/testify/mock"
)

// --- Mock ExpenseService ---
type MockExpenseService struct {
	mock.Mock
}

func (m *MockExpenseService) GetExpense(ctx context.Context, identity domain.Identity, expenseID string) (*domain.Expense, error) {
	args := m.Called(ctx, identity, expenseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Expense), args.Error(1)
}

func (m *MockExpenseService) ListExpenses(ctx context.Context, identity domain.Identity, filter domain.ExpenseFilter) ([]domain.Expense, *string, error) {
	args := m.Called(ctx, identity, filter)
	var next *string
	if v := args.Get(1); v != nil {
		next = v.(*string)
	}
	if args.Get(0) == nil {
		return nil, next, args.Error(2)
	}
	return args.Get(0).([]domain.Expense), next, args.Error(2)
}

func (m *MockExpenseService) UpdateDraft(ctx context.Context, identity domain.Identity, expenseID string, form domain.ExpenseForm) (*domain.Expense, error) {
	args := m.Called(ctx, identity, expenseID, form)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Expense), args.Error(1)
}

func (m *MockExpenseService) DeleteDraft(ctx context.Context, identity domain.Identity, expenseID string) error {
	args := m.Called(ctx, identity, expenseID)
	return args.Error(0)
}

var _ portssvc.ExpenseSvcFacade = (*MockExpenseService)(nil)

// --- Mock SubmissionService ---
type MockSubmissionService struct {
	mock.Mock
}

func (m *MockSubmissionService) CreateDraft(ctx context.Context, identity domain.Identity, form domain.ExpenseForm) (*domain.Expense, error) {
	args := m.Called(ctx, identity, form)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Expense), args.Error(1)
}

func (m *MockSubmissionService) Submit(ctx context.Context, identity domain.Identity, expenseID string) (*domain.Expense, error) {
	args := m.Called(ctx, identity, expenseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Expense), args.Error(1)
}

func (m *MockSubmissionService) Decide(ctx context.Context, identity domain.Identity, expenseID string, action domain.ApprovalAction, notes *string) (*domain.Expense, error) {
	args := m.Called(ctx, identity, expenseID, action, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Expense), args.Error(1)
}

func (m *MockSubmissionService) AppendNote(ctx context.Context, identity domain.Identity, expenseID, note string) (*domain.ApprovalNote, error) {
	args := m.Called(ctx, identity, expenseID, note)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ApprovalNote), args.Error(1)
}

func (m *MockSubmissionService) ListPendingApprovals(ctx context.Context, identity domain.Identity) ([]domain.Expense, error) {
	args := m.Called(ctx, identity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Expense), args.Error(1)
}

func (m *MockSubmissionService) ListApprovals(ctx context.Context, identity domain.Identity, expenseID string) (*domain.ApprovalHistory, error) {
	args := m.Called(ctx, identity, expenseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ApprovalHistory), args.Error(1)
}

var _ portssvc.SubmissionSvc = (*MockSubmissionService)(nil)

// --- Mock ReportingService ---
type MockReportingService struct {
	mock.Mock
}

func (m *MockReportingService) Summary(ctx context.Context, identity domain.Identity) (*domain.ExpenseSummary, error) {
	args := m.Called(ctx, identity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExpenseSummary), args.Error(1)
}

func (m *MockReportingService) ExportExpenses(ctx context.Context, identity domain.Identity, filter domain.ExpenseFilter) ([]byte, error) {
	args := m.Called(ctx, identity, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

var _ portssvc.ReportingService = (*MockReportingService)(nil)

// --- Mock APITokenService ---
type MockAPITokenService struct {
	mock.Mock
}

func (m *MockAPITokenService) CreateToken(ctx context.Context, userID, name string, expiresIn *time.Duration) (string, *domain.APIToken, error) {
	args := m.Called(ctx, userID, name, expiresIn)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*domain.APIToken), args.Error(2)
}

func (m *MockAPITokenService) ListTokens(ctx context.Context, userID string) ([]domain.APIToken, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.APIToken), args.Error(1)
}

func (m *MockAPITokenService) RevokeToken(ctx context.Context, userID, tokenID string) error {
	return m.Called(ctx, userID, tokenID).Error(0)
}

func (m *MockAPITokenService) RevokeAllTokens(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockAPITokenService) ValidateToken(ctx context.Context, tokenString string) (*domain.UserProfile, error) {
	args := m.Called(ctx, tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserProfile), args.Error(1)
}

var _ portssvc.APITokenSvc = (*MockAPITokenService)(nil)
