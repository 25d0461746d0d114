package services_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/SscSPs/expenseflow/internal/apperrors"
	"github.com/SscSPs/expenseflow/internal/core/domain"
	"github.com/SscSPs/expenseflow/internal/core/services"
	"github.com/SscSPs/expenseflow/internal/middleware"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type ExpenseServiceTestSuite struct {
	suite.Suite
	expenseRepo    *MockExpenseRepository
	userRepo       *MockUserRepository
	attachmentRepo *MockAttachmentRepository
	storage        *MockBlobStorage
	ctx            context.Context
}

func (suite *ExpenseServiceTestSuite) SetupTest() {
	suite.expenseRepo = new(MockExpenseRepository)
	suite.userRepo = new(MockUserRepository)
	suite.attachmentRepo = new(MockAttachmentRepository)
	suite.storage = new(MockBlobStorage)
	suite.ctx = context.Background()
}

func (suite *ExpenseServiceTestSuite) service() interface {
	GetExpense(ctx context.Context, identity domain.Identity, expenseID string) (*domain.Expense, error)
	ListExpenses(ctx context.Context, identity domain.Identity, filter domain.ExpenseFilter) ([]domain.Expense, *string, error)
	UpdateDraft(ctx context.Context, identity domain.Identity, expenseID string, form domain.ExpenseForm) (*domain.Expense, error)
	DeleteDraft(ctx context.Context, identity domain.Identity, expenseID string) error
} {
	return services.NewExpenseService(suite.expenseRepo, suite.userRepo, services.WithReceiptCleanup(suite.attachmentRepo, suite.storage))
}

func (suite *ExpenseServiceTestSuite) TestGetExpense_OwnerAndReviewer() {
	expense := travelExpense("exp-1", "emp-1", domain.StatusSubmitted, 100)
	suite.expenseRepo.On("FindExpenseByID", suite.ctx, "exp-1").Return(expense, nil)
	suite.userRepo.On("FindUserByID", suite.ctx, "fin-1").Return(&domain.UserProfile{ID: "fin-1", Role: domain.RoleFinance, IsActive: true}, nil)
	suite.userRepo.On("FindUserByID", suite.ctx, "emp-2").Return(&domain.UserProfile{ID: "emp-2", Role: domain.RoleEmployee, IsActive: true}, nil)

	got, err := suite.service().GetExpense(suite.ctx, identityOf("emp-1"), "exp-1")
	suite.Require().NoError(err)
	suite.Equal("exp-1", got.ID)

	_, err = suite.service().GetExpense(suite.ctx, identityOf("fin-1"), "exp-1")
	suite.NoError(err)

	_, err = suite.service().GetExpense(suite.ctx, identityOf("emp-2"), "exp-1")
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *ExpenseServiceTestSuite) TestReads_LogStoredRecordsThatFailValidation() {
	var logs bytes.Buffer
	ctx := middleware.WithLogger(suite.ctx, slog.New(slog.NewTextHandler(&logs, nil)))

	drifted := travelExpense("exp-9", "emp-1", domain.StatusDraft, 100)
	drifted.Description = "short"
	suite.expenseRepo.On("FindExpenseByID", ctx, "exp-9").Return(drifted, nil).Once()
	suite.expenseRepo.On("ListExpenses", ctx, mock.Anything).Return([]domain.Expense{*drifted}, (*string)(nil), nil).Once()

	got, err := suite.service().GetExpense(ctx, identityOf("emp-1"), "exp-9")
	suite.Require().NoError(err, "a drifted record stays readable")
	suite.Equal("exp-9", got.ID)
	suite.Contains(logs.String(), "Stored expense fails validation")
	suite.Contains(logs.String(), "expense_id=exp-9")

	logs.Reset()
	list, _, err := suite.service().ListExpenses(ctx, identityOf("emp-1"), domain.ExpenseFilter{})
	suite.Require().NoError(err)
	suite.Len(list, 1)
	suite.Contains(logs.String(), "Stored expense fails validation")
}

func (suite *ExpenseServiceTestSuite) TestGetExpense_ValidRecordLogsNothing() {
	var logs bytes.Buffer
	ctx := middleware.WithLogger(suite.ctx, slog.New(slog.NewTextHandler(&logs, nil)))
	suite.expenseRepo.On("FindExpenseByID", ctx, "exp-1").Return(travelExpense("exp-1", "emp-1", domain.StatusDraft, 100), nil).Once()

	_, err := suite.service().GetExpense(ctx, identityOf("emp-1"), "exp-1")
	suite.Require().NoError(err)
	suite.NotContains(logs.String(), "Stored expense fails validation")
}

func (suite *ExpenseServiceTestSuite) TestGetExpense_NotFound() {
	suite.expenseRepo.On("FindExpenseByID", suite.ctx, "missing").Return(nil, apperrors.ErrNotFound)

	_, err := suite.service().GetExpense(suite.ctx, identityOf("emp-1"), "missing")

	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *ExpenseServiceTestSuite) TestListExpenses_ScopesToCallerAndClampsLimit() {
	next := "token"
	suite.expenseRepo.On("ListExpenses", suite.ctx, mock.MatchedBy(func(f domain.ExpenseFilter) bool {
		return f.UserID == "emp-1" && f.Limit == services.MaxPageSize && f.Status == domain.StatusDraft
	})).Return([]domain.Expense{*travelExpense("exp-1", "emp-1", domain.StatusDraft, 100)}, &next, nil).Once()

	list, token, err := suite.service().ListExpenses(suite.ctx, identityOf("emp-1"), domain.ExpenseFilter{UserID: "someone-else", Status: domain.StatusDraft, Limit: 5000})

	suite.Require().NoError(err)
	suite.Len(list, 1)
	suite.Equal(&next, token)
	suite.expenseRepo.AssertExpectations(suite.T())
}

func (suite *ExpenseServiceTestSuite) TestListExpenses_InvalidFilter() {
	_, _, err := suite.service().ListExpenses(suite.ctx, identityOf("emp-1"), domain.ExpenseFilter{Status: "paid", Type: "flight"})

	fields, ok := apperrors.FieldErrors(err)
	suite.Require().True(ok)
	suite.Contains(fields, "status")
	suite.Contains(fields, "type")
}

func (suite *ExpenseServiceTestSuite) TestUpdateDraft_PreservesIdentityFields() {
	existing := travelExpense("exp-1", "emp-1", domain.StatusDraft, 100)
	suite.expenseRepo.On("FindExpenseByID", suite.ctx, "exp-1").Return(existing, nil)
	suite.expenseRepo.On("UpdateDraft", suite.ctx, mock.MatchedBy(func(e domain.Expense) bool {
		return e.ID == "exp-1" && e.ExpenseNumber == existing.ExpenseNumber && e.Description == "Updated trip description"
	})).Return(nil).Once()

	form := travelForm(250)
	form.Description = "Updated trip description"
	form.BusinessPurpose = "short is fine for drafts"
	updated, err := suite.service().UpdateDraft(suite.ctx, identityOf("emp-1"), "exp-1", form)

	suite.Require().NoError(err)
	suite.Equal(domain.StatusDraft, updated.Status)
	suite.expenseRepo.AssertExpectations(suite.T())
}

func (suite *ExpenseServiceTestSuite) TestUpdateDraft_Rejections() {
	submitted := travelExpense("exp-1", "emp-1", domain.StatusSubmitted, 100)
	suite.expenseRepo.On("FindExpenseByID", suite.ctx, "exp-1").Return(submitted, nil)

	_, err := suite.service().UpdateDraft(suite.ctx, identityOf("emp-1"), "exp-1", travelForm(100))
	suite.ErrorIs(err, apperrors.ErrInvalidState)

	_, err = suite.service().UpdateDraft(suite.ctx, identityOf("emp-2"), "exp-1", travelForm(100))
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *ExpenseServiceTestSuite) TestDeleteDraft_RemovesReceipts() {
	draft := travelExpense("exp-1", "emp-1", domain.StatusDraft, 100)
	suite.expenseRepo.On("FindExpenseByID", suite.ctx, "exp-1").Return(draft, nil)
	suite.attachmentRepo.On("ListAttachmentsByExpense", suite.ctx, "exp-1").Return([]domain.Attachment{{ID: "att-1", ObjectKey: "expenses/exp-1/att-1/r.pdf"}}, nil)
	suite.expenseRepo.On("DeleteDraft", suite.ctx, "exp-1", "emp-1").Return(nil).Once()
	suite.storage.On("Delete", suite.ctx, "expenses/exp-1/att-1/r.pdf").Return(nil).Once()

	err := suite.service().DeleteDraft(suite.ctx, identityOf("emp-1"), "exp-1")

	suite.Require().NoError(err)
	suite.storage.AssertExpectations(suite.T())
}

func (suite *ExpenseServiceTestSuite) TestDeleteDraft_RaceReportsInvalidState() {
	draft := travelExpense("exp-1", "emp-1", domain.StatusDraft, 100)
	suite.expenseRepo.On("FindExpenseByID", suite.ctx, "exp-1").Return(draft, nil)
	suite.attachmentRepo.On("ListAttachmentsByExpense", suite.ctx, "exp-1").Return(nil, nil)
	suite.expenseRepo.On("DeleteDraft", suite.ctx, "exp-1", "emp-1").Return(apperrors.ErrInvalidState).Once()

	err := suite.service().DeleteDraft(suite.ctx, identityOf("emp-1"), "exp-1")

	suite.ErrorIs(err, apperrors.ErrInvalidState)
}

func TestExpenseService(t *testing.T) {
	suite.Run(t, new(ExpenseServiceTestSuite))
}
