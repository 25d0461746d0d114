package dto

import (
	"encoding/json"
	"time"

	"github.com/SscSPs/expenseflow/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ExpenseRequest wraps the wizard form for create and update.
type ExpenseRequest struct {
	Expense *domain.ExpenseForm `json:"expense"`
}

// ExpenseResponse is the wire shape of an expense. Details carries its own "type" key.
type ExpenseResponse struct {
	ID              string               `json:"id"`
	ExpenseNumber   string               `json:"expenseNumber"`
	UserID          string               `json:"userId"`
	Status          domain.ExpenseStatus `json:"status"`
	Type            domain.ExpenseType   `json:"type"`
	TotalAmount     decimal.Decimal      `json:"totalAmount"`
	Currency        string               `json:"currency"`
	Description     string               `json:"description"`
	BusinessPurpose string               `json:"businessPurpose"`
	Details         json.RawMessage      `json:"details,omitempty"`
	CreatedAt       time.Time            `json:"createdAt"`
	UpdatedAt       time.Time            `json:"updatedAt"`
	SubmittedAt     *time.Time           `json:"submittedAt,omitempty"`
	ApprovedAt      *time.Time           `json:"approvedAt,omitempty"`
	ApproverID      *string              `json:"approverId,omitempty"`
	ApprovalNotes   *string              `json:"approvalNotes,omitempty"`
}

// ExpenseEnvelope is returned by create, update and submit.
type ExpenseEnvelope struct {
	Expense ExpenseResponse `json:"expense"`
	Message string          `json:"message"`
}

// ListExpensesResponse is a page of expenses.
type ListExpensesResponse struct {
	Expenses  []ExpenseResponse `json:"expenses"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// ListExpensesParams are the query parameters of GET /api/expenses.
type ListExpensesParams struct {
	Status    string  `form:"status"`
	Type      string  `form:"type"`
	Limit     int     `form:"limit" binding:"omitempty,min=1,max=100"`
	NextToken *string `form:"nextToken"`
}

// Filter converts the params into a domain filter.
func (p ListExpensesParams) Filter() domain.ExpenseFilter {
	return domain.ExpenseFilter{
		Status:    domain.ExpenseStatus(p.Status),
		Type:      domain.ExpenseType(p.Type),
		Limit:     p.Limit,
		NextToken: p.NextToken,
	}
}

func ToExpenseResponse(e domain.Expense) ExpenseResponse {
	resp := ExpenseResponse{
		ID:              e.ID,
		ExpenseNumber:   e.ExpenseNumber,
		UserID:          e.UserID,
		Status:          e.Status,
		Type:            e.Type,
		TotalAmount:     e.TotalAmount,
		Currency:        e.Currency,
		Description:     e.Description,
		BusinessPurpose: e.BusinessPurpose,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
		SubmittedAt:     e.SubmittedAt,
		ApprovedAt:      e.ApprovedAt,
		ApproverID:      e.ApproverID,
		ApprovalNotes:   e.ApprovalNotes,
	}
	if e.Details != nil {
		if raw, err := domain.EncodeDetails(e.Details); err == nil {
			resp.Details = raw
		}
	}
	return resp
}

func ToExpenseResponseList(expenses []domain.Expense) []ExpenseResponse {
	result := make([]ExpenseResponse, len(expenses))
	for i, e := range expenses {
		result[i] = ToExpenseResponse(e)
	}
	return result
}

// ToDomainExpense reverses ToExpenseResponse.
func (r ExpenseResponse) ToDomainExpense() (domain.Expense, error) {
	e := domain.Expense{
		ID:              r.ID,
		ExpenseNumber:   r.ExpenseNumber,
		UserID:          r.UserID,
		Status:          r.Status,
		Type:            r.Type,
		TotalAmount:     r.TotalAmount,
		Currency:        r.Currency,
		Description:     r.Description,
		BusinessPurpose: r.BusinessPurpose,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
		SubmittedAt:     r.SubmittedAt,
		ApprovedAt:      r.ApprovedAt,
		ApproverID:      r.ApproverID,
		ApprovalNotes:   r.ApprovalNotes,
	}
	if len(r.Details) > 0 {
		details, err := domain.DecodeDetails(r.Type, r.Details)
		if err != nil {
			return domain.Expense{}, err
		}
		e.Details = details
	}
	return e, nil
}
