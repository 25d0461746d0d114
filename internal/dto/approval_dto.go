package dto

import "github.com/SscSPs/expenseflow/internal/core/domain"

// DecisionRequest is the body of POST /api/expenses/{id}/approve.
type DecisionRequest struct {
	Action string  `json:"action"`
	Notes  *string `json:"notes,omitempty"`
}

// DecisionResponse reports the resulting status.
type DecisionResponse struct {
	Message string               `json:"message"`
	Status  domain.ExpenseStatus `json:"status"`
}

// NoteRequest is the body of POST /api/expenses/{id}/notes.
type NoteRequest struct {
	Note string `json:"note"`
}

// PendingApprovalsResponse is the approver queue.
type PendingApprovalsResponse struct {
	Expenses []ExpenseResponse `json:"expenses"`
}
