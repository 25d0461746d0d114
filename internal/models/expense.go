package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is the expenses table row. Details holds the jsonb variant payload.
type Expense struct {
	ExpenseID       string          `db:"expense_id"`
	ExpenseNumber   string          `db:"expense_number"`
	UserID          string          `db:"user_id"`
	Status          string          `db:"status"`
	Type            string          `db:"expense_type"`
	TotalAmount     decimal.Decimal `db:"total_amount"`
	Currency        string          `db:"currency"`
	Description     string          `db:"description"`
	BusinessPurpose string          `db:"business_purpose"`
	Details         []byte          `db:"details"`
	CreatedAt       time.Time       `db:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at"`
	SubmittedAt     *time.Time      `db:"submitted_at"`
	ApprovedAt      *time.Time      `db:"approved_at"`
	ApproverID      *string         `db:"approver_id"`
	ApprovalNotes   *string         `db:"approval_notes"`
}

// Approval is the expense_approvals table row.
type Approval struct {
	ApprovalID     string    `db:"approval_id"`
	ExpenseID      string    `db:"expense_id"`
	ApproverID     string    `db:"approver_id"`
	Status         string    `db:"status"`
	Comment        *string   `db:"comment"`
	IsSelfApproval bool      `db:"is_self_approval"`
	CreatedAt      time.Time `db:"created_at"`
}
