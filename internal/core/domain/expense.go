package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseStatus is the lifecycle state of an expense claim.
type ExpenseStatus string

const (
	StatusDraft     ExpenseStatus = "draft"
	StatusSubmitted ExpenseStatus = "submitted"
	StatusApproved  ExpenseStatus = "approved"
	StatusRejected  ExpenseStatus = "rejected"
)

// IsValid reports whether s is one of the known statuses.
func (s ExpenseStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// IsTerminal reports whether no further status transition is possible.
func (s ExpenseStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// CanTransitionTo enforces draft -> submitted -> {approved|rejected}.
func (s ExpenseStatus) CanTransitionTo(next ExpenseStatus) bool {
	switch s {
	case StatusDraft:
		return next == StatusSubmitted
	case StatusSubmitted:
		return next == StatusApproved || next == StatusRejected
	default:
		return false
	}
}

// ExpenseType is the tag of the expense tagged union.
type ExpenseType string

const (
	TypeTravel      ExpenseType = "travel"
	TypeMaintenance ExpenseType = "maintenance"
	TypeRequisition ExpenseType = "requisition"
)

// IsValid reports whether t names a known variant.
func (t ExpenseType) IsValid() bool {
	switch t {
	case TypeTravel, TypeMaintenance, TypeRequisition:
		return true
	}
	return false
}

const (
	DefaultCurrency          = "BDT"
	MinDescriptionLength     = 10
	MaxDescriptionLength     = 1000
	MinBusinessPurposeLength = 200
)

// MaxTotalAmount is the ceiling applied by the base schema.
var MaxTotalAmount = decimal.NewFromInt(10_000_000)

// Expense is the persisted envelope shared by all variants. Details holds the
// variant payload and its ExpenseType must equal Type.
type Expense struct {
	ID              string          `json:"id"`
	ExpenseNumber   string          `json:"expenseNumber"`
	UserID          string          `json:"userId"`
	Status          ExpenseStatus   `json:"status"`
	Type            ExpenseType     `json:"type"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	Currency        string          `json:"currency"`
	Description     string          `json:"description"`
	BusinessPurpose string          `json:"businessPurpose"`
	Details         ExpenseDetails  `json:"-"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
	SubmittedAt     *time.Time      `json:"submittedAt,omitempty"`
	ApprovedAt      *time.Time      `json:"approvedAt,omitempty"`
	ApproverID      *string         `json:"approverId,omitempty"`
	ApprovalNotes   *string         `json:"approvalNotes,omitempty"`
}

// IsEditable reports whether the owner may still change or delete the expense.
func (e *Expense) IsEditable() bool {
	return e.Status == StatusDraft
}

// IsOwnedBy reports whether userID created the expense.
func (e *Expense) IsOwnedBy(userID string) bool {
	return userID != "" && e.UserID == userID
}

// ExpenseFilter narrows expense listings. Zero values mean "any".
type ExpenseFilter struct {
	UserID    string
	Status    ExpenseStatus
	Type      ExpenseType
	Limit     int
	NextToken *string
}
