package domain

import (
	"strings"
	"time"
)

// ApprovalAction is the decision taken by an approver.
type ApprovalAction string

const (
	ActionApprove ApprovalAction = "approved"
	ActionReject  ApprovalAction = "rejected"
)

// ParseApprovalAction accepts "approved" or "rejected". The imperative forms
// "approve" and "reject" are normalised.
func ParseApprovalAction(s string) (ApprovalAction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "approved", "approve":
		return ActionApprove, true
	case "rejected", "reject":
		return ActionReject, true
	}
	return ApprovalAction(s), false
}

// ResultingStatus is the expense status produced by the action.
func (a ApprovalAction) ResultingStatus() ExpenseStatus {
	if a == ActionApprove {
		return StatusApproved
	}
	return StatusRejected
}

// SelfApprovalComment is recorded on approvals produced by the submit flow.
const SelfApprovalComment = "Self-approved within the submitter's approval limit"

// Approval is one recorded decision on an expense.
type Approval struct {
	ID             string        `json:"id"`
	ExpenseID      string        `json:"expenseId"`
	ApproverID     string        `json:"approverId"`
	Status         ExpenseStatus `json:"status"`
	Comment        *string       `json:"comment,omitempty"`
	IsSelfApproval bool          `json:"isSelfApproval"`
	CreatedAt      time.Time     `json:"createdAt"`
}

// ApprovalNote is an append-only remark on an already decided expense.
type ApprovalNote struct {
	ID        string    `json:"id"`
	ExpenseID string    `json:"expenseId"`
	AuthorID  string    `json:"authorId"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"createdAt"`
}

// Decision is the input of a conditional submitted -> approved|rejected update.
// The status change and its Approval row are written together.
type Decision struct {
	ExpenseID      string
	ApproverID     string
	Status         ExpenseStatus
	Notes          *string
	IsSelfApproval bool
	At             time.Time
}

// ApprovalHistory is the audit trail of one expense.
type ApprovalHistory struct {
	Approvals []Approval     `json:"approvals"`
	Notes     []ApprovalNote `json:"notes"`
}
