// Package policy answers role, approval-limit and route questions for a user profile.
// Money decisions fail closed. Navigation fails open for unknown routes.
package policy

import (
	"github.com/SscSPs/expenseflow/internal/core/domain"
	"github.com/shopspring/decimal"
)

// HasRole reports whether the profile holds one of roles.
func HasRole(p *domain.UserProfile, roles ...domain.Role) bool {
	if p == nil {
		return false
	}
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}

// HasMinRole reports whether the profile ranks at or above min.
func HasMinRole(p *domain.UserProfile, min domain.Role) bool {
	if p == nil || !p.Role.IsValid() {
		return false
	}
	return p.Role.Rank() >= min.Rank()
}

// CanApproveExpense: admins always; managers only within a present approval limit.
func CanApproveExpense(p *domain.UserProfile, amount decimal.Decimal) bool {
	if p == nil || !p.IsActive {
		return false
	}
	switch p.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleManager:
		return p.ApprovalLimit != nil && amount.LessThanOrEqual(*p.ApprovalLimit)
	default:
		return false
	}
}

// CanSelfApprove: admins always; managers within their single transaction
// limit, falling back to the approval limit when it is unset.
func CanSelfApprove(p *domain.UserProfile, amount decimal.Decimal) bool {
	if p == nil || !p.IsActive {
		return false
	}
	switch p.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleManager:
		limit := p.SingleTransactionLimit
		if limit == nil {
			limit = p.ApprovalLimit
		}
		return limit != nil && amount.LessThanOrEqual(*limit)
	default:
		return false
	}
}

// CanReviewExpense reports whether the profile may read someone else's expense.
func CanReviewExpense(p *domain.UserProfile) bool {
	return HasMinRole(p, domain.RoleFinance)
}
