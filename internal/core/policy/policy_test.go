package policy_test

import (
	"testing"

	"github.com/SscSPs/expenseflow/internal/core/domain"
	"github.com/SscSPs/expenseflow/internal/core/policy"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func profile(role domain.Role) *domain.UserProfile {
	return &domain.UserProfile{ID: "u-" + string(role), Role: role, IsActive: true}
}

func TestCanApproveExpense(t *testing.T) {
	manager := profile(domain.RoleManager)
	manager.ApprovalLimit = dec(5000)

	assert.True(t, policy.CanApproveExpense(manager, decimal.NewFromInt(5000)))
	assert.False(t, policy.CanApproveExpense(manager, decimal.NewFromInt(5001)))

	noLimit := profile(domain.RoleManager)
	assert.False(t, policy.CanApproveExpense(noLimit, decimal.NewFromInt(1)))

	assert.True(t, policy.CanApproveExpense(profile(domain.RoleAdmin), decimal.NewFromInt(9_999_999)))
	assert.False(t, policy.CanApproveExpense(profile(domain.RoleEmployee), decimal.NewFromInt(1)))
	assert.False(t, policy.CanApproveExpense(profile(domain.RoleFinance), decimal.NewFromInt(1)))
	assert.False(t, policy.CanApproveExpense(nil, decimal.NewFromInt(1)))

	inactive := profile(domain.RoleAdmin)
	inactive.IsActive = false
	assert.False(t, policy.CanApproveExpense(inactive, decimal.NewFromInt(1)))
}

func TestCanSelfApprove(t *testing.T) {
	manager := profile(domain.RoleManager)
	manager.ApprovalLimit = dec(10000)
	assert.True(t, policy.CanSelfApprove(manager, decimal.NewFromInt(8000)), "falls back to approval limit")

	manager.SingleTransactionLimit = dec(2000)
	assert.False(t, policy.CanSelfApprove(manager, decimal.NewFromInt(8000)))
	assert.True(t, policy.CanSelfApprove(manager, decimal.NewFromInt(2000)))

	assert.False(t, policy.CanSelfApprove(profile(domain.RoleManager), decimal.NewFromInt(1)))
	assert.True(t, policy.CanSelfApprove(profile(domain.RoleAdmin), decimal.NewFromInt(1_000_000)))
	assert.False(t, policy.CanSelfApprove(profile(domain.RoleEmployee), decimal.NewFromInt(1)))
}

func TestHasMinRole(t *testing.T) {
	assert.True(t, policy.HasMinRole(profile(domain.RoleAdmin), domain.RoleFinance))
	assert.True(t, policy.HasMinRole(profile(domain.RoleFinance), domain.RoleFinance))
	assert.False(t, policy.HasMinRole(profile(domain.RoleEmployee), domain.RoleFinance))
	assert.False(t, policy.HasMinRole(profile("superuser"), domain.RoleEmployee))
	assert.True(t, policy.HasRole(profile(domain.RoleManager), domain.RoleAdmin, domain.RoleManager))
	assert.False(t, policy.HasRole(nil, domain.RoleEmployee))
}

func TestCanAccessRoute(t *testing.T) {
	tests := []struct {
		role    domain.Role
		path    string
		allowed bool
	}{
		{domain.RoleEmployee, "/expenses/new", true},
		{domain.RoleEmployee, "/approvals", false},
		{domain.RoleManager, "/approvals", true},
		{domain.RoleFinance, "/reports/summary", true},
		{domain.RoleEmployee, "/api/reports/summary", false},
		{domain.RoleManager, "/admin/users", false},
		{domain.RoleAdmin, "/api/admin/users/42", true},
		{domain.RoleEmployee, "/administer", true},
		{domain.RoleEmployee, "/some/unknown/page", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.allowed, policy.CanAccessRoute(profile(tt.role), tt.path), "%s %s", tt.role, tt.path)
	}

	assert.False(t, policy.CanAccessRoute(nil, "/admin"))
	assert.True(t, policy.CanAccessRoute(nil, "/login"))
}
