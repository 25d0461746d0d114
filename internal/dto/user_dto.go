package dto

import (
	"time"

	"github.com/SscSPs/expenseflow/internal/core/domain"
	"github.com/shopspring/decimal"
)

// UserResponse is the public view of a profile.
type UserResponse struct {
	ID                     string           `json:"id"`
	Email                  string           `json:"email"`
	FullName               string           `json:"fullName"`
	Role                   domain.Role      `json:"role"`
	ApprovalLimit          *decimal.Decimal `json:"approvalLimit,omitempty"`
	SingleTransactionLimit *decimal.Decimal `json:"singleTransactionLimit,omitempty"`
	ManagerID              *string          `json:"managerId,omitempty"`
	MonthlyBudget          decimal.Decimal  `json:"monthlyBudget"`
	IsActive               bool             `json:"isActive"`
	CreatedAt              time.Time        `json:"createdAt"`
}

func ToUserResponse(u *domain.UserProfile) UserResponse {
	return UserResponse{
		ID:                     u.ID,
		Email:                  u.Email,
		FullName:               u.FullName,
		Role:                   u.Role,
		ApprovalLimit:          u.ApprovalLimit,
		SingleTransactionLimit: u.SingleTransactionLimit,
		ManagerID:              u.ManagerID,
		MonthlyBudget:          u.MonthlyBudget,
		IsActive:               u.IsActive,
		CreatedAt:              u.CreatedAt,
	}
}

// UpdateProfileRequest is the body of PUT /api/profile.
type UpdateProfileRequest struct {
	FullName      *string          `json:"fullName,omitempty"`
	MonthlyBudget *decimal.Decimal `json:"monthlyBudget,omitempty"`
}

func (r UpdateProfileRequest) ToDomain() domain.ProfileUpdate {
	return domain.ProfileUpdate{FullName: r.FullName, MonthlyBudget: r.MonthlyBudget}
}

// AdminUpdateUserRequest is the body of PUT /api/admin/users/{id}.
type AdminUpdateUserRequest struct {
	Role                   *string          `json:"role,omitempty"`
	ApprovalLimit          *decimal.Decimal `json:"approvalLimit,omitempty"`
	SingleTransactionLimit *decimal.Decimal `json:"singleTransactionLimit,omitempty"`
	ManagerID              *string          `json:"managerId,omitempty"`
	ClearManager           bool             `json:"clearManager,omitempty"`
	IsActive               *bool            `json:"isActive,omitempty"`
}

// ToDomain parses the role. ok is false for an unknown role.
func (r AdminUpdateUserRequest) ToDomain() (update domain.AdminProfileUpdate, ok bool) {
	update = domain.AdminProfileUpdate{
		ApprovalLimit:          r.ApprovalLimit,
		SingleTransactionLimit: r.SingleTransactionLimit,
		ManagerID:              r.ManagerID,
		ClearManager:           r.ClearManager,
		IsActive:               r.IsActive,
	}
	if r.Role != nil {
		role, valid := domain.ParseRole(*r.Role)
		if !valid {
			return update, false
		}
		update.Role = &role
	}
	return update, true
}

// AccessResponse answers GET /api/access.
type AccessResponse struct {
	Path    string      `json:"path"`
	Allowed bool        `json:"allowed"`
	Role    domain.Role `json:"role"`
}
