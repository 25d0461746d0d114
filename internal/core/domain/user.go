package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Role is the organisational role attached to a user profile.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleFinance  Role = "finance"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"

	// roleLegacyUser is accepted on input and normalised to RoleEmployee.
	roleLegacyUser Role = "user"
)

// Roles lists the canonical roles from least to most privileged.
var Roles = []Role{RoleEmployee, RoleFinance, RoleManager, RoleAdmin}

// Rank orders roles for minimum-role checks. Unknown roles rank below employee.
func (r Role) Rank() int {
	for i, known := range Roles {
		if r == known {
			return i
		}
	}
	return -1
}

// IsValid reports whether r is a canonical role.
func (r Role) IsValid() bool {
	return r.Rank() >= 0
}

// ParseRole normalises a stored or submitted role string.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if r == roleLegacyUser {
		return RoleEmployee, true
	}
	return r, r.IsValid()
}

// AuthProvider identifies how a user proved their identity.
type AuthProvider string

const (
	ProviderGoogle AuthProvider = "google"
)

// UserProfile is the application-side record of an identity.
type UserProfile struct {
	ID                     string           `json:"id"`
	Email                  string           `json:"email"`
	FullName               string           `json:"fullName"`
	Role                   Role             `json:"role"`
	ApprovalLimit          *decimal.Decimal `json:"approvalLimit,omitempty"`
	SingleTransactionLimit *decimal.Decimal `json:"singleTransactionLimit,omitempty"`
	ManagerID              *string          `json:"managerId,omitempty"`
	MonthlyBudget          decimal.Decimal  `json:"monthlyBudget"`
	IsActive               bool             `json:"isActive"`
	AuthProvider           AuthProvider     `json:"authProvider"`
	ProviderUserID         string           `json:"-"`
	RefreshTokenHash       string           `json:"-"`
	RefreshTokenExpiryTime *time.Time       `json:"-"`
	CreatedAt              time.Time        `json:"createdAt"`
	UpdatedAt              time.Time        `json:"updatedAt"`
}

// ProfileUpdate carries the owner-editable profile fields. Nil means unchanged.
type ProfileUpdate struct {
	FullName      *string
	MonthlyBudget *decimal.Decimal
}

// AdminProfileUpdate carries the admin-only profile fields. Nil means unchanged.
// ClearManager removes the manager link.
type AdminProfileUpdate struct {
	Role                   *Role
	ApprovalLimit          *decimal.Decimal
	SingleTransactionLimit *decimal.Decimal
	ManagerID              *string
	ClearManager           bool
	IsActive               *bool
}
