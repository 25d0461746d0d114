package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// User is the users table row.
type User struct {
	UserID                 string              `db:"user_id"`
	Email                  string              `db:"email"`
	FullName               string              `db:"full_name"`
	Role                   string              `db:"role"`
	ApprovalLimit          decimal.NullDecimal `db:"approval_limit"`
	SingleTransactionLimit decimal.NullDecimal `db:"single_transaction_limit"`
	ManagerID              *string             `db:"manager_id"`
	MonthlyBudget          decimal.Decimal     `db:"monthly_budget"`
	IsActive               bool                `db:"is_active"`
	AuthProvider           string              `db:"auth_provider"`
	ProviderUserID         sql.NullString      `db:"provider_user_id"`
	CreatedAt              time.Time           `db:"created_at"`
	UpdatedAt              time.Time           `db:"updated_at"`

	// Refresh Token Fields
	RefreshTokenHash       sql.NullString `db:"refresh_token_hash"`        // Store hash of the refresh token
	RefreshTokenExpiryTime sql.NullTime   `db:"refresh_token_expiry_time"` // Expiry of the stored refresh token
}

