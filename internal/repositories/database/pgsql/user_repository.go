package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/expenseflow/internal/apperrors"
	"github.com/SscSPs/expenseflow/internal/core/domain"
	portsrepo "github.com/SscSPs/expenseflow/internal/core/ports/repositories"
	"github.com/SscSPs/expenseflow/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxUserRepository struct {
	BaseRepository
}

func newPgxUserRepository(db *pgxpool.Pool) portsrepo.UserRepositoryFacade {
	return &PgxUserRepository{BaseRepository: BaseRepository{Pool: db}}
}

// Ensure PgxUserRepository implements portsrepo.UserRepositoryFacade
var _ portsrepo.UserRepositoryFacade = (*PgxUserRepository)(nil)

const (
	selectUserFields = `
		user_id, email, full_name, role, approval_limit, single_transaction_limit,
		manager_id, monthly_budget, is_active, auth_provider, provider_user_id,
		refresh_token_hash, refresh_token_expiry_time, created_at, updated_at
	`

	insertUserQuery = `
		INSERT INTO users (
			user_id, email, full_name, role, approval_limit, single_transaction_limit,
			manager_id, monthly_budget, is_active, auth_provider, provider_user_id,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	updateUserQuery = `
		UPDATE users SET
			full_name = $2,
			role = $3,
			approval_limit = $4,
			single_transaction_limit = $5,
			manager_id = $6,
			monthly_budget = $7,
			is_active = $8,
			auth_provider = $9,
			provider_user_id = $10,
			updated_at = $11
		WHERE user_id = $1
	`
)

func toModelUser(d domain.UserProfile) models.User {
	m := models.User{
		UserID:         d.ID,
		Email:          d.Email,
		FullName:       d.FullName,
		Role:           string(d.Role),
		ManagerID:      d.ManagerID,
		MonthlyBudget:  d.MonthlyBudget,
		IsActive:       d.IsActive,
		AuthProvider:   string(d.AuthProvider),
		ProviderUserID: sql.NullString{String: d.ProviderUserID, Valid: d.ProviderUserID != ""},
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
	if d.ApprovalLimit != nil {
		m.ApprovalLimit = decimal.NewNullDecimal(*d.ApprovalLimit)
	}
	if d.SingleTransactionLimit != nil {
		m.SingleTransactionLimit = decimal.NewNullDecimal(*d.SingleTransactionLimit)
	}
	return m
}

func toDomainUser(m models.User) domain.UserProfile {
	role, ok := domain.ParseRole(m.Role)
	if !ok {
		role = domain.RoleEmployee
	}
	d := domain.UserProfile{
		ID:             m.UserID,
		Email:          m.Email,
		FullName:       m.FullName,
		Role:           role,
		ManagerID:      m.ManagerID,
		MonthlyBudget:  m.MonthlyBudget,
		IsActive:       m.IsActive,
		AuthProvider:   domain.AuthProvider(m.AuthProvider),
		ProviderUserID: m.ProviderUserID.String,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
	if m.ApprovalLimit.Valid {
		limit := m.ApprovalLimit.Decimal
		d.ApprovalLimit = &limit
	}
	if m.SingleTransactionLimit.Valid {
		limit := m.SingleTransactionLimit.Decimal
		d.SingleTransactionLimit = &limit
	}
	if m.RefreshTokenHash.Valid {
		d.RefreshTokenHash = m.RefreshTokenHash.String
	}
	if m.RefreshTokenExpiryTime.Valid {
		expiry := m.RefreshTokenExpiryTime.Time
		d.RefreshTokenExpiryTime = &expiry
	}
	return d
}

func scanUser(row pgx.Row) (*models.User, error) {
	var m models.User
	err := row.Scan(
		&m.UserID,
		&m.Email,
		&m.FullName,
		&m.Role,
		&m.ApprovalLimit,
		&m.SingleTransactionLimit,
		&m.ManagerID,
		&m.MonthlyBudget,
		&m.IsActive,
		&m.AuthProvider,
		&m.ProviderUserID,
		&m.RefreshTokenHash,
		&m.RefreshTokenExpiryTime,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *PgxUserRepository) findOne(ctx context.Context, what, where string, args ...any) (*domain.UserProfile, error) {
	query := `SELECT ` + selectUserFields + ` FROM users WHERE ` + where
	m, err := scanUser(r.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find user by "+what, err)
	}
	user := toDomainUser(*m)
	return &user, nil
}

func (r *PgxUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.UserProfile, error) {
	return r.findOne(ctx, "id", "user_id = $1", userID)
}

func (r *PgxUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.UserProfile, error) {
	return r.findOne(ctx, "email", "LOWER(email) = LOWER($1)", email)
}

func (r *PgxUserRepository) FindUserByProviderDetails(ctx context.Context, provider domain.AuthProvider, providerUserID string) (*domain.UserProfile, error) {
	return r.findOne(ctx, "provider details", "auth_provider = $1 AND provider_user_id = $2", string(provider), providerUserID)
}

func (r *PgxUserRepository) SaveUser(ctx context.Context, user domain.UserProfile) error {
	m := toModelUser(user)
	_, err := r.Pool.Exec(ctx, insertUserQuery,
		m.UserID,
		m.Email,
		m.FullName,
		m.Role,
		m.ApprovalLimit,
		m.SingleTransactionLimit,
		m.ManagerID,
		m.MonthlyBudget,
		m.IsActive,
		m.AuthProvider,
		m.ProviderUserID,
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user %s: %w", user.Email, apperrors.ErrDuplicate)
		}
		return apperrors.NewAppError(500, "failed to save user", err)
	}
	return nil
}

func (r *PgxUserRepository) UpdateUser(ctx context.Context, user domain.UserProfile) error {
	m := toModelUser(user)
	cmdTag, err := r.Pool.Exec(ctx, updateUserQuery,
		m.UserID,
		m.FullName,
		m.Role,
		m.ApprovalLimit,
		m.SingleTransactionLimit,
		m.ManagerID,
		m.MonthlyBudget,
		m.IsActive,
		m.AuthProvider,
		m.ProviderUserID,
		m.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user %s: %w", user.ID, apperrors.ErrDuplicate)
		}
		return apperrors.NewAppError(500, "failed to update user", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateRefreshToken stores the hash and expiry of the current refresh token.
func (r *PgxUserRepository) UpdateRefreshToken(ctx context.Context, userID string, refreshTokenHash string, refreshTokenExpiryTime time.Time) error {
	query := `
		UPDATE users
		SET refresh_token_hash = $2, refresh_token_expiry_time = $3, updated_at = NOW()
		WHERE user_id = $1
	`
	cmdTag, err := r.Pool.Exec(ctx, query, userID, refreshTokenHash, refreshTokenExpiryTime)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update refresh token", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ClearRefreshToken removes the stored refresh token.
func (r *PgxUserRepository) ClearRefreshToken(ctx context.Context, userID string) error {
	query := `
		UPDATE users
		SET refresh_token_hash = NULL, refresh_token_expiry_time = NULL, updated_at = NOW()
		WHERE user_id = $1
	`
	cmdTag, err := r.Pool.Exec(ctx, query, userID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to clear refresh token", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
