package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/expenseflow/internal/core/domain"
)

// UserReader defines read operations for user profiles
type UserReader interface {
	// FindUserByID retrieves a profile by id.
	FindUserByID(ctx context.Context, userID string) (*domain.UserProfile, error)

	// FindUserByEmail retrieves a profile by email.
	FindUserByEmail(ctx context.Context, email string) (*domain.UserProfile, error)

	// FindUserByProviderDetails retrieves the profile linked to an external identity.
	FindUserByProviderDetails(ctx context.Context, provider domain.AuthProvider, providerUserID string) (*domain.UserProfile, error)
}

// UserWriter defines write operations for user profiles
type UserWriter interface {
	// SaveUser persists a new profile.
	SaveUser(ctx context.Context, user domain.UserProfile) error

	// UpdateUser writes the mutable profile columns.
	UpdateUser(ctx context.Context, user domain.UserProfile) error

	// UpdateRefreshToken stores the hash and expiry of the current refresh token.
	UpdateRefreshToken(ctx context.Context, userID string, refreshTokenHash string, refreshTokenExpiryTime time.Time) error

	// ClearRefreshToken removes the stored refresh token.
	ClearRefreshToken(ctx context.Context, userID string) error
}

// UserRepositoryFacade combines all user-related repository interfaces
type UserRepositoryFacade interface {
	UserReader
	UserWriter
}
