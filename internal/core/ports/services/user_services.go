package services

import (
	"context"
	"time"

	"github.com/SscSPs/expenseflow/internal/core/domain"
)

// UserReaderSvc defines read operations for user profiles
type UserReaderSvc interface {
	// GetUserByID retrieves a profile by ID.
	GetUserByID(ctx context.Context, userID string) (*domain.UserProfile, error)
}

// UserWriterSvc defines write operations for user profiles
type UserWriterSvc interface {
	// GetOrCreateOAuthUser returns the profile of an external identity,
	// creating an employee profile on first sign-in.
	GetOrCreateOAuthUser(ctx context.Context, provider domain.AuthProvider, providerUserID, email, fullName string) (*domain.UserProfile, error)

	// UpdateProfile applies owner-editable changes to the caller's profile.
	UpdateProfile(ctx context.Context, identity domain.Identity, update domain.ProfileUpdate) (*domain.UserProfile, error)

	// AdminUpdateUser changes role, limits, manager or active flag. Admin only.
	AdminUpdateUser(ctx context.Context, identity domain.Identity, userID string, update domain.AdminProfileUpdate) (*domain.UserProfile, error)

	// UpdateRefreshToken updates the refresh token details for a user.
	UpdateRefreshToken(ctx context.Context, userID string, refreshTokenHash string, refreshTokenExpiryTime time.Time) error

	// ClearRefreshToken clears the refresh token for a user.
	ClearRefreshToken(ctx context.Context, userID string) error
}

// UserSvcFacade combines all user-related service interfaces
type UserSvcFacade interface {
	UserReaderSvc
	UserWriterSvc
}
