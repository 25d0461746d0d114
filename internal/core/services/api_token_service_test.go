package services_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/SscSPs/expenseflow/internal/apperrors"
	"github.com/SscSPs/expenseflow/internal/core/domain"
	"github.com/SscSPs/expenseflow/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAPITokenService_CreateAndValidate(t *testing.T) {
	ctx := context.Background()
	tokenRepo := new(MockAPITokenRepository)
	userRepo := new(MockUserRepository)
	svc := services.NewAPITokenService(tokenRepo, services.NewUserService(userRepo))

	var stored *domain.APIToken
	tokenRepo.CreateFn = func(ctx context.Context, token *domain.APIToken) error {
		stored = token
		return nil
	}

	ttl := time.Hour
	raw, token, err := svc.CreateToken(ctx, "u-1", " cli laptop ", &ttl)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, strings.HasPrefix(raw, domain.APITokenPrefix+token.ID+"_"))
	assert.Equal(t, "cli laptop", token.Name)
	assert.NotContains(t, stored.TokenHash, strings.TrimPrefix(raw, domain.APITokenPrefix+token.ID+"_"))

	tokenRepo.On("FindByID", ctx, token.ID).Return(stored, nil)
	tokenRepo.On("TouchLastUsed", ctx, token.ID, mock.AnythingOfType("time.Time")).Return(nil)
	userRepo.On("FindUserByID", ctx, "u-1").Return(&domain.UserProfile{ID: "u-1", IsActive: true}, nil)

	user, err := svc.ValidateToken(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, "u-1", user.ID)

	_, err = svc.ValidateToken(ctx, raw+"tampered")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = svc.ValidateToken(ctx, "not-a-token")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestAPITokenService_CreateValidation(t *testing.T) {
	svc := services.NewAPITokenService(new(MockAPITokenRepository), services.NewUserService(new(MockUserRepository)))

	_, _, err := svc.CreateToken(context.Background(), "u-1", "  ", nil)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	negative := -time.Minute
	_, _, err = svc.CreateToken(context.Background(), "u-1", "cli", &negative)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, _, err = svc.CreateToken(context.Background(), "", "cli", nil)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestAPITokenService_ExpiredTokenIsRemoved(t *testing.T) {
	ctx := context.Background()
	tokenRepo := new(MockAPITokenRepository)
	svc := services.NewAPITokenService(tokenRepo, services.NewUserService(new(MockUserRepository)))

	var stored *domain.APIToken
	tokenRepo.CreateFn = func(ctx context.Context, token *domain.APIToken) error {
		stored = token
		return nil
	}
	raw, token, err := svc.CreateToken(ctx, "u-1", "cli", nil)
	require.NoError(t, err)

	past := time.Now().Add(-time.Minute)
	stored.ExpiresAt = &past
	tokenRepo.On("FindByID", ctx, token.ID).Return(stored, nil)
	tokenRepo.On("Delete", ctx, token.ID).Return(nil).Once()

	_, err = svc.ValidateToken(ctx, raw)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	tokenRepo.AssertExpectations(t)
}

func TestAPITokenService_RevokeOtherUsersToken(t *testing.T) {
	ctx := context.Background()
	tokenRepo := new(MockAPITokenRepository)
	svc := services.NewAPITokenService(tokenRepo, services.NewUserService(new(MockUserRepository)))
	tokenRepo.On("FindByID", ctx, "t-1").Return(&domain.APIToken{ID: "t-1", UserID: "u-2"}, nil)

	err := svc.RevokeToken(ctx, "u-1", "t-1")

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	tokenRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestAPITokenService_ListTokensNeverNil(t *testing.T) {
	ctx := context.Background()
	tokenRepo := new(MockAPITokenRepository)
	tokenRepo.On("FindByUserID", ctx, "u-1").Return(nil, nil)
	svc := services.NewAPITokenService(tokenRepo, services.NewUserService(new(MockUserRepository)))

	tokens, err := svc.ListTokens(ctx, "u-1")

	require.NoError(t, err)
	assert.NotNil(t, tokens)
}
