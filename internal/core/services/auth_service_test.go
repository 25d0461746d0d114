package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/expenseflow/internal/apperrors"
	"github.com/SscSPs/expenseflow/internal/core/domain"
	"github.com/SscSPs/expenseflow/internal/core/services"
	"github.com/SscSPs/expenseflow/internal/platform/config"
	"github.com/SscSPs/expenseflow/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:                  "test-secret",
		JWTExpiryDuration:          time.Hour,
		JWTIssuer:                  "expenseflow-test",
		RefreshTokenExpiryDuration: 24 * time.Hour,
	}
}

func TestTokenService_AccessToken(t *testing.T) {
	svc := services.NewTokenService(testConfig(), services.NewUserService(new(MockUserRepository)))

	token, expiry, err := svc.GenerateAccessToken(context.Background(), &domain.UserProfile{ID: "u-1"})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiry, time.Minute)

	claims, err := utils.ParseAndValidateJWT(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.Subject)
	assert.Equal(t, "expenseflow-test", claims.Issuer)
}

func TestTokenService_RefreshTokenRoundTrip(t *testing.T) {
	ctx := context.Background()
	userRepo := new(MockUserRepository)
	svc := services.NewTokenService(testConfig(), services.NewUserService(userRepo))

	raw, expiry, err := svc.GenerateRefreshToken(ctx, &domain.UserProfile{ID: "u-1"})
	require.NoError(t, err)

	userRepo.On("FindUserByID", ctx, "u-1").Return(&domain.UserProfile{
		ID:                     "u-1",
		IsActive:               true,
		RefreshTokenHash:       utils.HashRefreshToken(raw),
		RefreshTokenExpiryTime: &expiry,
	}, nil)

	user, err := svc.ValidateAndParseRefreshToken(ctx, "u-1", raw)
	require.NoError(t, err)
	assert.Equal(t, "u-1", user.ID)

	_, err = svc.ValidateAndParseRefreshToken(ctx, "u-1", "wrong")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestTokenService_RefreshTokenExpired(t *testing.T) {
	ctx := context.Background()
	userRepo := new(MockUserRepository)
	past := time.Now().Add(-time.Minute)
	userRepo.On("FindUserByID", ctx, "u-1").Return(&domain.UserProfile{
		ID:                     "u-1",
		IsActive:               true,
		RefreshTokenHash:       utils.HashRefreshToken("raw"),
		RefreshTokenExpiryTime: &past,
	}, nil)
	userRepo.On("FindUserByID", ctx, "ghost").Return(nil, apperrors.ErrNotFound)
	svc := services.NewTokenService(testConfig(), services.NewUserService(userRepo))

	_, err := svc.ValidateAndParseRefreshToken(ctx, "u-1", "raw")
	assert.ErrorIs(t, err, apperrors.ErrRefreshTokenExpired)

	_, err = svc.ValidateAndParseRefreshToken(ctx, "ghost", "raw")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}
