package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/expenseflow/internal/apperrors"
	"github.com/SscSPs/expenseflow/internal/core/domain"
	"github.com/SscSPs/expenseflow/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/expenseflow/internal/core/ports/services"
	"github.com/SscSPs/expenseflow/internal/utils"
)

// apiTokenService implements the APITokenSvc interface
type apiTokenService struct {
	BaseService
	tokenRepo repositories.APITokenRepository
	userSvc   portssvc.UserReaderSvc
}

// NewAPITokenService creates a new instance of apiTokenService
func NewAPITokenService(tokenRepo repositories.APITokenRepository, userSvc portssvc.UserReaderSvc) *apiTokenService {
	return &apiTokenService{
		BaseService: newBaseService(),
		tokenRepo:   tokenRepo,
		userSvc:     userSvc,
	}
}

var _ portssvc.APITokenSvc = (*apiTokenService)(nil)

// CreateToken generates a new API token for the user. The token string embeds
// the row id so validation is a primary key lookup plus one bcrypt compare.
func (s *apiTokenService) CreateToken(ctx context.Context, userID, name string, expiresIn *time.Duration) (string, *domain.APIToken, error) {
	if userID == "" {
		return "", nil, apperrors.NewUnauthorizedError("Unauthorized")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil, apperrors.NewValidationError(map[string]string{"name": "Token name is required"})
	}
	if expiresIn != nil && *expiresIn <= 0 {
		return "", nil, apperrors.NewValidationError(map[string]string{"expiresIn": "Expiry must be positive"})
	}

	secret, err := utils.GenerateSecureRandomString(32)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}
	tokenHash, err := utils.HashSecret(secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to hash token: %w", err)
	}

	now := s.Now()
	var expiresAt *time.Time
	if expiresIn != nil {
		expiry := now.Add(*expiresIn)
		expiresAt = &expiry
	}

	apiToken := &domain.APIToken{
		ID:        newID(),
		UserID:    userID,
		Name:      name,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.tokenRepo.Create(ctx, apiToken); err != nil {
		return "", nil, fmt.Errorf("failed to save token: %w", err)
	}

	return domain.FormatAPIToken(apiToken.ID, secret), apiToken, nil
}

// ListTokens returns all API tokens for a user
func (s *apiTokenService) ListTokens(ctx context.Context, userID string) ([]domain.APIToken, error) {
	if userID == "" {
		return nil, apperrors.NewUnauthorizedError("Unauthorized")
	}
	tokens, err := s.tokenRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tokens: %w", err)
	}
	if tokens == nil {
		tokens = []domain.APIToken{}
	}
	return tokens, nil
}

// RevokeToken deletes a specific API token for a user
func (s *apiTokenService) RevokeToken(ctx context.Context, userID, tokenID string) error {
	if userID == "" {
		return apperrors.NewUnauthorizedError("Unauthorized")
	}
	token, err := s.tokenRepo.FindByID(ctx, tokenID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewNotFoundError("Token not found")
		}
		return fmt.Errorf("failed to find token: %w", err)
	}
	// Tokens of other users are reported as missing.
	if token.UserID != userID {
		return apperrors.NewNotFoundError("Token not found")
	}
	if err := s.tokenRepo.Delete(ctx, tokenID); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// RevokeAllTokens deletes all API tokens for a user
func (s *apiTokenService) RevokeAllTokens(ctx context.Context, userID string) error {
	if userID == "" {
		return apperrors.NewUnauthorizedError("Unauthorized")
	}
	if err := s.tokenRepo.DeleteByUserID(ctx, userID); err != nil {
		return fmt.Errorf("failed to revoke all tokens: %w", err)
	}
	return nil
}

// ValidateToken checks if a token is valid and returns the associated user
func (s *apiTokenService) ValidateToken(ctx context.Context, tokenString string) (*domain.UserProfile, error) {
	id, secret, ok := domain.ParseAPIToken(tokenString)
	if !ok {
		return nil, apperrors.NewUnauthorizedError("Invalid API token")
	}

	token, err := s.tokenRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewUnauthorizedError("Invalid API token")
		}
		return nil, fmt.Errorf("failed to find token: %w", err)
	}
	if !utils.CheckSecretHash(secret, token.TokenHash) {
		return nil, apperrors.NewUnauthorizedError("Invalid API token")
	}
	if token.IsExpired() {
		if err := s.tokenRepo.Delete(ctx, token.ID); err != nil {
			s.LogError(ctx, err, "Failed to remove expired API token", slog.String("token_id", token.ID))
		}
		return nil, apperrors.NewUnauthorizedError("API token has expired")
	}

	if err := s.tokenRepo.TouchLastUsed(ctx, token.ID, s.Now()); err != nil {
		s.LogError(ctx, err, "Failed to update API token last use", slog.String("token_id", token.ID))
	}

	user, err := s.userSvc.GetUserByID(ctx, token.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if !user.IsActive {
		return nil, apperrors.NewForbiddenError("Account is inactive")
	}
	return user, nil
}

// PurgeExpired removes tokens that expired before now.
func (s *apiTokenService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.tokenRepo.DeleteExpired(ctx, s.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired tokens: %w", err)
	}
	if n > 0 {
		s.LogInfo(ctx, "Purged expired API tokens", slog.Int64("count", n))
	}
	return n, nil
}
