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
	"github.com/SscSPs/expenseflow/internal/core/policy"
	portsrepo "github.com/SscSPs/expenseflow/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/expenseflow/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

const maxFullNameLength = 200

// userService implements portssvc.UserSvcFacade
type userService struct {
	BaseService
	userRepo portsrepo.UserRepositoryFacade
}

// NewUserService creates the profile service.
func NewUserService(userRepo portsrepo.UserRepositoryFacade) *userService {
	return &userService{BaseService: newBaseService(), userRepo: userRepo}
}

var _ portssvc.UserSvcFacade = (*userService)(nil)

func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.UserProfile, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID in service: %w", err)
	}
	return user, nil
}

// GetOrCreateOAuthUser looks the identity up by provider subject, then by
// email (linking the provider), and otherwise creates an employee profile.
func (s *userService) GetOrCreateOAuthUser(ctx context.Context, provider domain.AuthProvider, providerUserID, email, fullName string) (*domain.UserProfile, error) {
	user, err := s.userRepo.FindUserByProviderDetails(ctx, provider, providerUserID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user by provider: %w", err)
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, apperrors.NewValidationError(map[string]string{"email": "Email is required"})
	}

	user, err = s.userRepo.FindUserByEmail(ctx, email)
	switch {
	case err == nil:
		user.AuthProvider = provider
		user.ProviderUserID = providerUserID
		user.UpdatedAt = s.Now()
		if err := s.userRepo.UpdateUser(ctx, *user); err != nil {
			return nil, fmt.Errorf("failed to link provider to user: %w", err)
		}
		s.LogInfo(ctx, "Linked external identity to existing profile", slog.String("user_id", user.ID))
		return user, nil
	case !errors.Is(err, apperrors.ErrNotFound):
		return nil, fmt.Errorf("failed to look up user by email: %w", err)
	}

	now := s.Now()
	profile := domain.UserProfile{
		ID:             newID(),
		Email:          email,
		FullName:       strings.TrimSpace(fullName),
		Role:           domain.RoleEmployee,
		MonthlyBudget:  decimal.Zero,
		IsActive:       true,
		AuthProvider:   provider,
		ProviderUserID: providerUserID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.userRepo.SaveUser(ctx, profile); err != nil {
		s.LogError(ctx, err, "Failed to create profile on first sign-in", slog.String("email", email))
		return nil, fmt.Errorf("failed to create user profile: %w", err)
	}
	s.LogInfo(ctx, "Profile created on first sign-in", slog.String("user_id", profile.ID))
	return &profile, nil
}

func (s *userService) UpdateProfile(ctx context.Context, identity domain.Identity, update domain.ProfileUpdate) (*domain.UserProfile, error) {
	if err := s.RequireIdentity(identity); err != nil {
		return nil, err
	}
	user, err := loadProfile(ctx, s.userRepo, identity.UserID)
	if err != nil {
		return nil, err
	}

	fields := map[string]string{}
	changed := false
	if update.FullName != nil {
		name := strings.TrimSpace(*update.FullName)
		switch {
		case name == "":
			fields["fullName"] = "Full name is required"
		case len([]rune(name)) > maxFullNameLength:
			fields["fullName"] = fmt.Sprintf("Full name must be at most %d characters", maxFullNameLength)
		case name != user.FullName:
			user.FullName = name
			changed = true
		}
	}
	if update.MonthlyBudget != nil {
		if update.MonthlyBudget.IsNegative() {
			fields["monthlyBudget"] = "Monthly budget must be 0 or more"
		} else if !update.MonthlyBudget.Equal(user.MonthlyBudget) {
			user.MonthlyBudget = *update.MonthlyBudget
			changed = true
		}
	}
	if len(fields) > 0 {
		return nil, apperrors.NewValidationError(fields)
	}
	if !changed {
		return user, nil
	}

	user.UpdatedAt = s.Now()
	if err := s.userRepo.UpdateUser(ctx, *user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

func (s *userService) AdminUpdateUser(ctx context.Context, identity domain.Identity, userID string, update domain.AdminProfileUpdate) (*domain.UserProfile, error) {
	if err := s.RequireIdentity(identity); err != nil {
		return nil, err
	}
	admin, err := loadProfile(ctx, s.userRepo, identity.UserID)
	if err != nil {
		return nil, err
	}
	if !policy.HasRole(admin, domain.RoleAdmin) || !admin.IsActive {
		return nil, apperrors.NewForbiddenError("Only admins can update other users")
	}
	user, err := loadProfile(ctx, s.userRepo, userID)
	if err != nil {
		return nil, err
	}

	fields := map[string]string{}
	if update.Role != nil {
		role, ok := domain.ParseRole(string(*update.Role))
		if !ok {
			fields["role"] = "Role must be one of: employee, finance, manager, admin"
		} else {
			user.Role = role
		}
	}
	if update.ApprovalLimit != nil {
		if update.ApprovalLimit.IsNegative() {
			fields["approvalLimit"] = "Approval limit must be 0 or more"
		}
		user.ApprovalLimit = update.ApprovalLimit
	}
	if update.SingleTransactionLimit != nil {
		if update.SingleTransactionLimit.IsNegative() {
			fields["singleTransactionLimit"] = "Single transaction limit must be 0 or more"
		}
		user.SingleTransactionLimit = update.SingleTransactionLimit
	}
	switch {
	case update.ClearManager:
		user.ManagerID = nil
	case update.ManagerID != nil:
		if *update.ManagerID == user.ID {
			fields["managerId"] = "A user cannot manage themselves"
			break
		}
		if _, err := s.userRepo.FindUserByID(ctx, *update.ManagerID); err != nil {
			if !errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("failed to load manager profile: %w", err)
			}
			fields["managerId"] = "Manager not found"
			break
		}
		managerID := *update.ManagerID
		user.ManagerID = &managerID
	}
	if update.IsActive != nil {
		if user.ID == admin.ID && !*update.IsActive {
			fields["isActive"] = "Admins cannot deactivate themselves"
		} else {
			user.IsActive = *update.IsActive
		}
	}
	if len(fields) > 0 {
		return nil, apperrors.NewValidationError(fields)
	}

	user.UpdatedAt = s.Now()
	if err := s.userRepo.UpdateUser(ctx, *user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	s.LogInfo(ctx, "Profile updated by admin", slog.String("user_id", user.ID), slog.String("role", string(user.Role)))
	return user, nil
}

func (s *userService) UpdateRefreshToken(ctx context.Context, userID string, refreshTokenHash string, refreshTokenExpiryTime time.Time) error {
	if err := s.userRepo.UpdateRefreshToken(ctx, userID, refreshTokenHash, refreshTokenExpiryTime); err != nil {
		return fmt.Errorf("failed to update refresh token: %w", err)
	}
	return nil
}

func (s *userService) ClearRefreshToken(ctx context.Context, userID string) error {
	if err := s.userRepo.ClearRefreshToken(ctx, userID); err != nil {
		return fmt.Errorf("failed to clear refresh token: %w", err)
	}
	return nil
}
