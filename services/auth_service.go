package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bonhomie/fest-system/models"
	"github.com/bonhomie/fest-system/repositories"
	"github.com/bonhomie/fest-system/utils"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*models.Profile, error)
	Login(ctx context.Context, input LoginInput) (*models.Profile, error)
	VerifyPassword(ctx context.Context, profileID int, password string) error
	UpdatePassword(ctx context.Context, profileID int, currentPassword, newPassword string) error
}

type RegisterInput struct {
	FullName   string `json:"full_name"`
	RollNumber string `json:"roll_number"`
	Department string `json:"department"`
	Gender     string `json:"gender"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Password   string `json:"password"`
}

type LoginInput struct {
	Email    string
	Password string
}

type authService struct {
	profileRepo repositories.ProfileRepository
}

func NewAuthService(profileRepo repositories.ProfileRepository) AuthService {
	return &authService{profileRepo: profileRepo}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*models.Profile, error) {
	if input.FullName == "" || input.Email == "" {
		return nil, fmt.Errorf("%w: full name and email are required", ErrValidationFailed)
	}
	if !utils.IsValidEmail(strings.TrimSpace(input.Email)) {
		return nil, fmt.Errorf("%w: email address is malformed", ErrValidationFailed)
	}
	if len(input.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}
	if err := validateRollNumber(input.RollNumber); err != nil {
		return nil, err
	}
	if err := validatePhone(input.Phone); err != nil {
		return nil, err
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	profile := &models.Profile{
		FullName:     strings.TrimSpace(input.FullName),
		RollNumber:   strings.ToUpper(strings.TrimSpace(input.RollNumber)),
		Department:   input.Department,
		Gender:       strings.ToLower(input.Gender),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		Phone:        input.Phone,
		Role:         models.RoleStudent,
		PasswordHash: hash,
	}

	if err := s.profileRepo.Create(ctx, profile); err != nil {
		switch {
		case errors.Is(err, repositories.ErrProfileEmailConflict):
			return nil, ErrProfileEmailConflict
		case errors.Is(err, repositories.ErrProfileRollNumConflict):
			return nil, ErrProfileRollNumConflict
		}
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	profile.PasswordHash = ""
	return profile, nil
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find profile by email: %w", err)
	}

	// Offline profiles have no credential and can never log in.
	if profile.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(input.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to compare password hash: %w", err)
	}

	profile.PasswordHash = ""
	return profile, nil
}

// VerifyPassword re-checks the current password for sensitive actions,
// the same check Login performs but addressed by profile id.
func (s *authService) VerifyPassword(ctx context.Context, profileID int, password string) error {
	profile, err := s.profileRepo.GetByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return ErrProfileNotFound
		}
		return fmt.Errorf("failed to get profile: %w", err)
	}
	if profile.PasswordHash == "" {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

func (s *authService) UpdatePassword(ctx context.Context, profileID int, currentPassword, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return ErrPasswordTooShort
	}
	if err := s.VerifyPassword(ctx, profileID, currentPassword); err != nil {
		return err
	}
	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.profileRepo.UpdatePasswordHash(ctx, profileID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}
