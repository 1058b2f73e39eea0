package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bonhomie/fest-system/models"
	"github.com/bonhomie/fest-system/repositories"
)

// offlineEmailDomain is used for synthesized emails of staff-created
// profiles. These addresses are never mailed; they only satisfy the
// email uniqueness constraint.
const offlineEmailDomain = "offline.bonhomie.local"

type ProfileService interface {
	GetByID(ctx context.Context, id int) (*models.Profile, error)
	ResolveByRollNumber(ctx context.Context, rollNumber string) (*models.Profile, error)
	CreateOfflineProfile(ctx context.Context, input OfflineProfileInput, actorID int) (*models.Profile, error)
	Update(ctx context.Context, profile *models.Profile) error
	Delete(ctx context.Context, id int, actorID int) error
	List(ctx context.Context, filter repositories.ListProfilesFilter) ([]models.Profile, error)
}

type OfflineProfileInput struct {
	FullName   string `json:"full_name"`
	RollNumber string `json:"roll_number"`
	Department string `json:"department"`
	Gender     string `json:"gender"`
	Phone      string `json:"phone"`
}

type profileService struct {
	profileRepo repositories.ProfileRepository
	auditRepo   repositories.AuditRepository
}

func NewProfileService(profileRepo repositories.ProfileRepository, auditRepo repositories.AuditRepository) ProfileService {
	return &profileService{
		profileRepo: profileRepo,
		auditRepo:   auditRepo,
	}
}

func (s *profileService) GetByID(ctx context.Context, id int) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	profile.PasswordHash = ""
	return profile, nil
}

// ResolveByRollNumber resolves a roll number to an existing profile.
// ErrProfileNotFound signals the caller may offer offline profile
// creation instead.
func (s *profileService) ResolveByRollNumber(ctx context.Context, rollNumber string) (*models.Profile, error) {
	if err := validateRollNumber(rollNumber); err != nil {
		return nil, err
	}
	profile, err := s.profileRepo.GetByRollNumber(ctx, strings.TrimSpace(rollNumber))
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to resolve roll number: %w", err)
	}
	profile.PasswordHash = ""
	return profile, nil
}

// CreateOfflineProfile synthesizes a profile for a walk-in participant:
// generated email, no login credential, flagged as admin-created.
func (s *profileService) CreateOfflineProfile(ctx context.Context, input OfflineProfileInput, actorID int) (*models.Profile, error) {
	if input.FullName == "" {
		return nil, fmt.Errorf("%w: full name is required", ErrValidationFailed)
	}
	if err := validateRollNumber(input.RollNumber); err != nil {
		return nil, err
	}
	if input.Phone != "" {
		if err := validatePhone(input.Phone); err != nil {
			return nil, err
		}
	}

	roll := strings.ToUpper(strings.TrimSpace(input.RollNumber))
	profile := &models.Profile{
		FullName:       strings.TrimSpace(input.FullName),
		RollNumber:     roll,
		Department:     input.Department,
		Gender:         strings.ToLower(input.Gender),
		Email:          fmt.Sprintf("%s@%s", strings.ToLower(roll), offlineEmailDomain),
		Phone:          input.Phone,
		Role:           models.RoleStudent,
		IsAdminCreated: true,
	}

	if err := s.profileRepo.Create(ctx, profile); err != nil {
		switch {
		case errors.Is(err, repositories.ErrProfileEmailConflict):
			return nil, ErrProfileEmailConflict
		case errors.Is(err, repositories.ErrProfileRollNumConflict):
			return nil, ErrProfileRollNumConflict
		}
		return nil, fmt.Errorf("failed to create offline profile: %w", err)
	}

	_ = s.auditRepo.Create(ctx, &models.AuditLog{
		ActorID:  actorID,
		Action:   "offline_profile_created",
		Entity:   "profile",
		EntityID: profile.ID,
	})

	return profile, nil
}

func (s *profileService) Update(ctx context.Context, profile *models.Profile) error {
	if profile.Phone != "" {
		if err := validatePhone(profile.Phone); err != nil {
			return err
		}
	}
	if err := s.profileRepo.Update(ctx, profile); err != nil {
		switch {
		case errors.Is(err, repositories.ErrProfileNotFound):
			return ErrProfileNotFound
		case errors.Is(err, repositories.ErrProfileEmailConflict):
			return ErrProfileEmailConflict
		case errors.Is(err, repositories.ErrProfileRollNumConflict):
			return ErrProfileRollNumConflict
		}
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

func (s *profileService) Delete(ctx context.Context, id int, actorID int) error {
	if err := s.profileRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return ErrProfileNotFound
		}
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	_ = s.auditRepo.Create(ctx, &models.AuditLog{
		ActorID:  actorID,
		Action:   "profile_deleted",
		Entity:   "profile",
		EntityID: id,
	})
	return nil
}

func (s *profileService) List(ctx context.Context, filter repositories.ListProfilesFilter) ([]models.Profile, error) {
	profiles, err := s.profileRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	for i := range profiles {
		profiles[i].PasswordHash = ""
	}
	return profiles, nil
}
