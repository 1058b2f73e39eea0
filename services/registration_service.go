package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/bonhomie/fest-system/models"
	"github.com/bonhomie/fest-system/repositories"
	"github.com/bonhomie/fest-system/storage"
)

type RegistrationService interface {
	RegisterIndividual(ctx context.Context, input RegisterIndividualInput) (*models.Registration, error)
	RegisterTeam(ctx context.Context, input RegisterTeamInput) (*models.Registration, error)
	AddMember(ctx context.Context, leaderRegID, memberProfileID int) (*models.Registration, error)
	RemoveMember(ctx context.Context, leaderRegID, memberProfileID int, deleteTeam bool) (*models.Registration, error)
	ReplaceMember(ctx context.Context, leaderRegID, oldProfileID, newProfileID int) (*models.Registration, error)
	DeleteTeam(ctx context.Context, leaderRegID int) error
	GetByID(ctx context.Context, id int) (*models.Registration, error)
	ListByEvent(ctx context.Context, eventID int, status *models.RegistrationStatus) ([]*models.Registration, error)
	ListByProfile(ctx context.Context, profileID int) ([]*models.Registration, error)
	UploadScreenshot(ctx context.Context, regID int, transactionID string, contentType string, file io.Reader) (*models.Registration, error)
}

type RegisterIndividualInput struct {
	EventID       int                `json:"event_id"`
	ProfileID     int                `json:"profile_id"`
	PaymentMode   models.PaymentMode `json:"payment_mode"`
	TransactionID *string            `json:"transaction_id"`
}

type RegisterTeamInput struct {
	EventID          int                `json:"event_id"`
	LeaderProfileID  int                `json:"leader_profile_id"`
	MemberProfileIDs []int              `json:"member_profile_ids"`
	PaymentMode      models.PaymentMode `json:"payment_mode"`
	TransactionID    *string            `json:"transaction_id"`
}

type registrationService struct {
	db               *sql.DB
	registrationRepo repositories.RegistrationRepository
	eventRepo        repositories.EventRepository
	profileRepo      repositories.ProfileRepository
	uploader         storage.FileUploader
	logger           *slog.Logger
}

func NewRegistrationService(
	db *sql.DB,
	registrationRepo repositories.RegistrationRepository,
	eventRepo repositories.EventRepository,
	profileRepo repositories.ProfileRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) RegistrationService {
	return &registrationService{
		db:               db,
		registrationRepo: registrationRepo,
		eventRepo:        eventRepo,
		profileRepo:      profileRepo,
		uploader:         uploader,
		logger:           logger,
	}
}

func (s *registrationService) getEventForRegistration(ctx context.Context, eventID int) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if event.ResultsAnnounced || event.Status == models.EventStatusCompleted || event.Status == models.EventStatusCanceled {
		return nil, ErrRegistrationNotOpen
	}
	return event, nil
}

func (s *registrationService) getProfile(ctx context.Context, profileID int) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

// initialStatus implements the offline-registration rule: cash
// registrations are auto-confirmed, everything else starts pending.
func initialStatus(paymentMode models.PaymentMode) models.RegistrationStatus {
	if paymentMode == models.PaymentModeCash {
		return models.RegistrationConfirmed
	}
	return models.RegistrationPending
}

func validatePaymentModeForEvent(event *models.Event, mode models.PaymentMode) error {
	switch mode {
	case models.PaymentModeCash, models.PaymentModeOnline, models.PaymentModeHybrid:
	default:
		return ErrEventInvalidPaymentMode
	}
	// A hybrid event accepts either mode; otherwise the registration
	// must use the event's configured mode.
	if event.PaymentMode != models.PaymentModeHybrid && mode != event.PaymentMode {
		return ErrEventInvalidPaymentMode
	}
	return nil
}

func (s *registrationService) RegisterIndividual(ctx context.Context, input RegisterIndividualInput) (*models.Registration, error) {
	event, err := s.getEventForRegistration(ctx, input.EventID)
	if err != nil {
		return nil, err
	}
	if event.IsTeamEvent() {
		return nil, ErrEventNotIndividual
	}
	if err := validatePaymentModeForEvent(event, input.PaymentMode); err != nil {
		return nil, err
	}

	profile, err := s.getProfile(ctx, input.ProfileID)
	if err != nil {
		return nil, err
	}
	if err := validateGenderForEvent(event, profile.Gender); err != nil {
		return nil, err
	}

	reg := &models.Registration{
		EventID:       input.EventID,
		ProfileID:     input.ProfileID,
		Status:        initialStatus(input.PaymentMode),
		PaymentMode:   input.PaymentMode,
		TransactionID: input.TransactionID,
	}

	if err := s.registrationRepo.Create(ctx, nil, reg); err != nil {
		if errors.Is(err, repositories.ErrRegistrationConflict) {
			return nil, ErrRegistrationConflict
		}
		return nil, fmt.Errorf("failed to create registration: %w", err)
	}
	return reg, nil
}

// RegisterTeam creates the leader row carrying the full member array
// plus one index row per member. The whole write runs in a single
// transaction, so a failing member insert can never leave an orphaned
// leader row behind.
func (s *registrationService) RegisterTeam(ctx context.Context, input RegisterTeamInput) (*models.Registration, error) {
	event, err := s.getEventForRegistration(ctx, input.EventID)
	if err != nil {
		return nil, err
	}
	if !event.IsTeamEvent() {
		return nil, ErrEventNotTeamEvent
	}
	if err := validatePaymentModeForEvent(event, input.PaymentMode); err != nil {
		return nil, err
	}

	teamSize := len(input.MemberProfileIDs) + 1
	if teamSize < event.MinTeamSize || teamSize > event.MaxTeamSize {
		return nil, ErrTeamSizeOutOfRange
	}

	leader, err := s.getProfile(ctx, input.LeaderProfileID)
	if err != nil {
		return nil, err
	}
	if err := validateGenderForEvent(event, leader.Gender); err != nil {
		return nil, err
	}

	seen := map[int]bool{input.LeaderProfileID: true}
	members := make([]models.TeamMember, 0, len(input.MemberProfileIDs))
	for _, memberID := range input.MemberProfileIDs {
		if seen[memberID] {
			return nil, ErrDuplicateTeamMember
		}
		seen[memberID] = true

		profile, err := s.getProfile(ctx, memberID)
		if err != nil {
			return nil, err
		}
		if err := validateGenderForEvent(event, profile.Gender); err != nil {
			return nil, err
		}
		if err := s.ensureNotInAnotherTeam(ctx, event.ID, memberID); err != nil {
			return nil, err
		}
		members = append(members, toTeamMember(profile))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	teamNumber, err := s.registrationRepo.NextTeamNumber(ctx, tx, event.ID)
	if err != nil {
		return nil, err
	}

	leaderReg := &models.Registration{
		EventID:       input.EventID,
		ProfileID:     input.LeaderProfileID,
		Status:        initialStatus(input.PaymentMode),
		PaymentMode:   input.PaymentMode,
		TeamMembers:   members,
		TeamNumber:    &teamNumber,
		TransactionID: input.TransactionID,
	}
	if err := s.registrationRepo.Create(ctx, tx, leaderReg); err != nil {
		if errors.Is(err, repositories.ErrRegistrationConflict) {
			return nil, ErrRegistrationConflict
		}
		return nil, fmt.Errorf("failed to create leader registration: %w", err)
	}

	for _, member := range members {
		memberReg := &models.Registration{
			EventID:     input.EventID,
			ProfileID:   member.ProfileID,
			Status:      leaderReg.Status,
			PaymentMode: input.PaymentMode,
		}
		if err := s.registrationRepo.Create(ctx, tx, memberReg); err != nil {
			if errors.Is(err, repositories.ErrRegistrationConflict) {
				return nil, ErrRegistrationConflict
			}
			return nil, fmt.Errorf("failed to create member registration: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit team registration: %w", err)
	}
	return leaderReg, nil
}

// ensureNotInAnotherTeam keeps a profile from appearing in two leaders'
// member arrays for the same event.
func (s *registrationService) ensureNotInAnotherTeam(ctx context.Context, eventID, profileID int) error {
	_, err := s.registrationRepo.FindLeaderWithMember(ctx, eventID, profileID)
	if err == nil {
		return ErrMemberAlreadyInTeam
	}
	if errors.Is(err, repositories.ErrRegistrationNotFound) {
		return nil
	}
	return fmt.Errorf("failed to check member team: %w", err)
}

func (s *registrationService) getLeader(ctx context.Context, leaderRegID int) (*models.Registration, error) {
	leader, err := s.GetByID(ctx, leaderRegID)
	if err != nil {
		return nil, err
	}
	if !leader.IsTeamLeader() {
		return nil, ErrNotTeamLeader
	}
	return leader, nil
}

func (s *registrationService) AddMember(ctx context.Context, leaderRegID, memberProfileID int) (*models.Registration, error) {
	leader, err := s.getLeader(ctx, leaderRegID)
	if err != nil {
		return nil, err
	}
	event, err := s.getEventForRegistration(ctx, leader.EventID)
	if err != nil {
		return nil, err
	}
	if leader.TeamSize()+1 > event.MaxTeamSize {
		return nil, ErrTeamSizeOutOfRange
	}

	profile, err := s.getProfile(ctx, memberProfileID)
	if err != nil {
		return nil, err
	}
	if err := validateGenderForEvent(event, profile.Gender); err != nil {
		return nil, err
	}
	if err := s.ensureNotInAnotherTeam(ctx, event.ID, memberProfileID); err != nil {
		return nil, err
	}

	members := append(leader.TeamMembers, toTeamMember(profile))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.registrationRepo.UpdateTeamMembers(ctx, tx, leader.ID, members); err != nil {
		return nil, fmt.Errorf("failed to append team member: %w", err)
	}
	memberReg := &models.Registration{
		EventID:     leader.EventID,
		ProfileID:   memberProfileID,
		Status:      leader.Status,
		PaymentMode: leader.PaymentMode,
	}
	if err := s.registrationRepo.Create(ctx, tx, memberReg); err != nil {
		if errors.Is(err, repositories.ErrRegistrationConflict) {
			return nil, ErrRegistrationConflict
		}
		return nil, fmt.Errorf("failed to create member registration: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit member addition: %w", err)
	}

	leader.TeamMembers = members
	return leader, nil
}

// RemoveMember drops one member from the team. When the resulting size
// would fall below the event minimum the call is refused unless the
// caller explicitly opted into deleting the whole team.
func (s *registrationService) RemoveMember(ctx context.Context, leaderRegID, memberProfileID int, deleteTeam bool) (*models.Registration, error) {
	leader, err := s.getLeader(ctx, leaderRegID)
	if err != nil {
		return nil, err
	}
	event, err := s.eventRepo.GetByID(ctx, leader.EventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	idx := -1
	for i, m := range leader.TeamMembers {
		if m.ProfileID == memberProfileID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrMemberNotInTeam
	}

	if leader.TeamSize()-1 < event.MinTeamSize {
		if !deleteTeam {
			return nil, ErrTeamBelowMinimum
		}
		if err := s.DeleteTeam(ctx, leaderRegID); err != nil {
			return nil, err
		}
		return nil, nil
	}

	members := make([]models.TeamMember, 0, len(leader.TeamMembers)-1)
	members = append(members, leader.TeamMembers[:idx]...)
	members = append(members, leader.TeamMembers[idx+1:]...)

	memberReg, err := s.registrationRepo.GetByEventAndProfile(ctx, leader.EventID, memberProfileID)
	if err != nil && !errors.Is(err, repositories.ErrRegistrationNotFound) {
		return nil, fmt.Errorf("failed to find member registration: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.registrationRepo.UpdateTeamMembers(ctx, tx, leader.ID, members); err != nil {
		return nil, fmt.Errorf("failed to shrink team member list: %w", err)
	}
	if memberReg != nil {
		if err := s.registrationRepo.Delete(ctx, tx, memberReg.ID); err != nil && !errors.Is(err, repositories.ErrRegistrationNotFound) {
			return nil, fmt.Errorf("failed to delete member registration: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit member removal: %w", err)
	}

	leader.TeamMembers = members
	return leader, nil
}

// ReplaceMember rewrites one entry in the leader's array and repoints
// the member index row, as a single transaction.
func (s *registrationService) ReplaceMember(ctx context.Context, leaderRegID, oldProfileID, newProfileID int) (*models.Registration, error) {
	leader, err := s.getLeader(ctx, leaderRegID)
	if err != nil {
		return nil, err
	}
	event, err := s.getEventForRegistration(ctx, leader.EventID)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, m := range leader.TeamMembers {
		if m.ProfileID == oldProfileID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrMemberNotInTeam
	}

	newProfile, err := s.getProfile(ctx, newProfileID)
	if err != nil {
		return nil, err
	}
	if err := validateGenderForEvent(event, newProfile.Gender); err != nil {
		return nil, err
	}
	if err := s.ensureNotInAnotherTeam(ctx, event.ID, newProfileID); err != nil {
		return nil, err
	}

	members := make([]models.TeamMember, len(leader.TeamMembers))
	copy(members, leader.TeamMembers)
	members[idx] = toTeamMember(newProfile)

	oldMemberReg, err := s.registrationRepo.GetByEventAndProfile(ctx, leader.EventID, oldProfileID)
	if err != nil {
		if errors.Is(err, repositories.ErrRegistrationNotFound) {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to find member registration: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.registrationRepo.UpdateTeamMembers(ctx, tx, leader.ID, members); err != nil {
		return nil, fmt.Errorf("failed to rewrite team member entry: %w", err)
	}
	if err := s.registrationRepo.RepointProfile(ctx, tx, oldMemberReg.ID, newProfileID); err != nil {
		if errors.Is(err, repositories.ErrRegistrationConflict) {
			return nil, ErrRegistrationConflict
		}
		return nil, fmt.Errorf("failed to repoint member registration: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit member replacement: %w", err)
	}

	leader.TeamMembers = members
	return leader, nil
}

// DeleteTeam cascades: all member index rows first, then the leader row.
func (s *registrationService) DeleteTeam(ctx context.Context, leaderRegID int) error {
	leader, err := s.getLeader(ctx, leaderRegID)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.registrationRepo.DeleteByEventAndProfiles(ctx, tx, leader.EventID, leader.MemberProfileIDs()); err != nil {
		return fmt.Errorf("failed to delete member registrations: %w", err)
	}
	if err := s.registrationRepo.Delete(ctx, tx, leader.ID); err != nil {
		return fmt.Errorf("failed to delete leader registration: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit team deletion: %w", err)
	}
	return nil
}

func (s *registrationService) GetByID(ctx context.Context, id int) (*models.Registration, error) {
	reg, err := s.registrationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrRegistrationNotFound) {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to get registration: %w", err)
	}
	populateScreenshotURL(reg, s.uploader)
	return reg, nil
}

func (s *registrationService) ListByEvent(ctx context.Context, eventID int, status *models.RegistrationStatus) ([]*models.Registration, error) {
	regs, err := s.registrationRepo.ListByEvent(ctx, eventID, repositories.ListRegistrationsFilter{
		Status:      status,
		WithProfile: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}
	for _, reg := range regs {
		populateScreenshotURL(reg, s.uploader)
	}
	return regs, nil
}

func (s *registrationService) ListByProfile(ctx context.Context, profileID int) ([]*models.Registration, error) {
	regs, err := s.registrationRepo.ListByProfile(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations by profile: %w", err)
	}
	return regs, nil
}

// UploadScreenshot stores the payment screenshot and records the proof
// pair on the registration.
func (s *registrationService) UploadScreenshot(ctx context.Context, regID int, transactionID string, contentType string, file io.Reader) (*models.Registration, error) {
	reg, err := s.GetByID(ctx, regID)
	if err != nil {
		return nil, err
	}
	if reg.Status == models.RegistrationRejected {
		return nil, ErrRegistrationRejected
	}

	ext, err := GetExtensionFromContentType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	key := fmt.Sprintf("payments/%d/%d%s", reg.EventID, time.Now().UnixNano(), ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, fmt.Errorf("failed to upload payment screenshot: %w", err)
	}

	var txnID *string
	if transactionID != "" {
		txnID = &transactionID
	} else {
		txnID = reg.TransactionID
	}
	if err := s.registrationRepo.UpdatePaymentProof(ctx, reg.ID, txnID, &key); err != nil {
		if delErr := s.uploader.Delete(ctx, key); delErr != nil {
			s.logger.Warn("failed to delete orphaned screenshot", slog.String("key", key), slog.Any("error", delErr))
		}
		return nil, fmt.Errorf("failed to store payment proof: %w", err)
	}

	reg.TransactionID = txnID
	reg.ScreenshotKey = &key
	populateScreenshotURL(reg, s.uploader)
	return reg, nil
}
