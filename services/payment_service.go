package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bonhomie/fest-system/models"
	"github.com/bonhomie/fest-system/repositories"
)

type PaymentService interface {
	Verify(ctx context.Context, registrationID int, actorID int) (*models.Registration, error)
	Reject(ctx context.Context, registrationID int, actorID int) (*models.Registration, error)
}

type paymentService struct {
	db               *sql.DB
	registrationRepo repositories.RegistrationRepository
	auditRepo        repositories.AuditRepository
	logger           *slog.Logger
}

func NewPaymentService(
	db *sql.DB,
	registrationRepo repositories.RegistrationRepository,
	auditRepo repositories.AuditRepository,
	logger *slog.Logger,
) PaymentService {
	return &paymentService{
		db:               db,
		registrationRepo: registrationRepo,
		auditRepo:        auditRepo,
		logger:           logger,
	}
}

// Verify confirms a pending registration. Cash payments need no
// evidence; online and hybrid payments require both a transaction id
// and an uploaded screenshot. Verifying a team leader cascades to every
// embedded member's registration for the same event, in one
// transaction with the leader's own transition.
func (s *paymentService) Verify(ctx context.Context, registrationID int, actorID int) (*models.Registration, error) {
	reg, err := s.registrationRepo.GetByID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, repositories.ErrRegistrationNotFound) {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to get registration: %w", err)
	}

	if reg.Status == models.RegistrationRejected {
		return nil, ErrRegistrationRejected
	}
	if reg.Status != models.RegistrationPending {
		return nil, ErrRegistrationNotPending
	}

	if reg.PaymentMode != models.PaymentModeCash {
		if derefString(reg.TransactionID) == "" || derefString(reg.ScreenshotKey) == "" {
			return nil, ErrPaymentEvidenceMissing
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.registrationRepo.UpdateStatus(ctx, tx, reg.ID, models.RegistrationConfirmed); err != nil {
		return nil, fmt.Errorf("failed to confirm registration: %w", err)
	}
	if reg.IsTeamLeader() {
		if err := s.registrationRepo.BulkUpdateStatus(ctx, tx, reg.EventID, reg.MemberProfileIDs(), models.RegistrationConfirmed); err != nil {
			return nil, fmt.Errorf("failed to cascade confirmation to members: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit verification: %w", err)
	}

	reg.Status = models.RegistrationConfirmed
	s.logger.Info("registration verified",
		slog.Int("registration_id", reg.ID),
		slog.Int("event_id", reg.EventID),
		slog.Int("cascaded_members", len(reg.TeamMembers)))

	_ = s.auditRepo.Create(ctx, &models.AuditLog{
		ActorID:  actorID,
		Action:   "payment_verified",
		Entity:   "registration",
		EntityID: reg.ID,
	})
	return reg, nil
}

// Reject is a one-way transition; there is no un-reject path.
func (s *paymentService) Reject(ctx context.Context, registrationID int, actorID int) (*models.Registration, error) {
	reg, err := s.registrationRepo.GetByID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, repositories.ErrRegistrationNotFound) {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to get registration: %w", err)
	}

	if reg.Status != models.RegistrationPending {
		return nil, ErrRegistrationNotPending
	}

	if err := s.registrationRepo.UpdateStatus(ctx, nil, reg.ID, models.RegistrationRejected); err != nil {
		return nil, fmt.Errorf("failed to reject registration: %w", err)
	}
	reg.Status = models.RegistrationRejected

	_ = s.auditRepo.Create(ctx, &models.AuditLog{
		ActorID:  actorID,
		Action:   "payment_rejected",
		Entity:   "registration",
		EntityID: reg.ID,
	})
	return reg, nil
}
