package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bonhomie/fest-system/live"
	"github.com/bonhomie/fest-system/models"
	"github.com/bonhomie/fest-system/repositories"
)

type ResultService interface {
	Announce(ctx context.Context, input AnnounceInput, actorID int) ([]*models.EventResult, error)
	ListByEvent(ctx context.Context, eventID int) ([]*models.EventResult, error)
	ListByProfile(ctx context.Context, profileID int) ([]*models.EventResult, error)
}

type AnnounceInput struct {
	EventID     int  `json:"event_id"`
	FirstRegID  int  `json:"first_reg_id"`
	SecondRegID *int `json:"second_reg_id"`
	ThirdRegID  *int `json:"third_reg_id"`
}

type resultService struct {
	db               *sql.DB
	resultRepo       repositories.ResultRepository
	eventRepo        repositories.EventRepository
	registrationRepo repositories.RegistrationRepository
	profileRepo      repositories.ProfileRepository
	auditRepo        repositories.AuditRepository
	hub              *live.Hub
	logger           *slog.Logger
}

func NewResultService(
	db *sql.DB,
	resultRepo repositories.ResultRepository,
	eventRepo repositories.EventRepository,
	registrationRepo repositories.RegistrationRepository,
	profileRepo repositories.ProfileRepository,
	auditRepo repositories.AuditRepository,
	hub *live.Hub,
	logger *slog.Logger,
) ResultService {
	return &resultService{
		db:               db,
		resultRepo:       resultRepo,
		eventRepo:        eventRepo,
		registrationRepo: registrationRepo,
		profileRepo:      profileRepo,
		auditRepo:        auditRepo,
		hub:              hub,
		logger:           logger,
	}
}

// Announce writes the full result set for an event in one transaction:
// win-count increments for every winning profile and embedded member,
// one snapshot row per position, then the event's winner references and
// results_announced flag. A second announcement is refused.
func (s *resultService) Announce(ctx context.Context, input AnnounceInput, actorID int) ([]*models.EventResult, error) {
	if input.FirstRegID <= 0 {
		return nil, ErrFirstPlaceRequired
	}

	event, err := s.eventRepo.GetByID(ctx, input.EventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if event.ResultsAnnounced {
		return nil, ErrResultsAlreadyAnnounced
	}

	type pick struct {
		position int
		regID    int
	}
	picks := []pick{{1, input.FirstRegID}}
	if input.SecondRegID != nil {
		picks = append(picks, pick{2, *input.SecondRegID})
	}
	if input.ThirdRegID != nil {
		picks = append(picks, pick{3, *input.ThirdRegID})
	}

	seen := make(map[int]bool, len(picks))
	winners := make([]*models.Registration, 0, len(picks))
	for _, p := range picks {
		if seen[p.regID] {
			return nil, ErrDuplicateWinner
		}
		seen[p.regID] = true

		reg, err := s.registrationRepo.GetByID(ctx, p.regID)
		if err != nil {
			if errors.Is(err, repositories.ErrRegistrationNotFound) {
				return nil, ErrRegistrationNotFound
			}
			return nil, fmt.Errorf("failed to get winner registration: %w", err)
		}
		if reg.EventID != event.ID {
			return nil, fmt.Errorf("%w: registration %d belongs to another event", ErrValidationFailed, reg.ID)
		}
		if reg.Status != models.RegistrationConfirmed {
			return nil, ErrWinnerNotConfirmed
		}
		winners = append(winners, reg)
	}

	announcedAt := time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	results := make([]*models.EventResult, 0, len(picks))
	for i, p := range picks {
		reg := winners[i]

		profileIDs := append([]int{reg.ProfileID}, reg.MemberProfileIDs()...)
		if err := s.profileRepo.IncrementWins(ctx, tx, profileIDs); err != nil {
			return nil, fmt.Errorf("failed to increment wins for position %d: %w", p.position, err)
		}

		result := &models.EventResult{
			EventID:        event.ID,
			Position:       p.position,
			RegistrationID: reg.ID,
			ProfileID:      reg.ProfileID,
			TeamMembers:    reg.TeamMembers,
			AnnouncedAt:    announcedAt,
		}
		if err := s.resultRepo.Create(ctx, tx, result); err != nil {
			if errors.Is(err, repositories.ErrResultPositionConflict) {
				return nil, ErrResultsAlreadyAnnounced
			}
			return nil, fmt.Errorf("failed to snapshot result for position %d: %w", p.position, err)
		}
		results = append(results, result)
	}

	winnerUpdate := repositories.WinnerUpdate{
		FirstPlaceRegID:  input.FirstRegID,
		SecondPlaceRegID: input.SecondRegID,
		ThirdPlaceRegID:  input.ThirdRegID,
		AnnouncedAt:      announcedAt,
	}
	if err := s.eventRepo.SetWinners(ctx, tx, event.ID, winnerUpdate); err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			// The guard clause saw results_announced already set.
			return nil, ErrResultsAlreadyAnnounced
		}
		return nil, fmt.Errorf("failed to write event winners: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit result announcement: %w", err)
	}

	s.logger.Info("results announced",
		slog.Int("event_id", event.ID),
		slog.Int("positions", len(results)))

	_ = s.auditRepo.Create(ctx, &models.AuditLog{
		ActorID:  actorID,
		Action:   "results_announced",
		Entity:   "event",
		EntityID: event.ID,
	})
	s.hub.BroadcastToRoom(EventsRoom, live.Message{Type: "RESULTS_ANNOUNCED", Payload: map[string]int{"event_id": event.ID}})

	return results, nil
}

func (s *resultService) ListByEvent(ctx context.Context, eventID int) ([]*models.EventResult, error) {
	results, err := s.resultRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list event results: %w", err)
	}
	return results, nil
}

func (s *resultService) ListByProfile(ctx context.Context, profileID int) ([]*models.EventResult, error) {
	results, err := s.resultRepo.ListByProfile(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list profile results: %w", err)
	}
	return results, nil
}
