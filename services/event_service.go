package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/bonhomie/fest-system/live"
	"github.com/bonhomie/fest-system/models"
	"github.com/bonhomie/fest-system/repositories"
	"github.com/bonhomie/fest-system/storage"
)

// EventsRoom is the hub room for clients watching the events list.
const EventsRoom = "events"

type EventService interface {
	Create(ctx context.Context, input EventInput, creatorID int) (*models.Event, error)
	GetByID(ctx context.Context, id int) (*models.Event, error)
	List(ctx context.Context, filter repositories.ListEventsFilter) ([]models.Event, error)
	Update(ctx context.Context, id int, input EventInput, actorID int) (*models.Event, error)
	Delete(ctx context.Context, id int, actorID int) error
	GoLive(ctx context.Context, id int, override bool, actorID int) (*models.Event, error)
	EndLive(ctx context.Context, id int, actorID int) (*models.Event, error)
	AutoEndExpiredLive(ctx context.Context) error
	UploadCover(ctx context.Context, id int, contentType string, file io.Reader) (*models.Event, error)
	UploadQR(ctx context.Context, id int, contentType string, file io.Reader) (*models.Event, error)
	AssignCoordinator(ctx context.Context, eventID, coordinatorID int) (*models.EventAssignment, error)
	UnassignCoordinator(ctx context.Context, eventID, coordinatorID int) error
	ListCoordinators(ctx context.Context, eventID int) ([]*models.EventAssignment, error)
	ListAssignedEvents(ctx context.Context, coordinatorID int) ([]models.Event, error)
	AuditTrail(ctx context.Context, eventID int) ([]*models.AuditLog, error)
	CanManage(ctx context.Context, eventID, profileID int, role models.ProfileRole) error
}

type EventInput struct {
	Name          string              `json:"name"`
	Description   *string             `json:"description"`
	Category      string              `json:"category"`
	Day           int                 `json:"day"`
	EventDate     time.Time           `json:"event_date"`
	EventTime     string              `json:"event_time"`
	Venue         string              `json:"venue"`
	Fee           int                 `json:"fee"`
	MinTeamSize   int                 `json:"min_team_size"`
	MaxTeamSize   int                 `json:"max_team_size"`
	PaymentMode   models.PaymentMode  `json:"payment_mode"`
	AllowedGender models.GenderPolicy `json:"allowed_gender"`
}

type eventService struct {
	eventRepo      repositories.EventRepository
	assignmentRepo repositories.AssignmentRepository
	profileRepo    repositories.ProfileRepository
	auditRepo      repositories.AuditRepository
	uploader       storage.FileUploader
	hub            *live.Hub
	logger         *slog.Logger
}

func NewEventService(
	eventRepo repositories.EventRepository,
	assignmentRepo repositories.AssignmentRepository,
	profileRepo repositories.ProfileRepository,
	auditRepo repositories.AuditRepository,
	uploader storage.FileUploader,
	hub *live.Hub,
	logger *slog.Logger,
) EventService {
	return &eventService{
		eventRepo:      eventRepo,
		assignmentRepo: assignmentRepo,
		profileRepo:    profileRepo,
		auditRepo:      auditRepo,
		uploader:       uploader,
		hub:            hub,
		logger:         logger,
	}
}

func validateEventInput(input EventInput) error {
	if input.Name == "" {
		return ErrEventNameRequired
	}
	if input.Day <= 0 {
		return ErrEventInvalidDay
	}
	if input.MinTeamSize < 1 || input.MaxTeamSize < input.MinTeamSize {
		return ErrEventInvalidTeamBounds
	}
	switch input.PaymentMode {
	case models.PaymentModeCash, models.PaymentModeOnline, models.PaymentModeHybrid:
	default:
		return ErrEventInvalidPaymentMode
	}
	switch input.AllowedGender {
	case models.GenderAny, models.GenderMale, models.GenderFemale:
	default:
		return ErrEventInvalidGenderPolicy
	}
	return nil
}

func (s *eventService) Create(ctx context.Context, input EventInput, creatorID int) (*models.Event, error) {
	if err := validateEventInput(input); err != nil {
		return nil, err
	}

	event := &models.Event{
		Name:          input.Name,
		Description:   input.Description,
		Category:      input.Category,
		Day:           input.Day,
		EventDate:     input.EventDate,
		EventTime:     input.EventTime,
		Venue:         input.Venue,
		Fee:           input.Fee,
		MinTeamSize:   input.MinTeamSize,
		MaxTeamSize:   input.MaxTeamSize,
		PaymentMode:   input.PaymentMode,
		AllowedGender: input.AllowedGender,
		Status:        models.EventStatusUpcoming,
		CreatedBy:     creatorID,
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		if errors.Is(err, repositories.ErrEventNameConflict) {
			return nil, ErrEventNameConflict
		}
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return event, nil
}

func (s *eventService) GetByID(ctx context.Context, id int) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	populateEventImageURLs(event, s.uploader)
	return event, nil
}

func (s *eventService) List(ctx context.Context, filter repositories.ListEventsFilter) ([]models.Event, error) {
	events, err := s.eventRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	for i := range events {
		populateEventImageURLs(&events[i], s.uploader)
	}
	return events, nil
}

func (s *eventService) Update(ctx context.Context, id int, input EventInput, actorID int) (*models.Event, error) {
	if err := validateEventInput(input); err != nil {
		return nil, err
	}

	event, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.ResultsAnnounced {
		return nil, ErrResultsAlreadyAnnounced
	}

	event.Name = input.Name
	event.Description = input.Description
	event.Category = input.Category
	event.Day = input.Day
	event.EventDate = input.EventDate
	event.EventTime = input.EventTime
	event.Venue = input.Venue
	event.Fee = input.Fee
	event.MinTeamSize = input.MinTeamSize
	event.MaxTeamSize = input.MaxTeamSize
	event.PaymentMode = input.PaymentMode
	event.AllowedGender = input.AllowedGender

	if err := s.eventRepo.Update(ctx, event); err != nil {
		switch {
		case errors.Is(err, repositories.ErrEventNotFound):
			return nil, ErrEventNotFound
		case errors.Is(err, repositories.ErrEventNameConflict):
			return nil, ErrEventNameConflict
		}
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	return event, nil
}

func (s *eventService) Delete(ctx context.Context, id int, actorID int) error {
	if err := s.eventRepo.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repositories.ErrEventNotFound):
			return ErrEventNotFound
		case errors.Is(err, repositories.ErrEventInUse):
			return ErrForbiddenOperation
		}
		return fmt.Errorf("failed to delete event: %w", err)
	}
	_ = s.auditRepo.Create(ctx, &models.AuditLog{
		ActorID:  actorID,
		Action:   "event_deleted",
		Entity:   "event",
		EntityID: id,
	})
	return nil
}

// GoLive flips an event live. The scheduled date must be today;
// a mismatch is refused unless the caller explicitly overrides.
func (s *eventService) GoLive(ctx context.Context, id int, override bool, actorID int) (*models.Event, error) {
	event, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.ResultsAnnounced {
		return nil, ErrResultsAlreadyAnnounced
	}

	if !sameDate(event.EventDate, time.Now()) && !override {
		return nil, ErrEventDateMismatch
	}

	if err := s.eventRepo.UpdateLiveStatus(ctx, id, true, models.EventStatusLive); err != nil {
		return nil, fmt.Errorf("failed to set event live: %w", err)
	}
	event.IsLive = true
	event.Status = models.EventStatusLive

	_ = s.auditRepo.Create(ctx, &models.AuditLog{
		ActorID:  actorID,
		Action:   "event_went_live",
		Entity:   "event",
		EntityID: id,
	})
	s.hub.BroadcastToRoom(EventsRoom, live.Message{Type: "EVENT_LIVE", Payload: event})

	return event, nil
}

func (s *eventService) EndLive(ctx context.Context, id int, actorID int) (*models.Event, error) {
	event, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	status := models.EventStatusUpcoming
	if event.ResultsAnnounced {
		status = models.EventStatusCompleted
	}
	if err := s.eventRepo.UpdateLiveStatus(ctx, id, false, status); err != nil {
		return nil, fmt.Errorf("failed to end event live status: %w", err)
	}
	event.IsLive = false
	event.Status = status

	_ = s.auditRepo.Create(ctx, &models.AuditLog{
		ActorID:  actorID,
		Action:   "event_ended_live",
		Entity:   "event",
		EntityID: id,
	})
	s.hub.BroadcastToRoom(EventsRoom, live.Message{Type: "EVENT_OFFLINE", Payload: event})

	return event, nil
}

// AutoEndExpiredLive is invoked by the background scheduler. Events
// still live past their scheduled date are taken offline.
func (s *eventService) AutoEndExpiredLive(ctx context.Context) error {
	expired, err := s.eventRepo.ListExpiredLive(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("failed to list expired live events: %w", err)
	}

	for _, event := range expired {
		status := models.EventStatusUpcoming
		if event.ResultsAnnounced {
			status = models.EventStatusCompleted
		}
		if err := s.eventRepo.UpdateLiveStatus(ctx, event.ID, false, status); err != nil {
			s.logger.Error("failed to auto-end live event",
				slog.Int("event_id", event.ID), slog.Any("error", err))
			continue
		}
		event.IsLive = false
		event.Status = status
		s.logger.Info("auto-ended live event past its date", slog.Int("event_id", event.ID))
		s.hub.BroadcastToRoom(EventsRoom, live.Message{Type: "EVENT_OFFLINE", Payload: event})
	}
	return nil
}

func (s *eventService) UploadCover(ctx context.Context, id int, contentType string, file io.Reader) (*models.Event, error) {
	return s.uploadImage(ctx, id, contentType, file, "covers", s.eventRepo.UpdateCoverKey)
}

func (s *eventService) UploadQR(ctx context.Context, id int, contentType string, file io.Reader) (*models.Event, error) {
	return s.uploadImage(ctx, id, contentType, file, "qr", s.eventRepo.UpdateQRKey)
}

func (s *eventService) uploadImage(
	ctx context.Context,
	id int,
	contentType string,
	file io.Reader,
	prefix string,
	updateKey func(context.Context, int, *string) error,
) (*models.Event, error) {
	event, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ext, err := GetExtensionFromContentType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	key := fmt.Sprintf("events/%d/%s/%d%s", event.ID, prefix, time.Now().UnixNano(), ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, fmt.Errorf("failed to upload event image: %w", err)
	}

	if err := updateKey(ctx, event.ID, &key); err != nil {
		// Roll the orphaned object back; best effort.
		if delErr := s.uploader.Delete(ctx, key); delErr != nil {
			s.logger.Warn("failed to delete orphaned upload", slog.String("key", key), slog.Any("error", delErr))
		}
		return nil, fmt.Errorf("failed to store image key: %w", err)
	}

	if prefix == "covers" {
		event.CoverKey = &key
	} else {
		event.QRKey = &key
	}
	populateEventImageURLs(event, s.uploader)
	return event, nil
}

func (s *eventService) AssignCoordinator(ctx context.Context, eventID, coordinatorID int) (*models.EventAssignment, error) {
	if _, err := s.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	coordinator, err := s.profileRepo.GetByID(ctx, coordinatorID)
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get coordinator profile: %w", err)
	}
	if coordinator.Role != models.RoleCoordinator && coordinator.Role != models.RoleAdmin {
		return nil, ErrForbiddenOperation
	}

	assignment := &models.EventAssignment{EventID: eventID, CoordinatorID: coordinatorID}
	if err := s.assignmentRepo.Create(ctx, assignment); err != nil {
		switch {
		case errors.Is(err, repositories.ErrAssignmentConflict):
			return nil, ErrAssignmentConflict
		case errors.Is(err, repositories.ErrAssignmentInvalid):
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to assign coordinator: %w", err)
	}
	return assignment, nil
}

func (s *eventService) UnassignCoordinator(ctx context.Context, eventID, coordinatorID int) error {
	assignments, err := s.assignmentRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return fmt.Errorf("failed to list event assignments: %w", err)
	}
	for _, a := range assignments {
		if a.CoordinatorID == coordinatorID {
			if err := s.assignmentRepo.Delete(ctx, a.ID); err != nil {
				if errors.Is(err, repositories.ErrAssignmentNotFound) {
					return ErrAssignmentNotFound
				}
				return fmt.Errorf("failed to delete event assignment: %w", err)
			}
			return nil
		}
	}
	return ErrAssignmentNotFound
}

func (s *eventService) ListCoordinators(ctx context.Context, eventID int) ([]*models.EventAssignment, error) {
	if _, err := s.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	assignments, err := s.assignmentRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list event assignments: %w", err)
	}
	return assignments, nil
}

// ListAssignedEvents returns the events a coordinator is assigned to.
func (s *eventService) ListAssignedEvents(ctx context.Context, coordinatorID int) ([]models.Event, error) {
	assignments, err := s.assignmentRepo.ListByCoordinator(ctx, coordinatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list coordinator assignments: %w", err)
	}

	events := make([]models.Event, 0, len(assignments))
	for _, a := range assignments {
		event, err := s.eventRepo.GetByID(ctx, a.EventID)
		if err != nil {
			if errors.Is(err, repositories.ErrEventNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to get assigned event: %w", err)
		}
		populateEventImageURLs(event, s.uploader)
		events = append(events, *event)
	}
	return events, nil
}

func (s *eventService) AuditTrail(ctx context.Context, eventID int) ([]*models.AuditLog, error) {
	if _, err := s.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	entries, err := s.auditRepo.ListByEntity(ctx, "event", eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	return entries, nil
}

// CanManage checks whether a profile may manage an event: admins
// always, coordinators only when assigned.
func (s *eventService) CanManage(ctx context.Context, eventID, profileID int, role models.ProfileRole) error {
	if role == models.RoleAdmin {
		return nil
	}
	if role != models.RoleCoordinator {
		return ErrForbiddenOperation
	}
	assigned, err := s.assignmentRepo.Exists(ctx, eventID, profileID)
	if err != nil {
		return fmt.Errorf("failed to check event assignment: %w", err)
	}
	if !assigned {
		return ErrNotAssignedToEvent
	}
	return nil
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
