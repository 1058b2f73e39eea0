package services

import (
	"context"
	"testing"
	"time"

	"github.com/bonhomie/fest-system/live"
	"github.com/bonhomie/fest-system/models"
	"github.com/bonhomie/fest-system/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type eventServiceMocks struct {
	eventRepo      *mockEventRepository
	assignmentRepo *mockAssignmentRepository
	profileRepo    *mockProfileRepository
	auditRepo      *mockAuditRepository
	uploader       *mockUploader
}

func newEventService(t *testing.T) (EventService, eventServiceMocks) {
	t.Helper()
	m := eventServiceMocks{
		eventRepo:      new(mockEventRepository),
		assignmentRepo: new(mockAssignmentRepository),
		profileRepo:    new(mockProfileRepository),
		auditRepo:      new(mockAuditRepository),
		uploader:       new(mockUploader),
	}
	svc := NewEventService(m.eventRepo, m.assignmentRepo, m.profileRepo, m.auditRepo, m.uploader, live.NewHub(testLogger()), testLogger())
	return svc, m
}

func validEventInput() EventInput {
	return EventInput{
		Name:          "Quiz Finals",
		Category:      "literary",
		Day:           2,
		EventDate:     time.Now().AddDate(0, 0, 7),
		EventTime:     "14:00",
		Venue:         "Auditorium",
		Fee:           100,
		MinTeamSize:   2,
		MaxTeamSize:   2,
		PaymentMode:   models.PaymentModeOnline,
		AllowedGender: models.GenderAny,
	}
}

func TestCreateEvent_Validation(t *testing.T) {
	svc, _ := newEventService(t)

	tests := []struct {
		name    string
		mutate  func(*EventInput)
		wantErr error
	}{
		{"empty name", func(in *EventInput) { in.Name = "" }, ErrEventNameRequired},
		{"day zero", func(in *EventInput) { in.Day = 0 }, ErrEventInvalidDay},
		{"max below min", func(in *EventInput) { in.MinTeamSize = 3; in.MaxTeamSize = 2 }, ErrEventInvalidTeamBounds},
		{"min zero", func(in *EventInput) { in.MinTeamSize = 0 }, ErrEventInvalidTeamBounds},
		{"bad payment mode", func(in *EventInput) { in.PaymentMode = "upi" }, ErrEventInvalidPaymentMode},
		{"bad gender policy", func(in *EventInput) { in.AllowedGender = "other" }, ErrEventInvalidGenderPolicy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validEventInput()
			tt.mutate(&input)
			_, err := svc.Create(context.Background(), input, 1)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGoLive_DateMismatchRefused(t *testing.T) {
	svc, m := newEventService(t)

	tomorrow := &models.Event{ID: 1, EventDate: time.Now().AddDate(0, 0, 1)}
	m.eventRepo.On("GetByID", mock.Anything, 1).Return(tomorrow, nil)

	_, err := svc.GoLive(context.Background(), 1, false, 99)

	assert.ErrorIs(t, err, ErrEventDateMismatch)
	m.eventRepo.AssertNotCalled(t, "UpdateLiveStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGoLive_DateMismatchOverridden(t *testing.T) {
	svc, m := newEventService(t)

	tomorrow := &models.Event{ID: 1, EventDate: time.Now().AddDate(0, 0, 1)}
	m.eventRepo.On("GetByID", mock.Anything, 1).Return(tomorrow, nil)
	m.eventRepo.On("UpdateLiveStatus", mock.Anything, 1, true, models.EventStatusLive).Return(nil)
	m.auditRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.AuditLog")).Return(nil)

	event, err := svc.GoLive(context.Background(), 1, true, 99)

	require.NoError(t, err)
	assert.True(t, event.IsLive)
	assert.Equal(t, models.EventStatusLive, event.Status)
}

func TestGoLive_TodayAllowedWithoutOverride(t *testing.T) {
	svc, m := newEventService(t)

	today := &models.Event{ID: 1, EventDate: time.Now()}
	m.eventRepo.On("GetByID", mock.Anything, 1).Return(today, nil)
	m.eventRepo.On("UpdateLiveStatus", mock.Anything, 1, true, models.EventStatusLive).Return(nil)
	m.auditRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.AuditLog")).Return(nil)

	event, err := svc.GoLive(context.Background(), 1, false, 99)

	require.NoError(t, err)
	assert.True(t, event.IsLive)
}

func TestGoLive_AnnouncedEventRefused(t *testing.T) {
	svc, m := newEventService(t)

	done := &models.Event{ID: 1, EventDate: time.Now(), ResultsAnnounced: true}
	m.eventRepo.On("GetByID", mock.Anything, 1).Return(done, nil)

	_, err := svc.GoLive(context.Background(), 1, false, 99)

	assert.ErrorIs(t, err, ErrResultsAlreadyAnnounced)
}

func TestEndLive_AnnouncedEventCompletes(t *testing.T) {
	svc, m := newEventService(t)

	event := &models.Event{ID: 1, IsLive: true, Status: models.EventStatusLive, ResultsAnnounced: true}
	m.eventRepo.On("GetByID", mock.Anything, 1).Return(event, nil)
	m.eventRepo.On("UpdateLiveStatus", mock.Anything, 1, false, models.EventStatusCompleted).Return(nil)
	m.auditRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.AuditLog")).Return(nil)

	updated, err := svc.EndLive(context.Background(), 1, 99)

	require.NoError(t, err)
	assert.False(t, updated.IsLive)
	assert.Equal(t, models.EventStatusCompleted, updated.Status)
}

func TestAutoEndExpiredLive_TakesExpiredEventsOffline(t *testing.T) {
	svc, m := newEventService(t)

	expired := []*models.Event{
		{ID: 1, IsLive: true, Status: models.EventStatusLive},
		{ID: 2, IsLive: true, Status: models.EventStatusLive, ResultsAnnounced: true},
	}
	m.eventRepo.On("ListExpiredLive", mock.Anything, mock.AnythingOfType("time.Time")).Return(expired, nil)
	m.eventRepo.On("UpdateLiveStatus", mock.Anything, 1, false, models.EventStatusUpcoming).Return(nil)
	m.eventRepo.On("UpdateLiveStatus", mock.Anything, 2, false, models.EventStatusCompleted).Return(nil)

	err := svc.AutoEndExpiredLive(context.Background())

	require.NoError(t, err)
	m.eventRepo.AssertExpectations(t)
}

func TestCanManage_AdminAlwaysAllowed(t *testing.T) {
	svc, _ := newEventService(t)

	err := svc.CanManage(context.Background(), 1, 99, models.RoleAdmin)
	assert.NoError(t, err)
}

func TestCanManage_StudentRefused(t *testing.T) {
	svc, _ := newEventService(t)

	err := svc.CanManage(context.Background(), 1, 99, models.RoleStudent)
	assert.ErrorIs(t, err, ErrForbiddenOperation)
}

func TestCanManage_CoordinatorNeedsAssignment(t *testing.T) {
	svc, m := newEventService(t)

	m.assignmentRepo.On("Exists", mock.Anything, 1, 99).Return(false, nil)

	err := svc.CanManage(context.Background(), 1, 99, models.RoleCoordinator)
	assert.ErrorIs(t, err, ErrNotAssignedToEvent)
}

func TestCanManage_AssignedCoordinatorAllowed(t *testing.T) {
	svc, m := newEventService(t)

	m.assignmentRepo.On("Exists", mock.Anything, 1, 99).Return(true, nil)

	err := svc.CanManage(context.Background(), 1, 99, models.RoleCoordinator)
	assert.NoError(t, err)
}

func TestAssignCoordinator_StudentRefused(t *testing.T) {
	svc, m := newEventService(t)

	m.eventRepo.On("GetByID", mock.Anything, 1).Return(individualEvent(), nil)
	m.profileRepo.On("GetByID", mock.Anything, 5).Return(studentProfile(5, "Student"), nil)

	_, err := svc.AssignCoordinator(context.Background(), 1, 5)
	assert.ErrorIs(t, err, ErrForbiddenOperation)
}

func TestUnassignCoordinator_DeletesMatchingAssignment(t *testing.T) {
	svc, m := newEventService(t)

	m.assignmentRepo.On("ListByEvent", mock.Anything, 1).Return([]*models.EventAssignment{
		{ID: 10, EventID: 1, CoordinatorID: 7},
		{ID: 11, EventID: 1, CoordinatorID: 8},
	}, nil)
	m.assignmentRepo.On("Delete", mock.Anything, 11).Return(nil)

	err := svc.UnassignCoordinator(context.Background(), 1, 8)

	require.NoError(t, err)
	m.assignmentRepo.AssertExpectations(t)
}

func TestUnassignCoordinator_NotAssigned(t *testing.T) {
	svc, m := newEventService(t)

	m.assignmentRepo.On("ListByEvent", mock.Anything, 1).Return([]*models.EventAssignment{
		{ID: 10, EventID: 1, CoordinatorID: 7},
	}, nil)

	err := svc.UnassignCoordinator(context.Background(), 1, 99)
	assert.ErrorIs(t, err, ErrAssignmentNotFound)
}

func TestListAssignedEvents_SkipsVanishedEvents(t *testing.T) {
	svc, m := newEventService(t)

	m.assignmentRepo.On("ListByCoordinator", mock.Anything, 7).Return([]*models.EventAssignment{
		{ID: 1, EventID: 1, CoordinatorID: 7},
		{ID: 2, EventID: 2, CoordinatorID: 7},
	}, nil)
	m.eventRepo.On("GetByID", mock.Anything, 1).Return(individualEvent(), nil)
	m.eventRepo.On("GetByID", mock.Anything, 2).Return(nil, repositories.ErrEventNotFound)

	events, err := svc.ListAssignedEvents(context.Background(), 7)

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, individualEvent().ID, events[0].ID)
}
