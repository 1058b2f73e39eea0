package services

import (
	"context"
	"testing"

	"github.com/bonhomie/fest-system/live"
	"github.com/bonhomie/fest-system/models"
	"github.com/bonhomie/fest-system/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type resultServiceMocks struct {
	resultRepo  *mockResultRepository
	eventRepo   *mockEventRepository
	regRepo     *mockRegistrationRepository
	profileRepo *mockProfileRepository
	auditRepo   *mockAuditRepository
}

func newResultService(t *testing.T) (ResultService, resultServiceMocks) {
	t.Helper()
	m := resultServiceMocks{
		resultRepo:  new(mockResultRepository),
		eventRepo:   new(mockEventRepository),
		regRepo:     new(mockRegistrationRepository),
		profileRepo: new(mockProfileRepository),
		auditRepo:   new(mockAuditRepository),
	}
	svc := NewResultService(newTestDB(t), m.resultRepo, m.eventRepo, m.regRepo, m.profileRepo, m.auditRepo, live.NewHub(testLogger()), testLogger())
	return svc, m
}

func confirmedReg(id, eventID, profileID int, memberIDs ...int) *models.Registration {
	members := make([]models.TeamMember, 0, len(memberIDs))
	for _, mid := range memberIDs {
		members = append(members, models.TeamMember{ProfileID: mid})
	}
	return &models.Registration{
		ID:          id,
		EventID:     eventID,
		ProfileID:   profileID,
		Status:      models.RegistrationConfirmed,
		TeamMembers: members,
	}
}

func TestAnnounce_FirstPlaceRequired(t *testing.T) {
	svc, _ := newResultService(t)

	_, err := svc.Announce(context.Background(), AnnounceInput{EventID: 1}, 99)

	assert.ErrorIs(t, err, ErrFirstPlaceRequired)
}

func TestAnnounce_SecondAnnouncementRefused(t *testing.T) {
	svc, m := newResultService(t)

	event := &models.Event{ID: 1, ResultsAnnounced: true}
	m.eventRepo.On("GetByID", mock.Anything, 1).Return(event, nil)

	_, err := svc.Announce(context.Background(), AnnounceInput{EventID: 1, FirstRegID: 10}, 99)

	assert.ErrorIs(t, err, ErrResultsAlreadyAnnounced)
}

func TestAnnounce_DuplicateWinnerRefused(t *testing.T) {
	svc, m := newResultService(t)

	m.eventRepo.On("GetByID", mock.Anything, 1).Return(&models.Event{ID: 1}, nil)
	second := 10

	_, err := svc.Announce(context.Background(), AnnounceInput{EventID: 1, FirstRegID: 10, SecondRegID: &second}, 99)

	assert.ErrorIs(t, err, ErrDuplicateWinner)
}

func TestAnnounce_UnconfirmedWinnerRefused(t *testing.T) {
	svc, m := newResultService(t)

	m.eventRepo.On("GetByID", mock.Anything, 1).Return(&models.Event{ID: 1}, nil)
	pending := confirmedReg(10, 1, 5)
	pending.Status = models.RegistrationPending
	m.regRepo.On("GetByID", mock.Anything, 10).Return(pending, nil)

	_, err := svc.Announce(context.Background(), AnnounceInput{EventID: 1, FirstRegID: 10}, 99)

	assert.ErrorIs(t, err, ErrWinnerNotConfirmed)
}

func TestAnnounce_WinnerFromAnotherEventRefused(t *testing.T) {
	svc, m := newResultService(t)

	m.eventRepo.On("GetByID", mock.Anything, 1).Return(&models.Event{ID: 1}, nil)
	m.regRepo.On("GetByID", mock.Anything, 10).Return(confirmedReg(10, 7, 5), nil)

	_, err := svc.Announce(context.Background(), AnnounceInput{EventID: 1, FirstRegID: 10}, 99)

	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestAnnounce_FirstOnlyLeavesOtherPositionsEmpty(t *testing.T) {
	svc, m := newResultService(t)

	m.eventRepo.On("GetByID", mock.Anything, 1).Return(&models.Event{ID: 1}, nil)
	m.regRepo.On("GetByID", mock.Anything, 10).Return(confirmedReg(10, 1, 5), nil)
	m.profileRepo.On("IncrementWins", mock.Anything, mock.Anything, []int{5}).Return(nil)
	m.resultRepo.On("Create", mock.Anything, mock.Anything, mock.AnythingOfType("*models.EventResult")).Return(nil)
	m.eventRepo.On("SetWinners", mock.Anything, mock.Anything, 1, mock.MatchedBy(func(w repositories.WinnerUpdate) bool {
		return w.FirstPlaceRegID == 10 && w.SecondPlaceRegID == nil && w.ThirdPlaceRegID == nil
	})).Return(nil)
	m.auditRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.AuditLog")).Return(nil)

	results, err := svc.Announce(context.Background(), AnnounceInput{EventID: 1, FirstRegID: 10}, 99)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 1, results[0].Position)
	assert.Equal(t, 10, results[0].RegistrationID)
	m.eventRepo.AssertExpectations(t)
}

func TestAnnounce_TeamWinIncrementsEveryMember(t *testing.T) {
	svc, m := newResultService(t)

	m.eventRepo.On("GetByID", mock.Anything, 1).Return(&models.Event{ID: 1}, nil)
	m.regRepo.On("GetByID", mock.Anything, 10).Return(confirmedReg(10, 1, 5, 6, 7), nil)
	m.profileRepo.On("IncrementWins", mock.Anything, mock.Anything, []int{5, 6, 7}).Return(nil)
	m.resultRepo.On("Create", mock.Anything, mock.Anything, mock.AnythingOfType("*models.EventResult")).Return(nil)
	m.eventRepo.On("SetWinners", mock.Anything, mock.Anything, 1, mock.AnythingOfType("repositories.WinnerUpdate")).Return(nil)
	m.auditRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.AuditLog")).Return(nil)

	results, err := svc.Announce(context.Background(), AnnounceInput{EventID: 1, FirstRegID: 10}, 99)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Len(t, results[0].TeamMembers, 3)
	m.profileRepo.AssertExpectations(t)
}

func TestAnnounce_AllThreePositions(t *testing.T) {
	svc, m := newResultService(t)

	m.eventRepo.On("GetByID", mock.Anything, 1).Return(&models.Event{ID: 1}, nil)
	m.regRepo.On("GetByID", mock.Anything, 10).Return(confirmedReg(10, 1, 5), nil)
	m.regRepo.On("GetByID", mock.Anything, 11).Return(confirmedReg(11, 1, 6), nil)
	m.regRepo.On("GetByID", mock.Anything, 12).Return(confirmedReg(12, 1, 7), nil)
	m.profileRepo.On("IncrementWins", mock.Anything, mock.Anything, mock.AnythingOfType("[]int")).Return(nil).Times(3)
	m.resultRepo.On("Create", mock.Anything, mock.Anything, mock.AnythingOfType("*models.EventResult")).Return(nil).Times(3)
	m.eventRepo.On("SetWinners", mock.Anything, mock.Anything, 1, mock.AnythingOfType("repositories.WinnerUpdate")).Return(nil)
	m.auditRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.AuditLog")).Return(nil)

	second, third := 11, 12
	results, err := svc.Announce(context.Background(), AnnounceInput{
		EventID:     1,
		FirstRegID:  10,
		SecondRegID: &second,
		ThirdRegID:  &third,
	}, 99)

	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{results[0].Position, results[1].Position, results[2].Position})
	m.resultRepo.AssertExpectations(t)
}
