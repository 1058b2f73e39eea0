package services

import (
	"context"
	"errors"
	"testing"

	"github.com/bonhomie/fest-system/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGetStats_CollectsAllCounters(t *testing.T) {
	profileRepo := new(mockProfileRepository)
	eventRepo := new(mockEventRepository)
	regRepo := new(mockRegistrationRepository)
	svc := NewDashboardService(profileRepo, eventRepo, regRepo, new(mockAuditRepository))

	profileRepo.On("Count", mock.Anything, false).Return(120, nil)
	profileRepo.On("Count", mock.Anything, true).Return(15, nil)
	eventRepo.On("Count", mock.Anything, false).Return(24, nil)
	eventRepo.On("Count", mock.Anything, true).Return(3, nil)
	regRepo.On("CountByStatus", mock.Anything, (*models.RegistrationStatus)(nil)).Return(200, nil)
	pending := models.RegistrationPending
	confirmed := models.RegistrationConfirmed
	regRepo.On("CountByStatus", mock.Anything, &pending).Return(40, nil)
	regRepo.On("CountByStatus", mock.Anything, &confirmed).Return(150, nil)

	stats, err := svc.GetStats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 120, stats.ProfilesTotal)
	assert.Equal(t, 15, stats.OfflineProfiles)
	assert.Equal(t, 24, stats.EventsTotal)
	assert.Equal(t, 3, stats.LiveEvents)
	assert.Equal(t, 200, stats.RegistrationsTotal)
	assert.Equal(t, 40, stats.PendingRegistrations)
	assert.Equal(t, 150, stats.ConfirmedRegistrations)
}

func TestGetStats_FirstErrorWins(t *testing.T) {
	profileRepo := new(mockProfileRepository)
	eventRepo := new(mockEventRepository)
	regRepo := new(mockRegistrationRepository)
	svc := NewDashboardService(profileRepo, eventRepo, regRepo, new(mockAuditRepository))

	boom := errors.New("connection reset")
	profileRepo.On("Count", mock.Anything, mock.Anything).Return(0, boom)
	eventRepo.On("Count", mock.Anything, mock.Anything).Return(0, nil)
	regRepo.On("CountByStatus", mock.Anything, mock.Anything).Return(0, nil)

	_, err := svc.GetStats(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestRecentActivity_ClampsLimit(t *testing.T) {
	auditRepo := new(mockAuditRepository)
	svc := NewDashboardService(new(mockProfileRepository), new(mockEventRepository), new(mockRegistrationRepository), auditRepo)

	entries := []*models.AuditLog{{ID: 1, Action: "event_went_live"}}
	auditRepo.On("ListRecent", mock.Anything, defaultActivityLimit).Return(entries, nil)

	got, err := svc.RecentActivity(context.Background(), -3)

	require.NoError(t, err)
	assert.Equal(t, entries, got)
	auditRepo.AssertExpectations(t)
}

func TestRecentActivity_PassesExplicitLimit(t *testing.T) {
	auditRepo := new(mockAuditRepository)
	svc := NewDashboardService(new(mockProfileRepository), new(mockEventRepository), new(mockRegistrationRepository), auditRepo)

	auditRepo.On("ListRecent", mock.Anything, 10).Return([]*models.AuditLog{}, nil)

	_, err := svc.RecentActivity(context.Background(), 10)

	require.NoError(t, err)
	auditRepo.AssertExpectations(t)
}
