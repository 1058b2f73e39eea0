package services

import (
	"context"
	"fmt"

	"github.com/bonhomie/fest-system/models"
	"github.com/bonhomie/fest-system/repositories"
	"golang.org/x/sync/errgroup"
)

const defaultActivityLimit = 50

type DashboardService interface {
	GetStats(ctx context.Context) (models.DashboardStats, error)
	RecentActivity(ctx context.Context, limit int) ([]*models.AuditLog, error)
}

type dashboardService struct {
	profileRepo      repositories.ProfileRepository
	eventRepo        repositories.EventRepository
	registrationRepo repositories.RegistrationRepository
	auditRepo        repositories.AuditRepository
}

func NewDashboardService(
	profileRepo repositories.ProfileRepository,
	eventRepo repositories.EventRepository,
	registrationRepo repositories.RegistrationRepository,
	auditRepo repositories.AuditRepository,
) DashboardService {
	return &dashboardService{
		profileRepo:      profileRepo,
		eventRepo:        eventRepo,
		registrationRepo: registrationRepo,
		auditRepo:        auditRepo,
	}
}

// RecentActivity returns the latest audit entries for the staff feed.
func (s *dashboardService) RecentActivity(ctx context.Context, limit int) ([]*models.AuditLog, error) {
	if limit <= 0 || limit > 200 {
		limit = defaultActivityLimit
	}
	entries, err := s.auditRepo.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent audit entries: %w", err)
	}
	return entries, nil
}

// GetStats runs the counter queries concurrently; the first error
// cancels the rest.
func (s *dashboardService) GetStats(ctx context.Context) (models.DashboardStats, error) {
	var stats models.DashboardStats

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := s.profileRepo.Count(gctx, false)
		stats.ProfilesTotal = n
		return err
	})
	g.Go(func() error {
		n, err := s.profileRepo.Count(gctx, true)
		stats.OfflineProfiles = n
		return err
	})
	g.Go(func() error {
		n, err := s.eventRepo.Count(gctx, false)
		stats.EventsTotal = n
		return err
	})
	g.Go(func() error {
		n, err := s.eventRepo.Count(gctx, true)
		stats.LiveEvents = n
		return err
	})
	g.Go(func() error {
		n, err := s.registrationRepo.CountByStatus(gctx, nil)
		stats.RegistrationsTotal = n
		return err
	})
	g.Go(func() error {
		pending := models.RegistrationPending
		n, err := s.registrationRepo.CountByStatus(gctx, &pending)
		stats.PendingRegistrations = n
		return err
	})
	g.Go(func() error {
		confirmed := models.RegistrationConfirmed
		n, err := s.registrationRepo.CountByStatus(gctx, &confirmed)
		stats.ConfirmedRegistrations = n
		return err
	})

	if err := g.Wait(); err != nil {
		return models.DashboardStats{}, err
	}
	return stats, nil
}
