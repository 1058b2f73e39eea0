package services

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/bonhomie/fest-system/models"
	"github.com/bonhomie/fest-system/repositories"
	"github.com/bonhomie/fest-system/storage"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// stubDriver backs the *sql.DB handed to services under test. Only
// transaction begin/commit/rollback are exercised; all statement access
// goes through mocked repositories.
type stubDriver struct{}

func (stubDriver) Open(name string) (driver.Conn, error) { return stubConn{}, nil }

type stubConn struct{}

func (stubConn) Prepare(query string) (driver.Stmt, error) { return nil, driver.ErrSkip }
func (stubConn) Close() error                              { return nil }
func (stubConn) Begin() (driver.Tx, error)                 { return stubTx{}, nil }

type stubTx struct{}

func (stubTx) Commit() error   { return nil }
func (stubTx) Rollback() error { return nil }

var registerStubDriver sync.Once

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	registerStubDriver.Do(func() {
		sql.Register("servicetest", stubDriver{})
	})
	db, err := sql.Open("servicetest", "")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

type mockProfileRepository struct {
	mock.Mock
}

func (m *mockProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *mockProfileRepository) GetByID(ctx context.Context, id int) (*models.Profile, error) {
	args := m.Called(ctx, id)
	if p, ok := args.Get(0).(*models.Profile); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProfileRepository) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	args := m.Called(ctx, email)
	if p, ok := args.Get(0).(*models.Profile); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProfileRepository) GetByRollNumber(ctx context.Context, rollNumber string) (*models.Profile, error) {
	args := m.Called(ctx, rollNumber)
	if p, ok := args.Get(0).(*models.Profile); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProfileRepository) List(ctx context.Context, filter repositories.ListProfilesFilter) ([]models.Profile, error) {
	args := m.Called(ctx, filter)
	if p, ok := args.Get(0).([]models.Profile); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProfileRepository) Update(ctx context.Context, profile *models.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *mockProfileRepository) UpdatePasswordHash(ctx context.Context, id int, hash string) error {
	args := m.Called(ctx, id, hash)
	return args.Error(0)
}

func (m *mockProfileRepository) IncrementWins(ctx context.Context, exec repositories.SQLExecutor, profileIDs []int) error {
	args := m.Called(ctx, exec, profileIDs)
	return args.Error(0)
}

func (m *mockProfileRepository) Count(ctx context.Context, adminCreatedOnly bool) (int, error) {
	args := m.Called(ctx, adminCreatedOnly)
	return args.Int(0), args.Error(1)
}

func (m *mockProfileRepository) Delete(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockEventRepository struct {
	mock.Mock
}

func (m *mockEventRepository) Create(ctx context.Context, event *models.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *mockEventRepository) GetByID(ctx context.Context, id int) (*models.Event, error) {
	args := m.Called(ctx, id)
	if e, ok := args.Get(0).(*models.Event); ok {
		return e, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockEventRepository) List(ctx context.Context, filter repositories.ListEventsFilter) ([]models.Event, error) {
	args := m.Called(ctx, filter)
	if e, ok := args.Get(0).([]models.Event); ok {
		return e, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockEventRepository) Update(ctx context.Context, event *models.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *mockEventRepository) UpdateLiveStatus(ctx context.Context, id int, isLive bool, status models.EventStatus) error {
	args := m.Called(ctx, id, isLive, status)
	return args.Error(0)
}

func (m *mockEventRepository) UpdateCoverKey(ctx context.Context, id int, coverKey *string) error {
	args := m.Called(ctx, id, coverKey)
	return args.Error(0)
}

func (m *mockEventRepository) UpdateQRKey(ctx context.Context, id int, qrKey *string) error {
	args := m.Called(ctx, id, qrKey)
	return args.Error(0)
}

func (m *mockEventRepository) SetWinners(ctx context.Context, exec repositories.SQLExecutor, eventID int, winners repositories.WinnerUpdate) error {
	args := m.Called(ctx, exec, eventID, winners)
	return args.Error(0)
}

func (m *mockEventRepository) ListExpiredLive(ctx context.Context, now time.Time) ([]*models.Event, error) {
	args := m.Called(ctx, now)
	if e, ok := args.Get(0).([]*models.Event); ok {
		return e, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockEventRepository) Count(ctx context.Context, liveOnly bool) (int, error) {
	args := m.Called(ctx, liveOnly)
	return args.Int(0), args.Error(1)
}

func (m *mockEventRepository) Delete(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockRegistrationRepository struct {
	mock.Mock
}

func (m *mockRegistrationRepository) Create(ctx context.Context, exec repositories.SQLExecutor, reg *models.Registration) error {
	args := m.Called(ctx, exec, reg)
	return args.Error(0)
}

func (m *mockRegistrationRepository) GetByID(ctx context.Context, id int) (*models.Registration, error) {
	args := m.Called(ctx, id)
	if r, ok := args.Get(0).(*models.Registration); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRegistrationRepository) GetByEventAndProfile(ctx context.Context, eventID, profileID int) (*models.Registration, error) {
	args := m.Called(ctx, eventID, profileID)
	if r, ok := args.Get(0).(*models.Registration); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRegistrationRepository) ListByEvent(ctx context.Context, eventID int, filter repositories.ListRegistrationsFilter) ([]*models.Registration, error) {
	args := m.Called(ctx, eventID, filter)
	if r, ok := args.Get(0).([]*models.Registration); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRegistrationRepository) ListByProfile(ctx context.Context, profileID int) ([]*models.Registration, error) {
	args := m.Called(ctx, profileID)
	if r, ok := args.Get(0).([]*models.Registration); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRegistrationRepository) FindLeaderWithMember(ctx context.Context, eventID, memberProfileID int) (*models.Registration, error) {
	args := m.Called(ctx, eventID, memberProfileID)
	if r, ok := args.Get(0).(*models.Registration); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRegistrationRepository) UpdateTeamMembers(ctx context.Context, exec repositories.SQLExecutor, id int, members []models.TeamMember) error {
	args := m.Called(ctx, exec, id, members)
	return args.Error(0)
}

func (m *mockRegistrationRepository) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.RegistrationStatus) error {
	args := m.Called(ctx, exec, id, status)
	return args.Error(0)
}

func (m *mockRegistrationRepository) BulkUpdateStatus(ctx context.Context, exec repositories.SQLExecutor, eventID int, profileIDs []int, status models.RegistrationStatus) error {
	args := m.Called(ctx, exec, eventID, profileIDs, status)
	return args.Error(0)
}

func (m *mockRegistrationRepository) UpdatePaymentProof(ctx context.Context, id int, transactionID *string, screenshotKey *string) error {
	args := m.Called(ctx, id, transactionID, screenshotKey)
	return args.Error(0)
}

func (m *mockRegistrationRepository) RepointProfile(ctx context.Context, exec repositories.SQLExecutor, id int, newProfileID int) error {
	args := m.Called(ctx, exec, id, newProfileID)
	return args.Error(0)
}

func (m *mockRegistrationRepository) NextTeamNumber(ctx context.Context, exec repositories.SQLExecutor, eventID int) (int, error) {
	args := m.Called(ctx, exec, eventID)
	return args.Int(0), args.Error(1)
}

func (m *mockRegistrationRepository) CountByStatus(ctx context.Context, status *models.RegistrationStatus) (int, error) {
	args := m.Called(ctx, status)
	return args.Int(0), args.Error(1)
}

func (m *mockRegistrationRepository) Delete(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	args := m.Called(ctx, exec, id)
	return args.Error(0)
}

func (m *mockRegistrationRepository) DeleteByEventAndProfiles(ctx context.Context, exec repositories.SQLExecutor, eventID int, profileIDs []int) error {
	args := m.Called(ctx, exec, eventID, profileIDs)
	return args.Error(0)
}

type mockResultRepository struct {
	mock.Mock
}

func (m *mockResultRepository) Create(ctx context.Context, exec repositories.SQLExecutor, result *models.EventResult) error {
	args := m.Called(ctx, exec, result)
	return args.Error(0)
}

func (m *mockResultRepository) ListByEvent(ctx context.Context, eventID int) ([]*models.EventResult, error) {
	args := m.Called(ctx, eventID)
	if r, ok := args.Get(0).([]*models.EventResult); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockResultRepository) ListByProfile(ctx context.Context, profileID int) ([]*models.EventResult, error) {
	args := m.Called(ctx, profileID)
	if r, ok := args.Get(0).([]*models.EventResult); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockAuditRepository struct {
	mock.Mock
}

func (m *mockAuditRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *mockAuditRepository) ListByEntity(ctx context.Context, entity string, entityID int) ([]*models.AuditLog, error) {
	args := m.Called(ctx, entity, entityID)
	if l, ok := args.Get(0).([]*models.AuditLog); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuditRepository) ListRecent(ctx context.Context, limit int) ([]*models.AuditLog, error) {
	args := m.Called(ctx, limit)
	if l, ok := args.Get(0).([]*models.AuditLog); ok {
		return l, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockAssignmentRepository struct {
	mock.Mock
}

func (m *mockAssignmentRepository) Create(ctx context.Context, assignment *models.EventAssignment) error {
	args := m.Called(ctx, assignment)
	return args.Error(0)
}

func (m *mockAssignmentRepository) Exists(ctx context.Context, eventID, coordinatorID int) (bool, error) {
	args := m.Called(ctx, eventID, coordinatorID)
	return args.Bool(0), args.Error(1)
}

func (m *mockAssignmentRepository) ListByCoordinator(ctx context.Context, coordinatorID int) ([]*models.EventAssignment, error) {
	args := m.Called(ctx, coordinatorID)
	if a, ok := args.Get(0).([]*models.EventAssignment); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAssignmentRepository) ListByEvent(ctx context.Context, eventID int) ([]*models.EventAssignment, error) {
	args := m.Called(ctx, eventID)
	if a, ok := args.Get(0).([]*models.EventAssignment); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAssignmentRepository) Delete(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockUploader struct {
	mock.Mock
}

func (m *mockUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	args := m.Called(ctx, key, contentType, reader)
	if r, ok := args.Get(0).(*storage.UploadResult); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUploader) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *mockUploader) GetPublicURL(key string) string {
	args := m.Called(key)
	return args.String(0)
}
