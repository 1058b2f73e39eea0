package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bonhomie/fest-system/models"
	"github.com/lib/pq"
)

var (
	ErrRegistrationNotFound       = errors.New("registration not found")
	ErrRegistrationConflict       = errors.New("registration conflict: profile already registered for this event")
	ErrRegistrationEventInvalid   = errors.New("registration event reference invalid")
	ErrRegistrationProfileInvalid = errors.New("registration profile reference invalid")
)

type ListRegistrationsFilter struct {
	Status      *models.RegistrationStatus
	LeadersOnly bool // rows with a non-empty team_members array
	WithProfile bool // join profile summary for display/export
}

type RegistrationRepository interface {
	Create(ctx context.Context, exec SQLExecutor, reg *models.Registration) error
	GetByID(ctx context.Context, id int) (*models.Registration, error)
	GetByEventAndProfile(ctx context.Context, eventID, profileID int) (*models.Registration, error)
	ListByEvent(ctx context.Context, eventID int, filter ListRegistrationsFilter) ([]*models.Registration, error)
	ListByProfile(ctx context.Context, profileID int) ([]*models.Registration, error)
	FindLeaderWithMember(ctx context.Context, eventID, memberProfileID int) (*models.Registration, error)
	UpdateTeamMembers(ctx context.Context, exec SQLExecutor, id int, members []models.TeamMember) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.RegistrationStatus) error
	BulkUpdateStatus(ctx context.Context, exec SQLExecutor, eventID int, profileIDs []int, status models.RegistrationStatus) error
	UpdatePaymentProof(ctx context.Context, id int, transactionID *string, screenshotKey *string) error
	RepointProfile(ctx context.Context, exec SQLExecutor, id int, newProfileID int) error
	NextTeamNumber(ctx context.Context, exec SQLExecutor, eventID int) (int, error)
	CountByStatus(ctx context.Context, status *models.RegistrationStatus) (int, error)
	Delete(ctx context.Context, exec SQLExecutor, id int) error
	DeleteByEventAndProfiles(ctx context.Context, exec SQLExecutor, eventID int, profileIDs []int) error
}

type postgresRegistrationRepository struct {
	db *sql.DB
}

func NewPostgresRegistrationRepository(db *sql.DB) RegistrationRepository {
	return &postgresRegistrationRepository{db: db}
}

func (r *postgresRegistrationRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const registrationColumns = `
	id, event_id, profile_id, status, payment_mode, team_members, team_number,
	transaction_id, screenshot_key, created_at`

func (r *postgresRegistrationRepository) Create(ctx context.Context, exec SQLExecutor, reg *models.Registration) error {
	executor := r.getExecutor(exec)

	membersJSON, err := marshalTeamMembers(reg.TeamMembers)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO registrations (event_id, profile_id, status, payment_mode, team_members, team_number, transaction_id, screenshot_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	err = executor.QueryRowContext(ctx, query,
		reg.EventID,
		reg.ProfileID,
		reg.Status,
		reg.PaymentMode,
		membersJSON,
		reg.TeamNumber,
		reg.TransactionID,
		reg.ScreenshotKey,
	).Scan(&reg.ID, &reg.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505":
				if pqErr.Constraint == "registrations_event_id_profile_id_key" {
					return ErrRegistrationConflict
				}
			case "23503":
				switch pqErr.Constraint {
				case "registrations_event_id_fkey":
					return ErrRegistrationEventInvalid
				case "registrations_profile_id_fkey":
					return ErrRegistrationProfileInvalid
				}
			}
		}
		return fmt.Errorf("failed to create registration: %w", err)
	}
	return nil
}

func (r *postgresRegistrationRepository) GetByID(ctx context.Context, id int) (*models.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE id = $1`
	return r.findOne(ctx, query, id)
}

func (r *postgresRegistrationRepository) GetByEventAndProfile(ctx context.Context, eventID, profileID int) (*models.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE event_id = $1 AND profile_id = $2`
	return r.findOne(ctx, query, eventID, profileID)
}

func (r *postgresRegistrationRepository) ListByEvent(ctx context.Context, eventID int, filter ListRegistrationsFilter) ([]*models.Registration, error) {
	query := `
		SELECT
			r.id, r.event_id, r.profile_id, r.status, r.payment_mode, r.team_members,
			r.team_number, r.transaction_id, r.screenshot_key, r.created_at`
	if filter.WithProfile {
		query += `,
			p.id, p.full_name, p.roll_number, p.department, p.gender, p.email, p.phone,
			p.role, p.wins, p.is_admin_created, p.password_hash, p.created_at`
	}
	query += `
		FROM registrations r`
	if filter.WithProfile {
		query += `
		JOIN profiles p ON r.profile_id = p.id`
	}
	query += ` WHERE r.event_id = $1`

	args := []interface{}{eventID}
	if filter.Status != nil {
		query += ` AND r.status = $2`
		args = append(args, *filter.Status)
	}
	if filter.LeadersOnly {
		query += ` AND jsonb_array_length(r.team_members) > 0`
	}
	query += ` ORDER BY r.team_number ASC NULLS LAST, r.created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations by event: %w", err)
	}
	defer rows.Close()

	regs := make([]*models.Registration, 0)
	for rows.Next() {
		var reg models.Registration
		var membersJSON []byte
		dest := []interface{}{
			&reg.ID, &reg.EventID, &reg.ProfileID, &reg.Status, &reg.PaymentMode, &membersJSON,
			&reg.TeamNumber, &reg.TransactionID, &reg.ScreenshotKey, &reg.CreatedAt,
		}
		var p models.Profile
		if filter.WithProfile {
			dest = append(dest,
				&p.ID, &p.FullName, &p.RollNumber, &p.Department, &p.Gender, &p.Email, &p.Phone,
				&p.Role, &p.Wins, &p.IsAdminCreated, &p.PasswordHash, &p.CreatedAt,
			)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan registration row: %w", err)
		}
		if err := unmarshalTeamMembers(membersJSON, &reg.TeamMembers); err != nil {
			return nil, err
		}
		if filter.WithProfile {
			p.PasswordHash = ""
			reg.Profile = &p
		}
		regs = append(regs, &reg)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return regs, nil
}

func (r *postgresRegistrationRepository) ListByProfile(ctx context.Context, profileID int) ([]*models.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE profile_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations by profile: %w", err)
	}
	defer rows.Close()

	regs := make([]*models.Registration, 0)
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

// FindLeaderWithMember locates the leader registration whose
// team_members array embeds the given profile id. JSONB containment
// keeps the at-most-one-team-per-event invariant checkable in one query.
func (r *postgresRegistrationRepository) FindLeaderWithMember(ctx context.Context, eventID, memberProfileID int) (*models.Registration, error) {
	query := `SELECT ` + registrationColumns + `
		FROM registrations
		WHERE event_id = $1 AND team_members @> $2`

	probe, err := json.Marshal([]map[string]int{{"profile_id": memberProfileID}})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal member probe: %w", err)
	}
	return r.findOne(ctx, query, eventID, probe)
}

func (r *postgresRegistrationRepository) UpdateTeamMembers(ctx context.Context, exec SQLExecutor, id int, members []models.TeamMember) error {
	executor := r.getExecutor(exec)

	membersJSON, err := marshalTeamMembers(members)
	if err != nil {
		return err
	}

	query := `UPDATE registrations SET team_members = $1 WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, membersJSON, id)
	if err != nil {
		return fmt.Errorf("failed to update team members: %w", err)
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}

func (r *postgresRegistrationRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.RegistrationStatus) error {
	executor := r.getExecutor(exec)
	query := `UPDATE registrations SET status = $1 WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update registration status: %w", err)
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}

// BulkUpdateStatus transitions every registration of the given profiles
// for one event in a single statement. Used by cascade verification.
func (r *postgresRegistrationRepository) BulkUpdateStatus(ctx context.Context, exec SQLExecutor, eventID int, profileIDs []int, status models.RegistrationStatus) error {
	if len(profileIDs) == 0 {
		return nil
	}
	executor := r.getExecutor(exec)
	query := `UPDATE registrations SET status = $1 WHERE event_id = $2 AND profile_id = ANY($3)`
	_, err := executor.ExecContext(ctx, query, status, eventID, pq.Array(profileIDs))
	if err != nil {
		return fmt.Errorf("failed to bulk update registration status: %w", err)
	}
	return nil
}

func (r *postgresRegistrationRepository) UpdatePaymentProof(ctx context.Context, id int, transactionID *string, screenshotKey *string) error {
	query := `UPDATE registrations SET transaction_id = $1, screenshot_key = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, transactionID, screenshotKey, id)
	if err != nil {
		return fmt.Errorf("failed to update payment proof: %w", err)
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}

// RepointProfile swaps the profile reference on a member row, the
// second half of a member replacement.
func (r *postgresRegistrationRepository) RepointProfile(ctx context.Context, exec SQLExecutor, id int, newProfileID int) error {
	executor := r.getExecutor(exec)
	query := `UPDATE registrations SET profile_id = $1 WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, newProfileID, id)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505":
				return ErrRegistrationConflict
			case "23503":
				return ErrRegistrationProfileInvalid
			}
		}
		return fmt.Errorf("failed to repoint registration profile: %w", err)
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}

// NextTeamNumber allocates the next team number for an event. Runs
// inside the caller's transaction so concurrent team registrations
// cannot allocate the same number.
func (r *postgresRegistrationRepository) NextTeamNumber(ctx context.Context, exec SQLExecutor, eventID int) (int, error) {
	executor := r.getExecutor(exec)
	query := `SELECT COALESCE(MAX(team_number), 0) + 1 FROM registrations WHERE event_id = $1`
	var next int
	if err := executor.QueryRowContext(ctx, query, eventID).Scan(&next); err != nil {
		return 0, fmt.Errorf("failed to allocate team number: %w", err)
	}
	return next, nil
}

func (r *postgresRegistrationRepository) CountByStatus(ctx context.Context, status *models.RegistrationStatus) (int, error) {
	query := `SELECT COUNT(*) FROM registrations`
	args := []interface{}{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count registrations: %w", err)
	}
	return count, nil
}

func (r *postgresRegistrationRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	query := `DELETE FROM registrations WHERE id = $1`
	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete registration: %w", err)
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}

// DeleteByEventAndProfiles removes the member index rows of a team in
// one statement, for whole-team deletion.
func (r *postgresRegistrationRepository) DeleteByEventAndProfiles(ctx context.Context, exec SQLExecutor, eventID int, profileIDs []int) error {
	if len(profileIDs) == 0 {
		return nil
	}
	executor := r.getExecutor(exec)
	query := `DELETE FROM registrations WHERE event_id = $1 AND profile_id = ANY($2)`
	_, err := executor.ExecContext(ctx, query, eventID, pq.Array(profileIDs))
	if err != nil {
		return fmt.Errorf("failed to delete member registrations: %w", err)
	}
	return nil
}

func (r *postgresRegistrationRepository) findOne(ctx context.Context, query string, args ...interface{}) (*models.Registration, error) {
	reg, err := scanRegistration(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRegistrationNotFound
		}
		return nil, err
	}
	return reg, nil
}

func scanRegistration(scanner interface{ Scan(dest ...interface{}) error }) (*models.Registration, error) {
	var reg models.Registration
	var membersJSON []byte
	err := scanner.Scan(
		&reg.ID, &reg.EventID, &reg.ProfileID, &reg.Status, &reg.PaymentMode, &membersJSON,
		&reg.TeamNumber, &reg.TransactionID, &reg.ScreenshotKey, &reg.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan registration: %w", err)
	}
	if err := unmarshalTeamMembers(membersJSON, &reg.TeamMembers); err != nil {
		return nil, err
	}
	return &reg, nil
}

func marshalTeamMembers(members []models.TeamMember) ([]byte, error) {
	if members == nil {
		members = []models.TeamMember{}
	}
	data, err := json.Marshal(members)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal team members: %w", err)
	}
	return data, nil
}

func unmarshalTeamMembers(data []byte, dst *[]models.TeamMember) error {
	*dst = []models.TeamMember{}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to unmarshal team members: %w", err)
	}
	return nil
}
