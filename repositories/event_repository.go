package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bonhomie/fest-system/models"
	"github.com/lib/pq"
)

var (
	ErrEventNotFound       = errors.New("event not found")
	ErrEventNameConflict   = errors.New("event name conflict")
	ErrEventInvalidCreator = errors.New("invalid event creator reference")
	ErrEventInUse          = errors.New("event has registrations and cannot be deleted")
)

type ListEventsFilter struct {
	Category *string
	Day      *int
	Status   *models.EventStatus
	LiveOnly bool
	Limit    int
	Offset   int
}

// WinnerUpdate carries the winner references written by result announcement.
type WinnerUpdate struct {
	FirstPlaceRegID  int
	SecondPlaceRegID *int
	ThirdPlaceRegID  *int
	AnnouncedAt      time.Time
}

type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id int) (*models.Event, error)
	List(ctx context.Context, filter ListEventsFilter) ([]models.Event, error)
	Update(ctx context.Context, event *models.Event) error
	UpdateLiveStatus(ctx context.Context, id int, isLive bool, status models.EventStatus) error
	UpdateCoverKey(ctx context.Context, id int, coverKey *string) error
	UpdateQRKey(ctx context.Context, id int, qrKey *string) error
	SetWinners(ctx context.Context, exec SQLExecutor, eventID int, winners WinnerUpdate) error
	ListExpiredLive(ctx context.Context, now time.Time) ([]*models.Event, error)
	Count(ctx context.Context, liveOnly bool) (int, error)
	Delete(ctx context.Context, id int) error
}

type postgresEventRepository struct {
	db *sql.DB
}

func NewPostgresEventRepository(db *sql.DB) EventRepository {
	return &postgresEventRepository{db: db}
}

const eventColumns = `
	id, name, description, category, day, event_date, event_time, venue, fee,
	min_team_size, max_team_size, payment_mode, allowed_gender, status, is_live,
	created_by, created_at, first_place_reg_id, second_place_reg_id, third_place_reg_id,
	results_announced, results_announced_at, cover_key, qr_key`

func (r *postgresEventRepository) Create(ctx context.Context, e *models.Event) error {
	query := `
		INSERT INTO events (
			name, description, category, day, event_date, event_time, venue, fee,
			min_team_size, max_team_size, payment_mode, allowed_gender, status, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		e.Name, e.Description, e.Category, e.Day, e.EventDate, e.EventTime, e.Venue, e.Fee,
		e.MinTeamSize, e.MaxTeamSize, e.PaymentMode, e.AllowedGender, e.Status, e.CreatedBy,
	).Scan(&e.ID, &e.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505":
				if pqErr.Constraint == "events_name_key" {
					return ErrEventNameConflict
				}
			case "23503":
				if pqErr.Constraint == "events_created_by_fkey" {
					return ErrEventInvalidCreator
				}
			}
		}
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

func (r *postgresEventRepository) GetByID(ctx context.Context, id int) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	e := &models.Event{}
	err := scanEventRow(r.db.QueryRowContext(ctx, query, id), e)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return e, nil
}

func (r *postgresEventRepository) List(ctx context.Context, filter ListEventsFilter) ([]models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE 1=1`
	args := []interface{}{}
	argID := 1

	if filter.Category != nil {
		query += fmt.Sprintf(" AND category = $%d", argID)
		args = append(args, *filter.Category)
		argID++
	}
	if filter.Day != nil {
		query += fmt.Sprintf(" AND day = $%d", argID)
		args = append(args, *filter.Day)
		argID++
	}
	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argID)
		args = append(args, *filter.Status)
		argID++
	}
	if filter.LiveOnly {
		query += " AND is_live = true"
	}

	query += " ORDER BY day ASC, event_date ASC, name ASC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	events := make([]models.Event, 0)
	for rows.Next() {
		var e models.Event
		if err := scanEventRow(rows, &e); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		events = append(events, e)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *postgresEventRepository) Update(ctx context.Context, e *models.Event) error {
	query := `
		UPDATE events SET
			name = $1, description = $2, category = $3, day = $4, event_date = $5,
			event_time = $6, venue = $7, fee = $8, min_team_size = $9, max_team_size = $10,
			payment_mode = $11, allowed_gender = $12
		WHERE id = $13`

	result, err := r.db.ExecContext(ctx, query,
		e.Name, e.Description, e.Category, e.Day, e.EventDate,
		e.EventTime, e.Venue, e.Fee, e.MinTeamSize, e.MaxTeamSize,
		e.PaymentMode, e.AllowedGender, e.ID,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" && pqErr.Constraint == "events_name_key" {
			return ErrEventNameConflict
		}
		return fmt.Errorf("failed to update event: %w", err)
	}
	return checkAffectedRows(result, ErrEventNotFound)
}

func (r *postgresEventRepository) UpdateLiveStatus(ctx context.Context, id int, isLive bool, status models.EventStatus) error {
	query := `UPDATE events SET is_live = $1, status = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, isLive, status, id)
	if err != nil {
		return fmt.Errorf("failed to update event live status: %w", err)
	}
	return checkAffectedRows(result, ErrEventNotFound)
}

func (r *postgresEventRepository) UpdateCoverKey(ctx context.Context, id int, coverKey *string) error {
	query := `UPDATE events SET cover_key = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, coverKey, id)
	if err != nil {
		return fmt.Errorf("failed to update event cover key: %w", err)
	}
	return checkAffectedRows(result, ErrEventNotFound)
}

func (r *postgresEventRepository) UpdateQRKey(ctx context.Context, id int, qrKey *string) error {
	query := `UPDATE events SET qr_key = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, qrKey, id)
	if err != nil {
		return fmt.Errorf("failed to update event qr key: %w", err)
	}
	return checkAffectedRows(result, ErrEventNotFound)
}

// SetWinners writes the winner references and flips results_announced.
// The guard on results_announced makes the write first-wins: a second
// announcement finds zero rows and maps to ErrEventNotFound.
func (r *postgresEventRepository) SetWinners(ctx context.Context, exec SQLExecutor, eventID int, w WinnerUpdate) error {
	if exec == nil {
		exec = r.db
	}
	query := `
		UPDATE events SET
			first_place_reg_id = $1,
			second_place_reg_id = $2,
			third_place_reg_id = $3,
			results_announced = true,
			results_announced_at = $4,
			is_live = false,
			status = $5
		WHERE id = $6 AND results_announced = false`

	result, err := exec.ExecContext(ctx, query,
		w.FirstPlaceRegID, w.SecondPlaceRegID, w.ThirdPlaceRegID,
		w.AnnouncedAt, models.EventStatusCompleted, eventID,
	)
	if err != nil {
		return fmt.Errorf("failed to set event winners: %w", err)
	}
	return checkAffectedRows(result, ErrEventNotFound)
}

// ListExpiredLive returns events still flagged live whose scheduled
// date is already over, for the background scheduler.
func (r *postgresEventRepository) ListExpiredLive(ctx context.Context, now time.Time) ([]*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE is_live = true AND event_date < $1`

	rows, err := r.db.QueryContext(ctx, query, now.Truncate(24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("failed to list expired live events: %w", err)
	}
	defer rows.Close()

	events := make([]*models.Event, 0)
	for rows.Next() {
		var e models.Event
		if err := scanEventRow(rows, &e); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		events = append(events, &e)
	}
	return events, rows.Err()
}

func (r *postgresEventRepository) Count(ctx context.Context, liveOnly bool) (int, error) {
	query := `SELECT COUNT(*) FROM events`
	if liveOnly {
		query += ` WHERE is_live = true`
	}
	var count int
	if err := r.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return count, nil
}

func (r *postgresEventRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM events WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrEventInUse
		}
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return checkAffectedRows(result, ErrEventNotFound)
}

func scanEventRow(scanner interface{ Scan(dest ...interface{}) error }, e *models.Event) error {
	return scanner.Scan(
		&e.ID, &e.Name, &e.Description, &e.Category, &e.Day, &e.EventDate, &e.EventTime,
		&e.Venue, &e.Fee, &e.MinTeamSize, &e.MaxTeamSize, &e.PaymentMode, &e.AllowedGender,
		&e.Status, &e.IsLive, &e.CreatedBy, &e.CreatedAt,
		&e.FirstPlaceRegID, &e.SecondPlaceRegID, &e.ThirdPlaceRegID,
		&e.ResultsAnnounced, &e.ResultsAnnouncedAt, &e.CoverKey, &e.QRKey,
	)
}
