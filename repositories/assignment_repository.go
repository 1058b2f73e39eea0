package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bonhomie/fest-system/models"
	"github.com/lib/pq"
)

var (
	ErrAssignmentNotFound = errors.New("event assignment not found")
	ErrAssignmentConflict = errors.New("coordinator already assigned to this event")
	ErrAssignmentInvalid  = errors.New("assignment event or coordinator reference invalid")
)

type AssignmentRepository interface {
	Create(ctx context.Context, assignment *models.EventAssignment) error
	Exists(ctx context.Context, eventID, coordinatorID int) (bool, error)
	ListByCoordinator(ctx context.Context, coordinatorID int) ([]*models.EventAssignment, error)
	ListByEvent(ctx context.Context, eventID int) ([]*models.EventAssignment, error)
	Delete(ctx context.Context, id int) error
}

type postgresAssignmentRepository struct {
	db *sql.DB
}

func NewPostgresAssignmentRepository(db *sql.DB) AssignmentRepository {
	return &postgresAssignmentRepository{db: db}
}

func (r *postgresAssignmentRepository) Create(ctx context.Context, a *models.EventAssignment) error {
	query := `
		INSERT INTO event_assignments (event_id, coordinator_id)
		VALUES ($1, $2)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, a.EventID, a.CoordinatorID).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505":
				return ErrAssignmentConflict
			case "23503":
				return ErrAssignmentInvalid
			}
		}
		return fmt.Errorf("failed to create event assignment: %w", err)
	}
	return nil
}

func (r *postgresAssignmentRepository) Exists(ctx context.Context, eventID, coordinatorID int) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM event_assignments WHERE event_id = $1 AND coordinator_id = $2)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, eventID, coordinatorID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check event assignment: %w", err)
	}
	return exists, nil
}

func (r *postgresAssignmentRepository) ListByCoordinator(ctx context.Context, coordinatorID int) ([]*models.EventAssignment, error) {
	query := `
		SELECT id, event_id, coordinator_id, created_at
		FROM event_assignments
		WHERE coordinator_id = $1
		ORDER BY created_at ASC`
	return r.list(ctx, query, coordinatorID)
}

func (r *postgresAssignmentRepository) ListByEvent(ctx context.Context, eventID int) ([]*models.EventAssignment, error) {
	query := `
		SELECT id, event_id, coordinator_id, created_at
		FROM event_assignments
		WHERE event_id = $1
		ORDER BY created_at ASC`
	return r.list(ctx, query, eventID)
}

func (r *postgresAssignmentRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM event_assignments WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete event assignment: %w", err)
	}
	return checkAffectedRows(result, ErrAssignmentNotFound)
}

func (r *postgresAssignmentRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.EventAssignment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list event assignments: %w", err)
	}
	defer rows.Close()

	assignments := make([]*models.EventAssignment, 0)
	for rows.Next() {
		var a models.EventAssignment
		if err := rows.Scan(&a.ID, &a.EventID, &a.CoordinatorID, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event assignment row: %w", err)
		}
		assignments = append(assignments, &a)
	}
	return assignments, rows.Err()
}
