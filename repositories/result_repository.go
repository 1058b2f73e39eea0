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
	ErrResultNotFound         = errors.New("event result not found")
	ErrResultPositionConflict = errors.New("result position already announced for this event")
)

type ResultRepository interface {
	Create(ctx context.Context, exec SQLExecutor, result *models.EventResult) error
	ListByEvent(ctx context.Context, eventID int) ([]*models.EventResult, error)
	ListByProfile(ctx context.Context, profileID int) ([]*models.EventResult, error)
}

type postgresResultRepository struct {
	db *sql.DB
}

func NewPostgresResultRepository(db *sql.DB) ResultRepository {
	return &postgresResultRepository{db: db}
}

func (r *postgresResultRepository) Create(ctx context.Context, exec SQLExecutor, res *models.EventResult) error {
	executor := SQLExecutor(r.db)
	if exec != nil {
		executor = exec
	}

	membersJSON, err := marshalTeamMembers(res.TeamMembers)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO event_results (event_id, position, registration_id, profile_id, team_members, announced_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	err = executor.QueryRowContext(ctx, query,
		res.EventID,
		res.Position,
		res.RegistrationID,
		res.ProfileID,
		membersJSON,
		res.AnnouncedAt,
	).Scan(&res.ID)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			if pqErr.Constraint == "event_results_event_id_position_key" {
				return ErrResultPositionConflict
			}
		}
		return fmt.Errorf("failed to create event result: %w", err)
	}
	return nil
}

func (r *postgresResultRepository) ListByEvent(ctx context.Context, eventID int) ([]*models.EventResult, error) {
	query := `
		SELECT id, event_id, position, registration_id, profile_id, team_members, announced_at
		FROM event_results
		WHERE event_id = $1
		ORDER BY position ASC`
	return r.list(ctx, query, eventID)
}

func (r *postgresResultRepository) ListByProfile(ctx context.Context, profileID int) ([]*models.EventResult, error) {
	query := `
		SELECT id, event_id, position, registration_id, profile_id, team_members, announced_at
		FROM event_results
		WHERE profile_id = $1
		ORDER BY announced_at DESC`
	return r.list(ctx, query, profileID)
}

func (r *postgresResultRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.EventResult, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list event results: %w", err)
	}
	defer rows.Close()

	results := make([]*models.EventResult, 0)
	for rows.Next() {
		var res models.EventResult
		var membersJSON []byte
		err := rows.Scan(
			&res.ID, &res.EventID, &res.Position, &res.RegistrationID,
			&res.ProfileID, &membersJSON, &res.AnnouncedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event result row: %w", err)
		}
		if err := unmarshalTeamMembers(membersJSON, &res.TeamMembers); err != nil {
			return nil, err
		}
		results = append(results, &res)
	}
	return results, rows.Err()
}
