package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bonhomie/fest-system/models"
)

type AuditRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	ListByEntity(ctx context.Context, entity string, entityID int) ([]*models.AuditLog, error)
	ListRecent(ctx context.Context, limit int) ([]*models.AuditLog, error)
}

type postgresAuditRepository struct {
	db *sql.DB
}

func NewPostgresAuditRepository(db *sql.DB) AuditRepository {
	return &postgresAuditRepository{db: db}
}

func (r *postgresAuditRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	query := `
		INSERT INTO audit_logs (actor_id, action, entity, entity_id, details)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		entry.ActorID,
		entry.Action,
		entry.Entity,
		entry.EntityID,
		entry.Details,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create audit log entry: %w", err)
	}
	return nil
}

func (r *postgresAuditRepository) ListByEntity(ctx context.Context, entity string, entityID int) ([]*models.AuditLog, error) {
	query := `
		SELECT id, actor_id, action, entity, entity_id, details, created_at
		FROM audit_logs
		WHERE entity = $1 AND entity_id = $2
		ORDER BY created_at DESC`
	return r.list(ctx, query, entity, entityID)
}

func (r *postgresAuditRepository) ListRecent(ctx context.Context, limit int) ([]*models.AuditLog, error) {
	query := `
		SELECT id, actor_id, action, entity, entity_id, details, created_at
		FROM audit_logs
		ORDER BY created_at DESC
		LIMIT $1`
	return r.list(ctx, query, limit)
}

func (r *postgresAuditRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.AuditLog, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit log entries: %w", err)
	}
	defer rows.Close()

	entries := make([]*models.AuditLog, 0)
	for rows.Next() {
		var e models.AuditLog
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.Entity, &e.EntityID, &e.Details, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit log row: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
