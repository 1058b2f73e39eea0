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
	ErrProfileNotFound        = errors.New("profile not found")
	ErrProfileEmailConflict   = errors.New("profile email conflict")
	ErrProfileRollNumConflict = errors.New("profile roll number conflict")
)

type ListProfilesFilter struct {
	Department   *string
	Role         *models.ProfileRole
	AdminCreated *bool
	Search       string // matches full_name or roll_number, case-insensitive
	Limit        int
	Offset       int
}

type ProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error
	GetByID(ctx context.Context, id int) (*models.Profile, error)
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
	GetByRollNumber(ctx context.Context, rollNumber string) (*models.Profile, error)
	List(ctx context.Context, filter ListProfilesFilter) ([]models.Profile, error)
	Update(ctx context.Context, profile *models.Profile) error
	UpdatePasswordHash(ctx context.Context, id int, hash string) error
	IncrementWins(ctx context.Context, exec SQLExecutor, profileIDs []int) error
	Count(ctx context.Context, adminCreatedOnly bool) (int, error)
	Delete(ctx context.Context, id int) error
}

type postgresProfileRepository struct {
	db *sql.DB
}

func NewPostgresProfileRepository(db *sql.DB) ProfileRepository {
	return &postgresProfileRepository{db: db}
}

const profileColumns = `id, full_name, roll_number, department, gender, email, phone, role, wins, is_admin_created, password_hash, created_at`

func (r *postgresProfileRepository) Create(ctx context.Context, p *models.Profile) error {
	query := `
		INSERT INTO profiles (full_name, roll_number, department, gender, email, phone, role, is_admin_created, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, wins, created_at`

	err := r.db.QueryRowContext(ctx, query,
		p.FullName,
		p.RollNumber,
		p.Department,
		p.Gender,
		p.Email,
		p.Phone,
		p.Role,
		p.IsAdminCreated,
		p.PasswordHash,
	).Scan(&p.ID, &p.Wins, &p.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			switch pqErr.Constraint {
			case "profiles_email_key":
				return ErrProfileEmailConflict
			case "profiles_roll_number_key":
				return ErrProfileRollNumConflict
			}
		}
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

func (r *postgresProfileRepository) GetByID(ctx context.Context, id int) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	return r.scanProfile(ctx, query, id)
}

func (r *postgresProfileRepository) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE email = $1`
	return r.scanProfile(ctx, query, email)
}

func (r *postgresProfileRepository) GetByRollNumber(ctx context.Context, rollNumber string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE upper(roll_number) = upper($1)`
	return r.scanProfile(ctx, query, rollNumber)
}

func (r *postgresProfileRepository) List(ctx context.Context, filter ListProfilesFilter) ([]models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE 1=1`
	args := []interface{}{}
	argID := 1

	if filter.Department != nil {
		query += fmt.Sprintf(" AND department = $%d", argID)
		args = append(args, *filter.Department)
		argID++
	}
	if filter.Role != nil {
		query += fmt.Sprintf(" AND role = $%d", argID)
		args = append(args, *filter.Role)
		argID++
	}
	if filter.AdminCreated != nil {
		query += fmt.Sprintf(" AND is_admin_created = $%d", argID)
		args = append(args, *filter.AdminCreated)
		argID++
	}
	if filter.Search != "" {
		query += fmt.Sprintf(" AND (full_name ILIKE $%d OR roll_number ILIKE $%d)", argID, argID)
		args = append(args, "%"+filter.Search+"%")
		argID++
	}

	query += " ORDER BY full_name ASC"

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
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	profiles := make([]models.Profile, 0)
	for rows.Next() {
		var p models.Profile
		if err := scanProfileRow(rows, &p); err != nil {
			return nil, fmt.Errorf("failed to scan profile row: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *postgresProfileRepository) Update(ctx context.Context, p *models.Profile) error {
	query := `
		UPDATE profiles SET
			full_name = $1,
			roll_number = $2,
			department = $3,
			gender = $4,
			email = $5,
			phone = $6,
			role = $7
		WHERE id = $8`

	result, err := r.db.ExecContext(ctx, query,
		p.FullName,
		p.RollNumber,
		p.Department,
		p.Gender,
		p.Email,
		p.Phone,
		p.Role,
		p.ID,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			switch pqErr.Constraint {
			case "profiles_email_key":
				return ErrProfileEmailConflict
			case "profiles_roll_number_key":
				return ErrProfileRollNumConflict
			}
		}
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return checkAffectedRows(result, ErrProfileNotFound)
}

func (r *postgresProfileRepository) UpdatePasswordHash(ctx context.Context, id int, hash string) error {
	query := `UPDATE profiles SET password_hash = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, hash, id)
	if err != nil {
		return fmt.Errorf("failed to update password hash: %w", err)
	}
	return checkAffectedRows(result, ErrProfileNotFound)
}

// IncrementWins bumps the win counter for every given profile id in a
// single statement. Callers pass their transaction as exec when the
// increment must commit together with other writes.
func (r *postgresProfileRepository) IncrementWins(ctx context.Context, exec SQLExecutor, profileIDs []int) error {
	if len(profileIDs) == 0 {
		return nil
	}
	if exec == nil {
		exec = r.db
	}
	query := `UPDATE profiles SET wins = wins + 1 WHERE id = ANY($1)`
	_, err := exec.ExecContext(ctx, query, pq.Array(profileIDs))
	if err != nil {
		return fmt.Errorf("failed to increment wins: %w", err)
	}
	return nil
}

func (r *postgresProfileRepository) Count(ctx context.Context, adminCreatedOnly bool) (int, error) {
	query := `SELECT COUNT(*) FROM profiles`
	if adminCreatedOnly {
		query += ` WHERE is_admin_created = true`
	}
	var count int
	if err := r.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count profiles: %w", err)
	}
	return count, nil
}

func (r *postgresProfileRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM profiles WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	return checkAffectedRows(result, ErrProfileNotFound)
}

func (r *postgresProfileRepository) scanProfile(ctx context.Context, query string, args ...interface{}) (*models.Profile, error) {
	p := &models.Profile{}
	err := scanProfileRow(r.db.QueryRowContext(ctx, query, args...), p)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to scan profile: %w", err)
	}
	return p, nil
}

func scanProfileRow(scanner interface{ Scan(dest ...interface{}) error }, p *models.Profile) error {
	return scanner.Scan(
		&p.ID,
		&p.FullName,
		&p.RollNumber,
		&p.Department,
		&p.Gender,
		&p.Email,
		&p.Phone,
		&p.Role,
		&p.Wins,
		&p.IsAdminCreated,
		&p.PasswordHash,
		&p.CreatedAt,
	)
}
