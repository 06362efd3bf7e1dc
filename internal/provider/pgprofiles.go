package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/dimitrije/unimag/internal/apperror"
	"github.com/dimitrije/unimag/internal/database"
	"github.com/dimitrije/unimag/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const profileColumns = `id, email, full_name, role, user_scope, user_type, bio, profile_image, department, company, created_at, updated_at`

// PostgresProfiles reads users rows straight from the provider's database.
type PostgresProfiles struct {
	db *database.DB
}

func NewPostgresProfiles(db *database.DB) *PostgresProfiles {
	return &PostgresProfiles{db: db}
}

func (p *PostgresProfiles) GetByID(ctx context.Context, id uuid.UUID) (*models.UserProfile, error) {
	row, err := scanProfile(p.db.Pool.QueryRow(ctx, `
		SELECT `+profileColumns+`
		FROM users WHERE id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return row.toProfile(), nil
}

func (p *PostgresProfiles) Update(ctx context.Context, id uuid.UUID, updates models.ProfileUpdate) (*models.UserProfile, error) {
	row, err := scanProfile(p.db.Pool.QueryRow(ctx, `
		UPDATE users SET
			full_name = COALESCE($1, full_name),
			bio = COALESCE($2, bio),
			profile_image = COALESCE($3, profile_image),
			user_type = COALESCE($4, user_type),
			department = COALESCE($5, department),
			company = COALESCE($6, company),
			updated_at = NOW()
		WHERE id = $7
		RETURNING `+profileColumns,
		updates.FullName, updates.Bio, updates.ProfileImage,
		updates.UserType, updates.Department, updates.Company, id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NewNotFound("profile not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return row.toProfile(), nil
}

// SetRole changes a profile's role by email. Roles are not client-updatable,
// so this is only reachable from operator tooling.
func (p *PostgresProfiles) SetRole(ctx context.Context, email, role string) error {
	if !models.IsValidRole(role) {
		return apperror.NewValidation("role must be one of author, editor, admin")
	}

	result, err := p.db.Pool.Exec(ctx, `
		UPDATE users SET role = $1, updated_at = NOW()
		WHERE email = $2
	`, role, email)
	if err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("no user found with email " + email)
	}
	return nil
}

func scanProfile(row pgx.Row) (*profileRow, error) {
	var r profileRow
	err := row.Scan(
		&r.ID, &r.Email, &r.FullName, &r.Role, &r.UserScope, &r.UserType,
		&r.Bio, &r.ProfileImage, &r.Department, &r.Company, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}
