package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dimitrije/unimag/internal/apperror"
	"github.com/dimitrije/unimag/internal/database"
	"github.com/dimitrije/unimag/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var profileRowColumns = []string{
	"id", "email", "full_name", "role", "user_scope", "user_type",
	"bio", "profile_image", "department", "company", "created_at", "updated_at",
}

func setupPostgresProfiles(t *testing.T) (*PostgresProfiles, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	db := &database.DB{Pool: mock}
	return NewPostgresProfiles(db), mock
}

func TestPostgresProfiles_GetByID(t *testing.T) {
	profiles, mock := setupPostgresProfiles(t)
	userID := uuid.New()
	now := time.Now()
	bio := "Writes about campus life"
	empty := ""

	rows := pgxmock.NewRows(profileRowColumns).
		AddRow(userID, "a@b.com", "Ann Author", models.RoleAuthor, models.ScopeInternal, nil,
			&bio, &empty, nil, nil, now, &now)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE id = \$1`).
		WithArgs(userID).
		WillReturnRows(rows)

	profile, err := profiles.GetByID(context.Background(), userID)

	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, userID, profile.ID)
	assert.Equal(t, "Ann Author", profile.FullName)
	assert.Equal(t, models.ScopeInternal, profile.UserScope)
	require.NotNil(t, profile.Bio)
	assert.Equal(t, bio, *profile.Bio)
	assert.Nil(t, profile.ProfileImage, "empty strings read as absent")
	assert.Nil(t, profile.UserType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresProfiles_GetByID_NoRow(t *testing.T) {
	profiles, mock := setupPostgresProfiles(t)
	userID := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM users WHERE id = \$1`).
		WithArgs(userID).
		WillReturnError(pgx.ErrNoRows)

	profile, err := profiles.GetByID(context.Background(), userID)

	require.NoError(t, err)
	assert.Nil(t, profile)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresProfiles_GetByID_Error(t *testing.T) {
	profiles, mock := setupPostgresProfiles(t)
	userID := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM users`).
		WithArgs(userID).
		WillReturnError(errors.New("connection reset"))

	_, err := profiles.GetByID(context.Background(), userID)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load profile")
}

func TestPostgresProfiles_Update(t *testing.T) {
	profiles, mock := setupPostgresProfiles(t)
	userID := uuid.New()
	now := time.Now()
	bio := "hi"
	updates := models.ProfileUpdate{Bio: &bio}

	rows := pgxmock.NewRows(profileRowColumns).
		AddRow(userID, "a@b.com", "Ann Author", models.RoleAuthor, models.ScopeExternal, nil,
			&bio, nil, nil, nil, now, &now)

	mock.ExpectQuery(`UPDATE users SET`).
		WithArgs(pgxmock.AnyArg(), &bio, pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), userID).
		WillReturnRows(rows)

	profile, err := profiles.Update(context.Background(), userID, updates)

	require.NoError(t, err)
	require.NotNil(t, profile.Bio)
	assert.Equal(t, "hi", *profile.Bio)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresProfiles_Update_NoRow(t *testing.T) {
	profiles, mock := setupPostgresProfiles(t)
	userID := uuid.New()

	mock.ExpectQuery(`UPDATE users SET`).
		WillReturnError(pgx.ErrNoRows)

	_, err := profiles.Update(context.Background(), userID, models.ProfileUpdate{})

	assert.True(t, apperror.IsNotFound(err))
}

func TestPostgresProfiles_SetRole(t *testing.T) {
	profiles, mock := setupPostgresProfiles(t)

	mock.ExpectExec(`UPDATE users SET role = \$1`).
		WithArgs(models.RoleEditor, "a@b.com").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := profiles.SetRole(context.Background(), "a@b.com", models.RoleEditor)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresProfiles_SetRole_UnknownEmail(t *testing.T) {
	profiles, mock := setupPostgresProfiles(t)

	mock.ExpectExec(`UPDATE users SET role`).
		WithArgs(models.RoleAdmin, "ghost@b.com").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := profiles.SetRole(context.Background(), "ghost@b.com", models.RoleAdmin)

	assert.True(t, apperror.IsNotFound(err))
}

func TestPostgresProfiles_SetRole_InvalidRole(t *testing.T) {
	profiles, mock := setupPostgresProfiles(t)

	err := profiles.SetRole(context.Background(), "a@b.com", "superuser")

	assert.True(t, apperror.IsValidation(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
