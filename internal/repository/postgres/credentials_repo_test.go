package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baharkarakas/catalog-backend/internal/models"
	"github.com/baharkarakas/catalog-backend/internal/repository"
)

const testID = "6f1c2b9e-3d5a-4c8e-9a51-2f0c7e4b8d13"

var (
	publicColumns = []string{"id", "name", "email", "role", "last_login", "created_at", "updated_at"}
	secretColumns = append(append([]string{}, publicColumns...), "password_hash")
	created       = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
)

func newMock(t *testing.T) (pgxmock.PgxPoolIface, repository.Credentials) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err, "failed to create mock")
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock, NewRepositories(mock).Credentials
}

func TestCredentialsRepo_Insert(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantErr   error
		errMsg    string
	}{
		{
			name: "inserts and returns default projection",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO users`).
					WithArgs(pgxmock.AnyArg(), "Ada Lovelace", "ada@example.com", "$2a$12$hash", "user").
					WillReturnRows(pgxmock.NewRows(publicColumns).
						AddRow(testID, "Ada Lovelace", "ada@example.com", "user", (*time.Time)(nil), created, created))
			},
		},
		{
			name: "unique violation becomes ErrDuplicateEmail",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO users`).
					WithArgs(pgxmock.AnyArg(), "Ada Lovelace", "ada@example.com", "$2a$12$hash", "user").
					WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_email_key"})
			},
			wantErr: repository.ErrDuplicateEmail,
		},
		{
			name: "other database error is wrapped",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO users`).
					WithArgs(pgxmock.AnyArg(), "Ada Lovelace", "ada@example.com", "$2a$12$hash", "user").
					WillReturnError(errors.New("connection refused"))
			},
			errMsg: "connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, repo := newMock(t)
			tt.setupMock(mock)

			got, err := repo.Insert(context.Background(), models.Credential{
				Name:         "Ada Lovelace",
				Email:        "ada@example.com",
				PasswordHash: "$2a$12$hash",
			})

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.errMsg != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				assert.NotErrorIs(t, err, repository.ErrDuplicateEmail)
			default:
				require.NoError(t, err)
				assert.Equal(t, testID, got.ID)
				assert.Equal(t, models.RoleUser, got.Role)
				assert.Nil(t, got.LastLogin)
				assert.Empty(t, got.PasswordHash)
				assert.Equal(t, created, got.CreatedAt)
			}
		})
	}
}

func TestCredentialsRepo_InsertUnknownRole(t *testing.T) {
	_, repo := newMock(t)

	_, err := repo.Insert(context.Background(), models.Credential{
		Name:         "Ada Lovelace",
		Email:        "ada@example.com",
		PasswordHash: "$2a$12$hash",
		Role:         "superuser",
	})
	assert.ErrorIs(t, err, repository.ErrInvalidRole)
}

func TestCredentialsRepo_FindByEmail(t *testing.T) {
	t.Run("default projection has no hash", func(t *testing.T) {
		mock, repo := newMock(t)
		mock.ExpectQuery(`SELECT id, name, email, role, last_login, created_at, updated_at FROM users WHERE email=\$1`).
			WithArgs("ada@example.com").
			WillReturnRows(pgxmock.NewRows(publicColumns).
				AddRow(testID, "Ada Lovelace", "ada@example.com", "admin", (*time.Time)(nil), created, created))

		got, err := repo.FindByEmail(context.Background(), "ada@example.com")
		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, got.Role)
		assert.Empty(t, got.PasswordHash)
	})

	t.Run("secret read includes hash", func(t *testing.T) {
		mock, repo := newMock(t)
		mock.ExpectQuery(`SELECT .+, password_hash FROM users WHERE email=\$1`).
			WithArgs("ada@example.com").
			WillReturnRows(pgxmock.NewRows(secretColumns).
				AddRow(testID, "Ada Lovelace", "ada@example.com", "user", (*time.Time)(nil), created, created, "$2a$12$hash"))

		got, err := repo.FindByEmailWithSecret(context.Background(), "ada@example.com")
		require.NoError(t, err)
		assert.Equal(t, "$2a$12$hash", got.PasswordHash)
	})

	t.Run("no rows is ErrNotFound", func(t *testing.T) {
		mock, repo := newMock(t)
		mock.ExpectQuery(`FROM users WHERE email=\$1`).
			WithArgs("ghost@example.com").
			WillReturnRows(pgxmock.NewRows(publicColumns))

		_, err := repo.FindByEmail(context.Background(), "ghost@example.com")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("query error is wrapped", func(t *testing.T) {
		mock, repo := newMock(t)
		mock.ExpectQuery(`FROM users WHERE email=\$1`).
			WithArgs("ada@example.com").
			WillReturnError(errors.New("boom"))

		_, err := repo.FindByEmailWithSecret(context.Background(), "ada@example.com")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "boom")
		assert.NotErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestCredentialsRepo_FindByIDWithSecret(t *testing.T) {
	t.Run("malformed id never hits the database", func(t *testing.T) {
		_, repo := newMock(t)
		_, err := repo.FindByIDWithSecret(context.Background(), "not-a-uuid")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("secret read by id", func(t *testing.T) {
		mock, repo := newMock(t)
		mock.ExpectQuery(`SELECT .+, password_hash FROM users WHERE id=\$1`).
			WithArgs(testID).
			WillReturnRows(pgxmock.NewRows(secretColumns).
				AddRow(testID, "Ada Lovelace", "ada@example.com", "user", (*time.Time)(nil), created, created, "$2a$12$hash"))

		got, err := repo.FindByIDWithSecret(context.Background(), testID)
		require.NoError(t, err)
		assert.Equal(t, "$2a$12$hash", got.PasswordHash)
	})
}

func TestCredentialsRepo_UpdateLastLogin(t *testing.T) {
	at := time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC)

	t.Run("updates and returns row", func(t *testing.T) {
		mock, repo := newMock(t)
		mock.ExpectQuery(`UPDATE users SET last_login=\$2`).
			WithArgs(testID, at).
			WillReturnRows(pgxmock.NewRows(publicColumns).
				AddRow(testID, "Ada Lovelace", "ada@example.com", "user", &at, created, at))

		got, err := repo.UpdateLastLogin(context.Background(), testID, at)
		require.NoError(t, err)
		require.NotNil(t, got.LastLogin)
		assert.Equal(t, at, *got.LastLogin)
	})

	t.Run("missing row", func(t *testing.T) {
		mock, repo := newMock(t)
		mock.ExpectQuery(`UPDATE users SET last_login=\$2`).
			WithArgs(testID, at).
			WillReturnRows(pgxmock.NewRows(publicColumns))

		_, err := repo.UpdateLastLogin(context.Background(), testID, at)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestCredentialsRepo_UpdatePassword(t *testing.T) {
	t.Run("updates hash", func(t *testing.T) {
		mock, repo := newMock(t)
		mock.ExpectExec(`UPDATE users SET password_hash=\$2`).
			WithArgs(testID, "$2a$12$new").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		require.NoError(t, repo.UpdatePassword(context.Background(), testID, "$2a$12$new"))
	})

	t.Run("no row affected", func(t *testing.T) {
		mock, repo := newMock(t)
		mock.ExpectExec(`UPDATE users SET password_hash=\$2`).
			WithArgs(testID, "$2a$12$new").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		assert.ErrorIs(t, repo.UpdatePassword(context.Background(), testID, "$2a$12$new"), repository.ErrNotFound)
	})

	t.Run("exec error", func(t *testing.T) {
		mock, repo := newMock(t)
		mock.ExpectExec(`UPDATE users SET password_hash=\$2`).
			WithArgs(testID, "$2a$12$new").
			WillReturnError(errors.New("timeout"))

		err := repo.UpdatePassword(context.Background(), testID, "$2a$12$new")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "timeout")
	})
}
