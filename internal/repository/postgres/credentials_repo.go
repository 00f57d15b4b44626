// internal/repository/postgres/credentials_repo.go
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/baharkarakas/catalog-backend/internal/models"
	"github.com/baharkarakas/catalog-backend/internal/repository"
)

// DBTX is the subset of *pgxpool.Pool the repositories use; pgxmock pools satisfy it too.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	publicCols = `id, name, email, role, last_login, created_at, updated_at`
	secretCols = `id, name, email, role, last_login, created_at, updated_at, password_hash`
)

type credentialsRepo struct{ db DBTX }

func NewCredentials(db DBTX) repository.Credentials {
	return &credentialsRepo{db: db}
}

func scanCredential(row pgx.Row, withSecret bool) (models.Credential, error) {
	var (
		c    models.Credential
		role string
	)
	dest := []any{&c.ID, &c.Name, &c.Email, &role, &c.LastLogin, &c.CreatedAt, &c.UpdatedAt}
	if withSecret {
		dest = append(dest, &c.PasswordHash)
	}
	if err := row.Scan(dest...); err != nil {
		return models.Credential{}, err
	}
	c.Role = models.Role(role)
	return c, nil
}

func (r *credentialsRepo) findOne(ctx context.Context, op, where, arg string, withSecret bool) (models.Credential, error) {
	cols := publicCols
	if withSecret {
		cols = secretCols
	}
	c, err := scanCredential(r.db.QueryRow(ctx, `SELECT `+cols+` FROM users WHERE `+where+`=$1`, arg), withSecret)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Credential{}, repository.ErrNotFound
	}
	if err != nil {
		return models.Credential{}, oops.With("operation", op).Wrap(err)
	}
	return c, nil
}

func (r *credentialsRepo) FindByEmail(ctx context.Context, email string) (models.Credential, error) {
	return r.findOne(ctx, "find credential by email", "email", email, false)
}

func (r *credentialsRepo) FindByEmailWithSecret(ctx context.Context, email string) (models.Credential, error) {
	return r.findOne(ctx, "find credential by email with secret", "email", email, true)
}

func (r *credentialsRepo) FindByIDWithSecret(ctx context.Context, id string) (models.Credential, error) {
	if _, err := uuid.Parse(id); err != nil {
		return models.Credential{}, repository.ErrNotFound
	}
	return r.findOne(ctx, "find credential by id with secret", "id", id, true)
}

// Insert relies on the users_email_key unique index; a concurrent insert of
// the same email surfaces as ErrDuplicateEmail.
func (r *credentialsRepo) Insert(ctx context.Context, c models.Credential) (models.Credential, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Role == "" {
		c.Role = models.RoleUser
	}
	if !c.Role.Valid() {
		return models.Credential{}, repository.ErrInvalidRole
	}
	out, err := scanCredential(r.db.QueryRow(ctx,
		`INSERT INTO users (id, name, email, password_hash, role)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+publicCols,
		c.ID, c.Name, c.Email, c.PasswordHash, string(c.Role),
	), false)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return models.Credential{}, repository.ErrDuplicateEmail
		}
		return models.Credential{}, oops.With("operation", "insert credential").Wrap(err)
	}
	return out, nil
}

func (r *credentialsRepo) UpdateLastLogin(ctx context.Context, id string, at time.Time) (models.Credential, error) {
	c, err := scanCredential(r.db.QueryRow(ctx,
		`UPDATE users SET last_login=$2, updated_at=now() WHERE id=$1 RETURNING `+publicCols,
		id, at,
	), false)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Credential{}, repository.ErrNotFound
	}
	if err != nil {
		return models.Credential{}, oops.With("operation", "update last login").With("id", id).Wrap(err)
	}
	return c, nil
}

func (r *credentialsRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET password_hash=$2, updated_at=now() WHERE id=$1`,
		id, passwordHash,
	)
	if err != nil {
		return oops.With("operation", "update password").With("id", id).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
