package repository

import (
	"context"
	"errors"
	"time"

	"github.com/baharkarakas/catalog-backend/internal/models"
)

var (
	ErrNotFound       = errors.New("credential not found")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrInvalidRole    = errors.New("unknown role")
)

// Credentials is the account store. Default reads leave PasswordHash empty;
// only the *WithSecret methods return it. Insert must fail atomically with
// ErrDuplicateEmail when the normalized email is taken. An empty role means
// RoleUser; any other unknown role is ErrInvalidRole.
type Credentials interface {
	FindByEmail(ctx context.Context, email string) (models.Credential, error)
	FindByEmailWithSecret(ctx context.Context, email string) (models.Credential, error)
	FindByIDWithSecret(ctx context.Context, id string) (models.Credential, error)
	Insert(ctx context.Context, c models.Credential) (models.Credential, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) (models.Credential, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}
