// Package memory is a process-local credential store for local runs and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/baharkarakas/catalog-backend/internal/models"
	"github.com/baharkarakas/catalog-backend/internal/repository"
)

// Credentials implements repository.Credentials over two maps guarded by one mutex.
type Credentials struct {
	mu      sync.RWMutex
	byID    map[string]models.Credential
	byEmail map[string]string // email -> id
	now     func() time.Time
}

func NewCredentials() *Credentials {
	return &Credentials{
		byID:    map[string]models.Credential{},
		byEmail: map[string]string{},
		now:     time.Now,
	}
}

var _ repository.Credentials = (*Credentials)(nil)

func (r *Credentials) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

func (r *Credentials) FindByEmail(ctx context.Context, email string) (models.Credential, error) {
	c, err := r.FindByEmailWithSecret(ctx, email)
	return c.Public(), err
}

func (r *Credentials) FindByEmailWithSecret(ctx context.Context, email string) (models.Credential, error) {
	if err := ctx.Err(); err != nil {
		return models.Credential{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return models.Credential{}, repository.ErrNotFound
	}
	return r.byID[id], nil
}

func (r *Credentials) FindByIDWithSecret(ctx context.Context, id string) (models.Credential, error) {
	if err := ctx.Err(); err != nil {
		return models.Credential{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byID[id]
	if !ok {
		return models.Credential{}, repository.ErrNotFound
	}
	return c, nil
}

// Insert checks and claims the email under one lock, so it is the atomic
// uniqueness point for this store.
func (r *Credentials) Insert(ctx context.Context, c models.Credential) (models.Credential, error) {
	if err := ctx.Err(); err != nil {
		return models.Credential{}, err
	}
	if c.Role == "" {
		c.Role = models.RoleUser
	}
	if !c.Role.Valid() {
		return models.Credential{}, repository.ErrInvalidRole
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byEmail[c.Email]; taken {
		return models.Credential{}, repository.ErrDuplicateEmail
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := r.now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	r.byID[c.ID] = c
	r.byEmail[c.Email] = c.ID
	return c.Public(), nil
}

func (r *Credentials) UpdateLastLogin(ctx context.Context, id string, at time.Time) (models.Credential, error) {
	if err := ctx.Err(); err != nil {
		return models.Credential{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return models.Credential{}, repository.ErrNotFound
	}
	c.LastLogin = &at
	c.UpdatedAt = r.now().UTC()
	r.byID[id] = c
	return c.Public(), nil
}

func (r *Credentials) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.PasswordHash = passwordHash
	c.UpdatedAt = r.now().UTC()
	r.byID[id] = c
	return nil
}
