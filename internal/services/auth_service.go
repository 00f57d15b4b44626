package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/baharkarakas/catalog-backend/internal/auth"
	"github.com/baharkarakas/catalog-backend/internal/metrics"
	"github.com/baharkarakas/catalog-backend/internal/models"
	repo "github.com/baharkarakas/catalog-backend/internal/repository"
	"github.com/baharkarakas/catalog-backend/internal/validate"
)

type PasswordHasher interface {
	Hash(ctx context.Context, plain string) (string, error)
	Verify(ctx context.Context, plain, hash string) (bool, error)
}

// AuthService registers accounts, checks logins and changes passwords. It
// holds no locks: email uniqueness is the store's job at Insert time.
type AuthService struct {
	r     repo.Credentials
	h     PasswordHasher
	now   func() time.Time
	dummy atomic.Pointer[string]
}

// NewAuthService hashes the dummy password used for unknown-email logins up
// front, so no login request pays for creating it.
func NewAuthService(r repo.Credentials, h PasswordHasher) *AuthService {
	s := &AuthService{r: r, h: h, now: time.Now}
	s.dummyHash(context.Background())
	return s
}

func outcome(err error) string {
	if err == nil {
		return "success"
	}
	return string(KindOf(err))
}

func (s *AuthService) internal(ctx context.Context, op string, err error) *Error {
	slog.ErrorContext(ctx, "auth: "+op, "err", err)
	return &Error{Kind: KindInternal, Message: msgInternal, Err: err}
}

// Register validates every field, rejects a taken email, hashes the password
// and stores a new user-role credential. The returned view never carries the hash.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (c models.Credential, err error) {
	defer func() { metrics.RegistrationsTotal.WithLabelValues(outcome(err)).Inc() }()

	if errs := validate.Registration(name, email, password); len(errs) > 0 {
		return models.Credential{}, policyViolation(errs.Messages())
	}
	name = strings.TrimSpace(name)
	email = validate.NormalizeEmail(email)

	// advisory: skips the hash when the email is obviously taken
	if _, err := s.r.FindByEmail(ctx, email); err == nil {
		return models.Credential{}, &Error{Kind: KindConflict, Message: msgConflict}
	} else if !errors.Is(err, repo.ErrNotFound) {
		return models.Credential{}, s.internal(ctx, "find credential by email", err)
	}

	hash, err := s.h.Hash(ctx, password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return models.Credential{}, policyViolation([]string{msgPasswordLength})
	}
	if err != nil {
		return models.Credential{}, s.internal(ctx, "hash password", err)
	}

	created, err := s.r.Insert(ctx, models.Credential{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleUser,
	})
	if errors.Is(err, repo.ErrDuplicateEmail) {
		return models.Credential{}, &Error{Kind: KindConflict, Message: msgConflict}
	}
	if err != nil {
		return models.Credential{}, s.internal(ctx, "insert credential", err)
	}
	return created.Public(), nil
}

// Login returns the same Unauthorized error for an unknown email and for a
// wrong password. On success only lastLogin is written; no policy is re-checked.
func (s *AuthService) Login(ctx context.Context, email, password string) (c models.Credential, err error) {
	defer func() { metrics.LoginsTotal.WithLabelValues(outcome(err)).Inc() }()

	if email == "" || password == "" {
		return models.Credential{}, &Error{Kind: KindInvalidRequest, Message: msgLoginRequired}
	}

	stored, err := s.r.FindByEmailWithSecret(ctx, validate.NormalizeEmail(email))
	if errors.Is(err, repo.ErrNotFound) {
		s.burnVerify(ctx, password)
		return models.Credential{}, &Error{Kind: KindUnauthorized, Message: msgUnauthorized}
	}
	if err != nil {
		return models.Credential{}, s.internal(ctx, "find credential with secret", err)
	}

	ok, err := s.h.Verify(ctx, password, stored.PasswordHash)
	if err != nil {
		return models.Credential{}, s.internal(ctx, "verify password", err)
	}
	if !ok {
		return models.Credential{}, &Error{Kind: KindUnauthorized, Message: msgUnauthorized}
	}

	updated, err := s.r.UpdateLastLogin(ctx, stored.ID, s.now().UTC())
	if err != nil {
		return models.Credential{}, s.internal(ctx, "update last login", err)
	}
	return updated.Public(), nil
}

// burnVerify spends one bcrypt comparison so a missing account costs about
// as much time as a wrong password.
func (s *AuthService) burnVerify(ctx context.Context, password string) {
	if hash := s.dummyHash(ctx); hash != nil {
		_, _ = s.h.Verify(ctx, password, *hash)
	}
}

// dummyHash returns the cached dummy hash, creating it when construction
// could not. Nil means the hasher is failing.
func (s *AuthService) dummyHash(ctx context.Context) *string {
	if hash := s.dummy.Load(); hash != nil {
		return hash
	}
	h, err := s.h.Hash(ctx, uuid.NewString())
	if err != nil {
		return nil
	}
	s.dummy.CompareAndSwap(nil, &h)
	return s.dummy.Load()
}

// ChangePassword is the only path besides Register that writes a hash. The new
// password goes through the full policy; name and email are left alone.
func (s *AuthService) ChangePassword(ctx context.Context, id, current, next string) error {
	if id == "" || current == "" || next == "" {
		return &Error{Kind: KindInvalidRequest, Message: msgChangeRequired}
	}
	if errs := validate.Password(next); len(errs) > 0 {
		return policyViolation(errs.Messages())
	}

	stored, err := s.r.FindByIDWithSecret(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return &Error{Kind: KindUnauthorized, Message: msgWrongPassword}
	}
	if err != nil {
		return s.internal(ctx, "find credential by id", err)
	}
	ok, err := s.h.Verify(ctx, current, stored.PasswordHash)
	if err != nil {
		return s.internal(ctx, "verify password", err)
	}
	if !ok {
		return &Error{Kind: KindUnauthorized, Message: msgWrongPassword}
	}

	hash, err := s.h.Hash(ctx, next)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return policyViolation([]string{msgPasswordLength})
	}
	if err != nil {
		return s.internal(ctx, "hash password", err)
	}
	if err := s.r.UpdatePassword(ctx, stored.ID, hash); err != nil {
		return s.internal(ctx, "update password", err)
	}
	return nil
}
