package auth

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/baharkarakas/catalog-backend/internal/metrics"
)

// DefaultCost is the bcrypt work factor (2^12 rounds).
const DefaultCost = 12

// MaxPasswordBytes is the longest plaintext bcrypt accepts.
const MaxPasswordBytes = 72

var ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

// Runner executes f off the caller's goroutine; worker.Pool satisfies it.
type Runner interface {
	Do(ctx context.Context, f func()) error
}

type inline struct{}

func (inline) Do(ctx context.Context, f func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f()
	return nil
}

// Hasher hashes and verifies passwords with bcrypt. The salt lives inside the
// encoded hash so nothing else needs storing.
type Hasher struct {
	cost   int
	runner Runner
}

// NewHasher returns a bcrypt hasher. cost 0 means DefaultCost; a nil runner
// hashes on the calling goroutine.
func NewHasher(cost int, runner Runner) (*Hasher, error) {
	if cost == 0 {
		cost = DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, bcrypt.InvalidCostError(cost)
	}
	if runner == nil {
		runner = inline{}
	}
	return &Hasher{cost: cost, runner: runner}, nil
}

func (h *Hasher) Cost() int { return h.cost }

func (h *Hasher) Hash(ctx context.Context, plain string) (string, error) {
	if len(plain) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	var (
		out  []byte
		herr error
	)
	start := time.Now()
	if err := h.runner.Do(ctx, func() {
		out, herr = bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	}); err != nil {
		return "", err
	}
	metrics.PasswordHashDuration.Observe(time.Since(start).Seconds())
	if herr != nil {
		return "", herr
	}
	return string(out), nil
}

// Verify reports whether plain matches hash. A malformed hash is a mismatch,
// not an error; only scheduling failures (ctx done, pool stopped) are returned.
func (h *Hasher) Verify(ctx context.Context, plain, hash string) (bool, error) {
	var match bool
	if err := h.runner.Do(ctx, func() {
		match = bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
	}); err != nil {
		return false, err
	}
	return match, nil
}
