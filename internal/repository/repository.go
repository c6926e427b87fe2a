// Package repository persists identity records. The service layer only sees
// UserRepository; GORM backs it in production and an in-memory map backs it
// in tests and the memory store driver.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/models"
	"github.com/google/uuid"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrNoChallenge means no open challenge matched the supplied code:
	// wrong code, expired, or already consumed.
	ErrNoChallenge = errors.New("no matching challenge")
	// ErrNotPending means the identity was verified before a signup refresh
	// could be applied.
	ErrNotPending = errors.New("identity is no longer pending")
)

type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Create(ctx context.Context, user *models.User) error
	Save(ctx context.Context, user *models.User) error

	// RefreshPending replaces name, password and OTP of an identity that is
	// still unverified. It fails with ErrNotPending once the identity is
	// verified, leaving the row untouched.
	RefreshPending(ctx context.Context, user *models.User) error
	// ClearOTP drops the OTP only while code is still the one on record.
	ClearOTP(ctx context.Context, id uuid.UUID, code string) error
	// MarkVerified sets is_verified and clears any pending OTP.
	MarkVerified(ctx context.Context, id uuid.UUID) error

	// ConsumeOTP atomically checks code and expiry (expires > now), marks the
	// identity verified and clears the OTP fields.
	ConsumeOTP(ctx context.Context, email, code string, now time.Time) (*models.User, error)

	// SetResetChallenge stores a reset token digest and its expiry.
	SetResetChallenge(ctx context.Context, id uuid.UUID, tokenHash string, expires time.Time) error
	// ClearResetChallenge drops the reset challenge only while tokenHash is
	// still the one on record.
	ClearResetChallenge(ctx context.Context, id uuid.UUID, tokenHash string) error
	// ConsumeResetToken atomically checks the token hash, expiry and that the
	// identity is active, stores passwordHash, clears the reset fields and
	// marks the identity verified: the code reached its inbox.
	ConsumeResetToken(ctx context.Context, email, tokenHash, passwordHash string, now time.Time) (*models.User, error)

	SetState(ctx context.Context, id uuid.UUID, state models.AccountState) error
	Delete(ctx context.Context, id uuid.UUID) error
	Ping(ctx context.Context) error
}
