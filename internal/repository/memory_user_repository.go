package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/models"
	"github.com/google/uuid"
)

// MemoryUserRepository keeps identities in process memory. Records are copied
// in and out so callers never share a pointer with the map.
type MemoryUserRepository struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*models.User
	byEmail map[string]uuid.UUID
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byID:    make(map[uuid.UUID]*models.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

func (r *MemoryUserRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(r.byID[id]), nil
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(u), nil
}

func (r *MemoryUserRepository) List(_ context.Context) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]models.User, 0, len(r.byID))
	for _, u := range r.byID {
		users = append(users, *clone(u))
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return users, nil
}

func (r *MemoryUserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[user.Email]; taken {
		return ErrDuplicateEmail
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if user.State == "" {
		user.State = models.StateActive
	}

	r.byID[user.ID] = clone(user)
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *MemoryUserRepository) Save(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byID[user.ID]
	if !ok {
		return ErrNotFound
	}
	if owner, taken := r.byEmail[user.Email]; taken && owner != user.ID {
		return ErrDuplicateEmail
	}

	delete(r.byEmail, existing.Email)
	user.UpdatedAt = time.Now()
	r.byID[user.ID] = clone(user)
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *MemoryUserRepository) RefreshPending(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[user.ID]
	if !ok || u.IsVerified {
		return ErrNotPending
	}
	fresh := clone(user)
	u.Name = fresh.Name
	u.Password = fresh.Password
	u.OTP = fresh.OTP
	u.OTPExpires = fresh.OTPExpires
	u.UpdatedAt = time.Now()
	return nil
}

func (r *MemoryUserRepository) ClearOTP(_ context.Context, id uuid.UUID, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok || u.OTP == nil || *u.OTP != code {
		return nil
	}
	u.OTP = nil
	u.OTPExpires = nil
	u.UpdatedAt = time.Now()
	return nil
}

func (r *MemoryUserRepository) MarkVerified(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	u.IsVerified = true
	u.OTP = nil
	u.OTPExpires = nil
	u.UpdatedAt = time.Now()
	return nil
}

func (r *MemoryUserRepository) ConsumeOTP(_ context.Context, email, code string, now time.Time) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u := r.lookupEmail(email)
	if u == nil || u.OTP == nil || u.OTPExpires == nil || *u.OTP != code || !u.OTPExpires.After(now) {
		return nil, ErrNoChallenge
	}

	u.IsVerified = true
	u.OTP = nil
	u.OTPExpires = nil
	u.UpdatedAt = time.Now()
	return clone(u), nil
}

func (r *MemoryUserRepository) SetResetChallenge(_ context.Context, id uuid.UUID, tokenHash string, expires time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	u.PasswordResetToken = &tokenHash
	u.PasswordResetExpires = &expires
	u.UpdatedAt = time.Now()
	return nil
}

func (r *MemoryUserRepository) ClearResetChallenge(_ context.Context, id uuid.UUID, tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok || u.PasswordResetToken == nil || *u.PasswordResetToken != tokenHash {
		return nil
	}
	u.PasswordResetToken = nil
	u.PasswordResetExpires = nil
	u.UpdatedAt = time.Now()
	return nil
}

func (r *MemoryUserRepository) ConsumeResetToken(_ context.Context, email, tokenHash, passwordHash string, now time.Time) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u := r.lookupEmail(email)
	if u == nil || u.State != models.StateActive || !u.ResetChallengeOpen(tokenHash, now) {
		return nil, ErrNoChallenge
	}

	u.Password = passwordHash
	u.PasswordResetToken = nil
	u.PasswordResetExpires = nil
	u.IsVerified = true
	u.OTP = nil
	u.OTPExpires = nil
	u.UpdatedAt = time.Now()
	return clone(u), nil
}

func (r *MemoryUserRepository) SetState(_ context.Context, id uuid.UUID, state models.AccountState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	u.State = state
	u.UpdatedAt = time.Now()
	return nil
}

func (r *MemoryUserRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	delete(r.byEmail, u.Email)
	delete(r.byID, id)
	return nil
}

func (r *MemoryUserRepository) Ping(context.Context) error {
	return nil
}

// lookupEmail returns the stored pointer; callers must hold the write lock.
func (r *MemoryUserRepository) lookupEmail(email string) *models.User {
	id, ok := r.byEmail[email]
	if !ok {
		return nil
	}
	return r.byID[id]
}

func clone(u *models.User) *models.User {
	c := *u
	if u.OTP != nil {
		v := *u.OTP
		c.OTP = &v
	}
	if u.OTPExpires != nil {
		v := *u.OTPExpires
		c.OTPExpires = &v
	}
	if u.PasswordResetToken != nil {
		v := *u.PasswordResetToken
		c.PasswordResetToken = &v
	}
	if u.PasswordResetExpires != nil {
		v := *u.PasswordResetExpires
		c.PasswordResetExpires = &v
	}
	if u.DateOfBirth != nil {
		v := *u.DateOfBirth
		c.DateOfBirth = &v
	}
	if u.Preferences != nil {
		c.Preferences = append([]byte(nil), u.Preferences...)
	}
	return &c
}
