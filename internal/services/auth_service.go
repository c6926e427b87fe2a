package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/config"
	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/dto"
	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/mailer"
	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/models"
	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/repository"
	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/security"
	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/session"
	"github.com/google/uuid"
)

// FederatedIdentity is an email ownership assertion from an OAuth provider.
type FederatedIdentity struct {
	Provider string
	Email    string
	Name     string
}

type AuthService struct {
	users    repository.UserRepository
	hasher   security.Hasher
	otp      security.OTPGenerator
	resetOTP security.OTPGenerator
	signer   *session.Signer
	mail     mailer.Sender
	cfg      *config.Config
	now      func() time.Time
	log      *slog.Logger

	dummyOnce sync.Once
	dummyHash string
}

type Option func(*AuthService)

// WithClock replaces time.Now for challenge expiry and token issuance.
func WithClock(now func() time.Time) Option {
	return func(s *AuthService) {
		s.now = now
		s.signer = s.signer.WithClock(now)
	}
}

// WithOTPGenerator replaces the code generator for both signup and reset.
func WithOTPGenerator(g security.OTPGenerator) Option {
	return func(s *AuthService) {
		s.otp = g
		s.resetOTP = g
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *AuthService) { s.log = l }
}

func NewAuthService(
	users repository.UserRepository,
	hasher security.Hasher,
	signer *session.Signer,
	mail mailer.Sender,
	cfg *config.Config,
	opts ...Option,
) *AuthService {
	s := &AuthService{
		users:    users,
		hasher:   hasher,
		otp:      security.NumericOTP{TTL: cfg.OTPTTL},
		resetOTP: security.NumericOTP{TTL: cfg.ResetTTL},
		signer:   signer,
		mail:     mail,
		cfg:      cfg,
		now:      time.Now,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RequestSignup creates or refreshes an unverified identity and mails it a
// fresh OTP. A failed delivery clears the OTP but keeps the record and the
// new password.
func (s *AuthService) RequestSignup(ctx context.Context, req *dto.SignupRequest) error {
	req.Email = normalizeEmail(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if err := dto.Validate(req); err != nil {
		return invalid(err)
	}
	if err := s.checkDomain(req.Email); err != nil {
		return err
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	switch {
	case err == nil && user.IsVerified:
		return ErrAlreadyExists
	case err != nil && !errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("failed to look up user: %w", err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return err
	}
	code, expires, err := s.otp.Generate(s.now())
	if err != nil {
		return err
	}

	if user == nil {
		user = &models.User{
			ID:         uuid.New(),
			Name:       req.Name,
			Email:      req.Email,
			Password:   hash,
			Role:       models.RoleUser,
			State:      models.StateActive,
			OTP:        &code,
			OTPExpires: &expires,
		}
		if err := s.users.Create(ctx, user); err != nil {
			if errors.Is(err, repository.ErrDuplicateEmail) {
				return ErrAlreadyExists
			}
			return fmt.Errorf("failed to create user: %w", err)
		}
	} else {
		user.Name = req.Name
		user.Password = hash
		user.OTP = &code
		user.OTPExpires = &expires
		if err := s.users.RefreshPending(ctx, user); err != nil {
			if errors.Is(err, repository.ErrNotPending) {
				return ErrAlreadyExists
			}
			return fmt.Errorf("failed to update pending user: %w", err)
		}
	}

	if err := s.mail.Send(ctx, mailer.SignupOTP(s.cfg.AppName, user.Email, code, s.cfg.OTPTTL)); err != nil {
		s.log.ErrorContext(ctx, "signup otp delivery failed", "action", "signup", "user_id", user.ID.String(), "error", err)
		if rbErr := s.users.ClearOTP(ctx, user.ID, code); rbErr != nil {
			s.log.ErrorContext(ctx, "failed to clear undelivered otp", "action", "signup", "user_id", user.ID.String(), "error", rbErr)
		}
		return fmt.Errorf("%w: %v", ErrEmailDelivery, err)
	}

	s.log.InfoContext(ctx, "signup otp sent", "action", "signup", "user_id", user.ID.String())
	return nil
}

// VerifyOTP completes signup and logs the identity in.
func (s *AuthService) VerifyOTP(ctx context.Context, req *dto.VerifyOTPRequest) (*dto.AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)
	req.OTP = strings.TrimSpace(req.OTP)
	if req.Email == "" || req.OTP == "" {
		return nil, invalid(errors.New("Please provide email and OTP"))
	}

	user, err := s.users.ConsumeOTP(ctx, req.Email, req.OTP, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrNoChallenge) || errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidOrExpired
		}
		return nil, fmt.Errorf("failed to verify otp: %w", err)
	}

	s.log.InfoContext(ctx, "email verified", "action", "verify_otp", "user_id", user.ID.String())
	return s.issue(user)
}

// Login checks credentials first and account state second, so a wrong
// password never reveals whether an account is deactivated or unverified.
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if req.Email == "" || req.Password == "" {
		return nil, invalid(errors.New("Please provide email and password!"))
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("failed to look up user: %w", err)
		}
		// keep the timing of unknown emails close to wrong passwords
		_ = s.hasher.Compare(s.dummy(), req.Password)
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(user.Password, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.Active() {
		return nil, ErrAccountDeactivated
	}
	if !user.IsVerified {
		return nil, ErrNotVerified
	}

	s.log.InfoContext(ctx, "user logged in", "action", "login", "user_id", user.ID.String())
	return s.issue(user)
}

// UpdatePassword changes the password of an authenticated identity. Tokens
// issued before the change stay valid until they expire.
func (s *AuthService) UpdatePassword(ctx context.Context, p *Principal, req *dto.UpdatePasswordRequest) (*dto.AuthResponse, error) {
	if err := dto.Validate(req); err != nil {
		return nil, invalid(err)
	}

	user, err := s.users.FindByID(ctx, p.ID())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserGone
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if err := s.hasher.Compare(user.Password, req.CurrentPassword); err != nil {
		return nil, ErrWrongPassword
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return nil, err
	}
	user.Password = hash
	if err := s.users.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to store password: %w", err)
	}

	s.log.InfoContext(ctx, "password changed", "action", "update_password", "user_id", user.ID.String())
	return s.issue(user)
}

// ForgotPassword mails a reset code when the email is registered. Unknown
// emails succeed silently so the response does not reveal registration.
func (s *AuthService) ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) error {
	req.Email = normalizeEmail(req.Email)
	if err := dto.Validate(req); err != nil {
		return invalid(err)
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.log.InfoContext(ctx, "password reset requested for unknown email", "action", "forgot_password")
			return nil
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	code, expires, err := s.resetOTP.Generate(s.now())
	if err != nil {
		return err
	}
	digest := security.HashCode(code)
	if err := s.users.SetResetChallenge(ctx, user.ID, digest, expires); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	if err := s.mail.Send(ctx, mailer.PasswordResetOTP(s.cfg.AppName, user.Email, code, s.cfg.ResetTTL)); err != nil {
		s.log.ErrorContext(ctx, "reset otp delivery failed", "action", "forgot_password", "user_id", user.ID.String(), "error", err)
		if rbErr := s.users.ClearResetChallenge(ctx, user.ID, digest); rbErr != nil {
			s.log.ErrorContext(ctx, "failed to clear undelivered reset token", "action", "forgot_password", "user_id", user.ID.String(), "error", rbErr)
		}
		return fmt.Errorf("%w: %v", ErrEmailDelivery, err)
	}

	s.log.InfoContext(ctx, "reset otp sent", "action", "forgot_password", "user_id", user.ID.String())
	return nil
}

// ResetPassword consumes a reset code and sets the new password. The code
// is checked before account state, so only the mailbox owner learns that an
// account is deactivated. A consumed code also verifies a pending identity.
func (s *AuthService) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) (*dto.AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)
	req.OTP = strings.TrimSpace(req.OTP)
	if err := dto.Validate(req); err != nil {
		return nil, invalid(err)
	}

	digest := security.HashCode(req.OTP)
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidOrExpired
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if !user.ResetChallengeOpen(digest, s.now()) {
		return nil, ErrInvalidOrExpired
	}
	if !user.Active() {
		return nil, ErrAccountDeactivated
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}
	user, err = s.users.ConsumeResetToken(ctx, req.Email, digest, hash, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrNoChallenge) || errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidOrExpired
		}
		return nil, fmt.Errorf("failed to reset password: %w", err)
	}

	s.log.InfoContext(ctx, "password reset", "action", "reset_password", "user_id", user.ID.String())
	return s.issue(user)
}

// FederatedLogin signs in an identity asserted by an OAuth provider. Unknown
// emails get a new verified identity with an unusable password; pending
// identities are verified, since the provider has proven email ownership.
func (s *AuthService) FederatedLogin(ctx context.Context, id FederatedIdentity) (*dto.AuthResponse, error) {
	email := normalizeEmail(id.Email)
	if err := dto.ValidateEmail(email); err != nil {
		return nil, invalid(err)
	}

	user, err := s.users.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		if err := s.checkDomain(email); err != nil {
			return nil, err
		}
		user, err = s.createFederated(ctx, email, id.Name)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("failed to look up user: %w", err)
	case !user.Active():
		return nil, ErrAccountDeactivated
	case !user.IsVerified:
		if err := s.users.MarkVerified(ctx, user.ID); err != nil {
			return nil, fmt.Errorf("failed to verify user: %w", err)
		}
		user.IsVerified = true
		user.OTP = nil
		user.OTPExpires = nil
	}

	s.log.InfoContext(ctx, "federated login", "action", "federated_login", "provider", id.Provider, "user_id", user.ID.String())
	return s.issue(user)
}

func (s *AuthService) createFederated(ctx context.Context, email, name string) (*models.User, error) {
	placeholder, err := security.PlaceholderPassword()
	if err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(placeholder)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}

	user := &models.User{
		ID:         uuid.New(),
		Name:       name,
		Email:      email,
		Password:   hash,
		Role:       models.RoleUser,
		State:      models.StateActive,
		IsVerified: true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create federated user: %w", err)
	}
	return user, nil
}

// EnsureAdmin creates a verified, active admin identity or resets an existing
// one to that state with the given password. Used for bootstrap only; the
// email domain allow-list does not apply.
func (s *AuthService) EnsureAdmin(ctx context.Context, name, email, password string) (*models.User, bool, error) {
	email = normalizeEmail(email)
	if err := dto.ValidateEmail(email); err != nil {
		return nil, false, invalid(err)
	}
	if len(password) < 8 {
		return nil, false, invalid(errors.New("password must be at least 8 characters"))
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, false, err
	}

	user, err := s.users.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		user = &models.User{
			ID:         uuid.New(),
			Name:       strings.TrimSpace(name),
			Email:      email,
			Password:   hash,
			Role:       models.RoleAdmin,
			State:      models.StateActive,
			IsVerified: true,
		}
		if user.Name == "" {
			user.Name = "Admin"
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, false, fmt.Errorf("failed to create admin: %w", err)
		}
		s.log.InfoContext(ctx, "admin created", "action", "ensure_admin", "user_id", user.ID.String())
		return user, true, nil
	case err != nil:
		return nil, false, fmt.Errorf("failed to look up user: %w", err)
	}

	user.Role = models.RoleAdmin
	user.State = models.StateActive
	user.IsVerified = true
	user.Password = hash
	user.OTP, user.OTPExpires = nil, nil
	if err := s.users.Save(ctx, user); err != nil {
		return nil, false, fmt.Errorf("failed to update admin: %w", err)
	}
	s.log.InfoContext(ctx, "admin updated", "action", "ensure_admin", "user_id", user.ID.String())
	return user, false, nil
}

// Authenticate resolves a raw session credential to a Principal. HTTP
// requests reach the same checks through middleware.Protect, which parses the
// credential with session.Identity and then calls PrincipalFor; this entry
// point serves callers holding the raw string.
func (s *AuthService) Authenticate(ctx context.Context, raw string) (*Principal, error) {
	if raw == "" {
		return nil, ErrNotAuthenticated
	}
	id, err := s.signer.Verify(raw)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return s.PrincipalFor(ctx, id)
}

// PrincipalFor re-reads the identity behind an already verified credential.
// Purged identities fail with ErrUserGone, deactivated ones with
// ErrAccountDeactivated.
func (s *AuthService) PrincipalFor(ctx context.Context, id uuid.UUID) (*Principal, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserGone
		}
		return nil, fmt.Errorf("failed to resolve session user: %w", err)
	}
	if !user.Active() {
		return nil, ErrAccountDeactivated
	}
	return &Principal{user: user}, nil
}

func (s *AuthService) issue(user *models.User) (*dto.AuthResponse, error) {
	token, expires, err := s.signer.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{
		Token:     token,
		ExpiresAt: expires,
		User:      dto.NewUserResponse(user),
	}, nil
}

func (s *AuthService) checkDomain(email string) error {
	_, domain, ok := strings.Cut(email, "@")
	if !ok {
		return invalid(errors.New("Please provide a valid email"))
	}
	for _, allowed := range s.cfg.EmailDomains {
		if domain == allowed {
			return nil
		}
	}
	return invalid(errors.New("Email provider not supported. Please use Gmail, Outlook, Yahoo, or Hotmail."))
}

func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash("not-a-real-password")
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
