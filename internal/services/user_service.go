package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/dto"
	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/models"
	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/repository"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// UserService covers profile self-service and admin user management. Every
// method expects a Principal already checked by the caller's route guard.
type UserService struct {
	users repository.UserRepository
	auth  *AuthService
	log   *slog.Logger
}

func NewUserService(users repository.UserRepository, auth *AuthService) *UserService {
	return &UserService{users: users, auth: auth, log: auth.log}
}

func (s *UserService) Me(ctx context.Context, p *Principal) (*models.User, error) {
	return s.load(ctx, p.ID(), ErrUserGone)
}

// UpdateMe applies the allow-listed profile fields. Any password field in the
// request is rejected outright.
func (s *UserService) UpdateMe(ctx context.Context, p *Principal, req *dto.UpdateMeRequest) (*models.User, error) {
	if req.Password != "" || req.PasswordConfirm != "" {
		return nil, invalid(ErrPasswordRoute)
	}
	user, err := s.load(ctx, p.ID(), ErrUserGone)
	if err != nil {
		return nil, err
	}
	if err := s.applyProfile(user, &req.ProfileFields); err != nil {
		return nil, err
	}
	if err := s.save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeactivateMe soft-deletes the caller's account. Login and Protect refuse
// it from then on; the row stays until an admin purges it.
func (s *UserService) DeactivateMe(ctx context.Context, p *Principal) error {
	if err := s.users.SetState(ctx, p.ID(), models.StateDeactivated); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserGone
		}
		return fmt.Errorf("failed to deactivate user: %w", err)
	}
	s.log.InfoContext(ctx, "account deactivated", "action", "deactivate", "user_id", p.ID().String())
	return nil
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.load(ctx, id, ErrUserNotFound)
}

// AdminUpdate edits any identity. Passwords are never set through it.
func (s *UserService) AdminUpdate(ctx context.Context, admin *Principal, id uuid.UUID, req *dto.AdminUpdateUserRequest) (*models.User, error) {
	if req.Password != "" {
		return nil, invalid(errors.New("Passwords cannot be changed through this route."))
	}
	if err := dto.Validate(req); err != nil {
		return nil, invalid(err)
	}
	user, err := s.load(ctx, id, ErrUserNotFound)
	if err != nil {
		return nil, err
	}
	if err := s.applyProfile(user, &req.ProfileFields); err != nil {
		return nil, err
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.IsVerified != nil {
		user.IsVerified = *req.IsVerified
	}
	if req.Active != nil {
		user.State = models.StateDeactivated
		if *req.Active {
			user.State = models.StateActive
		}
	}
	if err := s.save(ctx, user); err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "user updated by admin", "action", "admin_update", "user_id", id.String(), "admin_id", admin.ID().String())
	return user, nil
}

// Purge hard-deletes an identity. Outstanding credentials for it fail with
// ErrUserGone on their next use.
func (s *UserService) Purge(ctx context.Context, admin *Principal, id uuid.UUID) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	s.log.InfoContext(ctx, "user purged", "action", "purge", "user_id", id.String(), "admin_id", admin.ID().String())
	return nil
}

func (s *UserService) applyProfile(user *models.User, f *dto.ProfileFields) error {
	if err := dto.Validate(f); err != nil {
		return invalid(err)
	}
	if f.Name != nil {
		name := strings.TrimSpace(*f.Name)
		if name == "" {
			return invalid(errors.New("Please tell us your name!"))
		}
		user.Name = name
	}
	if f.Email != nil {
		email := normalizeEmail(*f.Email)
		if err := dto.ValidateEmail(email); err != nil {
			return invalid(err)
		}
		if err := s.auth.checkDomain(email); err != nil {
			return err
		}
		user.Email = email
	}
	if f.Phone != nil {
		user.Phone = strings.TrimSpace(*f.Phone)
	}
	if f.Address != nil {
		user.Address = strings.TrimSpace(*f.Address)
	}
	if f.Bio != nil {
		user.Bio = *f.Bio
	}
	if f.Photo != nil {
		user.Photo = strings.TrimSpace(*f.Photo)
	}
	if f.DateOfBirth != nil {
		dob := *f.DateOfBirth
		user.DateOfBirth = &dob
	}
	if len(f.Preferences) > 0 {
		var obj map[string]interface{}
		if err := json.Unmarshal(f.Preferences, &obj); err != nil || obj == nil {
			return invalid(errors.New("preferences must be a JSON object"))
		}
		user.Preferences = datatypes.JSON(f.Preferences)
	}
	return nil
}

func (s *UserService) load(ctx context.Context, id uuid.UUID, missing error) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, missing
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

func (s *UserService) save(ctx context.Context, user *models.User) error {
	if err := s.users.Save(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateEmail):
			return ErrEmailInUse
		case errors.Is(err, repository.ErrNotFound):
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// Promote grants the admin role to an existing identity.
func (s *UserService) Promote(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	user.Role = models.RoleAdmin
	if err := s.save(ctx, user); err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "user promoted to admin", "action", "promote", "user_id", user.ID.String())
	return user, nil
}
