package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *GormUserRepository) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (r *GormUserRepository) Save(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (r *GormUserRepository) RefreshPending(ctx context.Context, user *models.User) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND is_verified = ?", user.ID, false).
		Updates(map[string]interface{}{
			"name":        user.Name,
			"password":    user.Password,
			"otp":         user.OTP,
			"otp_expires": user.OTPExpires,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to refresh pending user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotPending
	}
	return nil
}

func (r *GormUserRepository) ClearOTP(ctx context.Context, id uuid.UUID, code string) error {
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND otp = ?", id, code).
		Updates(map[string]interface{}{
			"otp":         nil,
			"otp_expires": nil,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to clear otp: %w", err)
	}
	return nil
}

func (r *GormUserRepository) MarkVerified(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_verified": true,
			"otp":         nil,
			"otp_expires": nil,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to verify user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormUserRepository) ConsumeOTP(ctx context.Context, email, code string, now time.Time) (*models.User, error) {
	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ? AND otp = ? AND otp_expires > ?", email, code, now).
		Updates(map[string]interface{}{
			"is_verified": true,
			"otp":         nil,
			"otp_expires": nil,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to consume otp: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNoChallenge
	}
	return r.FindByEmail(ctx, email)
}

func (r *GormUserRepository) SetResetChallenge(ctx context.Context, id uuid.UUID, tokenHash string, expires time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"password_reset_token":   tokenHash,
			"password_reset_expires": expires,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to store reset token: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormUserRepository) ClearResetChallenge(ctx context.Context, id uuid.UUID, tokenHash string) error {
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND password_reset_token = ?", id, tokenHash).
		Updates(map[string]interface{}{
			"password_reset_token":   nil,
			"password_reset_expires": nil,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to clear reset token: %w", err)
	}
	return nil
}

func (r *GormUserRepository) ConsumeResetToken(ctx context.Context, email, tokenHash, passwordHash string, now time.Time) (*models.User, error) {
	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ? AND password_reset_token = ? AND password_reset_expires > ? AND state = ?",
			email, tokenHash, now, models.StateActive).
		Updates(map[string]interface{}{
			"password":               passwordHash,
			"password_reset_token":   nil,
			"password_reset_expires": nil,
			"is_verified":            true,
			"otp":                    nil,
			"otp_expires":            nil,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to consume reset token: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNoChallenge
	}
	return r.FindByEmail(ctx, email)
}

func (r *GormUserRepository) SetState(ctx context.Context, id uuid.UUID, state models.AccountState) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("state", state)
	if res.Error != nil {
		return fmt.Errorf("failed to update account state: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormUserRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicateEmail
	default:
		return fmt.Errorf("user store: %w", err)
	}
}
