package dto

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type SignupRequest struct {
	Name            string `json:"name" validate:"required,max=100"`
	Email           string `json:"email" validate:"required,email,max=255"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required"`
	OTP   string `json:"otp" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UpdatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=72"`
	PasswordConfirm string `json:"passwordConfirm" validate:"omitempty,eqfield=NewPassword"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Email           string `json:"email" validate:"required,email"`
	OTP             string `json:"otp" validate:"required"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	PasswordConfirm string `json:"passwordConfirm" validate:"omitempty,eqfield=Password"`
}

type AuthResponse struct {
	Token     string
	ExpiresAt time.Time
	User      UserResponse
}

type UserResponse struct {
	ID          uuid.UUID      `json:"id"`
	Name        string         `json:"name"`
	Email       string         `json:"email"`
	Role        models.Role    `json:"role"`
	IsVerified  bool           `json:"isVerified"`
	Active      bool           `json:"active"`
	Phone       string         `json:"phone,omitempty"`
	Address     string         `json:"address,omitempty"`
	Bio         string         `json:"bio,omitempty"`
	Photo       string         `json:"photo,omitempty"`
	DateOfBirth *time.Time     `json:"dateOfBirth,omitempty"`
	Preferences datatypes.JSON `json:"preferences,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Role:        u.Role,
		IsVerified:  u.IsVerified,
		Active:      u.Active(),
		Phone:       u.Phone,
		Address:     u.Address,
		Bio:         u.Bio,
		Photo:       u.Photo,
		DateOfBirth: u.DateOfBirth,
		Preferences: u.Preferences,
		CreatedAt:   u.CreatedAt,
	}
}

// Envelope is the response body shape shared by every endpoint.
type Envelope struct {
	Status  string      `json:"status"`
	Token   string      `json:"token,omitempty"`
	Results *int        `json:"results,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

const (
	StatusSuccess = "success"
	StatusFail    = "fail"
	StatusError   = "error"
)

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Store     string `json:"store"`
}
