package dto

import (
	"encoding/json"
	"time"

	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/models"
)

// ProfileFields are the self-service editable fields. Nil means unchanged.
type ProfileFields struct {
	Name        *string         `json:"name" validate:"omitempty,min=1,max=100"`
	Email       *string         `json:"email" validate:"omitempty,email,max=255"`
	Phone       *string         `json:"phone" validate:"omitempty,max=32"`
	Address     *string         `json:"address" validate:"omitempty,max=255"`
	Bio         *string         `json:"bio" validate:"omitempty,max=2000"`
	Photo       *string         `json:"photo" validate:"omitempty,max=512"`
	DateOfBirth *time.Time      `json:"dateOfBirth"`
	Preferences json.RawMessage `json:"preferences"`
}

type UpdateMeRequest struct {
	ProfileFields

	// Present only to reject password changes on this route.
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

type AdminUpdateUserRequest struct {
	ProfileFields

	Role       *models.Role `json:"role" validate:"omitempty,oneof=user admin"`
	Active     *bool        `json:"active"`
	IsVerified *bool        `json:"isVerified"`
	Password   string       `json:"password"`
}
