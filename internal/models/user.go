package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// AccountState is the deletion tier of an identity. StatePurged is never
// persisted: it describes an id whose row has been hard-deleted.
type AccountState string

const (
	StateActive      AccountState = "active"
	StateDeactivated AccountState = "deactivated"
	StatePurged      AccountState = "purged"
)

// User is the identity record. Challenge fields (OTP, reset token) are only
// meaningful together with their expiry; an absent or past expiry means no
// open challenge.
type User struct {
	ID         uuid.UUID    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name       string       `gorm:"size:100;not null" json:"name"`
	Email      string       `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Password   string       `gorm:"not null" json:"-"`
	Role       Role         `gorm:"size:20;not null;default:'user'" json:"role"`
	IsVerified bool         `gorm:"not null;default:false" json:"isVerified"`
	State      AccountState `gorm:"size:20;not null;default:'active';index" json:"-"`

	OTP        *string    `gorm:"size:6" json:"-"`
	OTPExpires *time.Time `json:"-"`

	PasswordResetToken   *string    `gorm:"size:64;index" json:"-"`
	PasswordResetExpires *time.Time `json:"-"`

	Phone       string         `gorm:"size:32" json:"phone,omitempty"`
	Address     string         `gorm:"size:255" json:"address,omitempty"`
	Bio         string         `gorm:"type:text" json:"bio,omitempty"`
	Photo       string         `gorm:"size:512" json:"photo,omitempty"`
	DateOfBirth *time.Time     `json:"dateOfBirth,omitempty"`
	Preferences datatypes.JSON `gorm:"type:jsonb" json:"preferences,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Active reports whether the identity may log in.
func (u *User) Active() bool {
	return u.State != StateDeactivated && u.State != StatePurged
}

// ResetChallengeOpen reports whether digest is the reset challenge on record
// and it has not expired at now.
func (u *User) ResetChallengeOpen(digest string, now time.Time) bool {
	return u.PasswordResetToken != nil && u.PasswordResetExpires != nil &&
		*u.PasswordResetToken == digest && u.PasswordResetExpires.After(now)
}
