package services

import "errors"

// Error texts are shown to API clients verbatim.
var (
	ErrValidation         = errors.New("validation failed")
	ErrAlreadyExists      = errors.New("User already exists!")
	ErrEmailInUse         = errors.New("Email is already in use")
	ErrInvalidCredentials = errors.New("Incorrect email or password")
	ErrInvalidOrExpired   = errors.New("Invalid or expired OTP")
	ErrInvalidToken       = errors.New("Invalid token or session expired")
	ErrNotAuthenticated   = errors.New("You are not logged in! Please log in to get access.")
	ErrAccountDeactivated = errors.New("Your account has been deactivated. Please contact support.")
	ErrNotVerified        = errors.New("Please verify your email first (OTP sent during signup).")
	ErrForbidden          = errors.New("You do not have permission to perform this action")
	ErrUserGone           = errors.New("The user belonging to this token does no longer exist.")
	ErrWrongPassword      = errors.New("Your current password is wrong")
	ErrEmailDelivery      = errors.New("There was an error sending the email. Try again later!")
	ErrUserNotFound       = errors.New("No user found with that ID")
	ErrPasswordRoute      = errors.New("This route is not for password updates. Please use /updateMyPassword.")
)

// ValidationError carries a client-facing message and matches ErrValidation.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(err error) error {
	return &ValidationError{Message: err.Error()}
}
