package handlers

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/oauth"
	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"validation", &services.ValidationError{Message: "Please provide email"}, 400, "Please provide email"},
		{"already exists", services.ErrAlreadyExists, 400, services.ErrAlreadyExists.Error()},
		{"bad credentials", services.ErrInvalidCredentials, 401, services.ErrInvalidCredentials.Error()},
		{"deactivated", services.ErrAccountDeactivated, 401, services.ErrAccountDeactivated.Error()},
		{"not verified", services.ErrNotVerified, 401, services.ErrNotVerified.Error()},
		{"user gone", services.ErrUserGone, 401, services.ErrUserGone.Error()},
		{"forbidden", services.ErrForbidden, 403, services.ErrForbidden.Error()},
		{"not found", services.ErrUserNotFound, 404, services.ErrUserNotFound.Error()},
		{"delivery wrapped", fmt.Errorf("%w: dial tcp: refused", services.ErrEmailDelivery), 500, services.ErrEmailDelivery.Error()},
		{"oauth", fmt.Errorf("%w: status 500", oauth.ErrUserInfo), 401, oauth.ErrUserInfo.Error()},
		{"fiber client error", fiber.NewError(400, "Invalid request body"), 400, "Invalid request body"},
		{"fiber server error", fiber.NewError(503, "pool exhausted"), 503, genericServerError},
		{"store failure", fmt.Errorf("failed to load user: %w", errors.New("connection reset")), 500, genericServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			code, msg := statusFor(tc.err)
			assert.Equal(t, tc.code, code)
			assert.Equal(t, tc.message, msg)
		})
	}
}
