package handlers

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/dto"
	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/oauth"
	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/services"
	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
)

// ErrRouteNotDefined answers POST on the admin collection, where users are
// only ever created by signup.
var ErrRouteNotDefined = errors.New("This route is not defined! Please use /signup instead")

const genericServerError = "Something went very wrong!"

var errorStatus = []struct {
	err    error
	status int
}{
	{services.ErrValidation, fiber.StatusBadRequest},
	{services.ErrAlreadyExists, fiber.StatusBadRequest},
	{services.ErrEmailInUse, fiber.StatusBadRequest},
	{services.ErrInvalidCredentials, fiber.StatusUnauthorized},
	{services.ErrInvalidOrExpired, fiber.StatusUnauthorized},
	{services.ErrInvalidToken, fiber.StatusUnauthorized},
	{services.ErrNotAuthenticated, fiber.StatusUnauthorized},
	{services.ErrAccountDeactivated, fiber.StatusUnauthorized},
	{services.ErrNotVerified, fiber.StatusUnauthorized},
	{services.ErrUserGone, fiber.StatusUnauthorized},
	{services.ErrWrongPassword, fiber.StatusUnauthorized},
	{services.ErrForbidden, fiber.StatusForbidden},
	{services.ErrUserNotFound, fiber.StatusNotFound},
	{oauth.ErrExchange, fiber.StatusUnauthorized},
	{oauth.ErrUserInfo, fiber.StatusUnauthorized},
	{oauth.ErrEmailNotVerified, fiber.StatusUnauthorized},
	{services.ErrEmailDelivery, fiber.StatusInternalServerError},
	{ErrRouteNotDefined, fiber.StatusInternalServerError},
}

// statusFor maps an error to its HTTP status and the message safe to show.
// Unknown errors become a generic 500.
func statusFor(err error) (int, string) {
	var ve *services.ValidationError
	if errors.As(err, &ve) {
		return fiber.StatusBadRequest, ve.Message
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		if fe.Code >= fiber.StatusInternalServerError {
			return fe.Code, genericServerError
		}
		return fe.Code, fe.Message
	}
	for _, m := range errorStatus {
		if errors.Is(err, m.err) {
			return m.status, m.err.Error()
		}
	}
	return fiber.StatusInternalServerError, genericServerError
}

// ErrorHandler renders every error returned by a handler or middleware as
// the response envelope. Server errors are logged and sent to Sentry.
func ErrorHandler(log *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code, message := statusFor(err)

		status := dto.StatusFail
		if code >= fiber.StatusInternalServerError {
			status = dto.StatusError
			log.ErrorContext(c.UserContext(), "request failed",
				"method", c.Method(),
				"path", c.Path(),
				"status", code,
				"request_id", requestID(c),
				"error", err.Error(),
			)
			if hub := sentryfiber.GetHubFromContext(c); hub != nil {
				hub.CaptureException(err)
			} else {
				sentry.CaptureException(err)
			}
		}

		return c.Status(code).JSON(dto.Envelope{Status: status, Message: message})
	}
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return ""
}

func success(c *fiber.Ctx, code int, data interface{}) error {
	return c.Status(code).JSON(dto.Envelope{Status: dto.StatusSuccess, Data: data})
}

func message(c *fiber.Ctx, msg string) error {
	return c.JSON(dto.Envelope{Status: dto.StatusSuccess, Message: msg})
}
