package middleware

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/services"
	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/session"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenKey     = "session_token"
	principalKey = "principal"
)

var errPrincipalMissing = errors.New("middleware: no principal in request; Protect must run first")

// Protect authenticates the request from the Authorization bearer header or,
// failing that, the session cookie. The identity is re-read on every request
// so deactivated and purged accounts lose access immediately.
func Protect(auth *services.AuthService, signer *session.Signer, cookieName string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		KeyFunc:     signer.KeyFunc,
		Claims:      &session.Claims{},
		ContextKey:  tokenKey,
		TokenLookup: "header:" + fiber.HeaderAuthorization + ",cookie:" + cookieName,
		AuthScheme:  "Bearer",
		SuccessHandler: func(c *fiber.Ctx) error {
			token, ok := c.Locals(tokenKey).(*jwt.Token)
			if !ok || token == nil {
				return services.ErrInvalidToken
			}
			id, err := session.Identity(token.Claims)
			if err != nil {
				return services.ErrInvalidToken
			}
			p, err := auth.PrincipalFor(c.UserContext(), id)
			if err != nil {
				return err
			}
			c.Locals(principalKey, p)
			return c.Next()
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if errors.Is(err, jwtware.ErrJWTMissingOrMalformed) {
				return services.ErrNotAuthenticated
			}
			return services.ErrInvalidToken
		},
	})
}

// PrincipalFrom returns the identity Protect stored for this request.
func PrincipalFrom(c *fiber.Ctx) (*services.Principal, error) {
	p, ok := c.Locals(principalKey).(*services.Principal)
	if !ok || p == nil {
		slog.ErrorContext(c.UserContext(), "principal missing from request", "path", c.Path())
		return nil, errPrincipalMissing
	}
	return p, nil
}
