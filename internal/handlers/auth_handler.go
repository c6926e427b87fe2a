package handlers

import (
	"crypto/subtle"
	"time"

	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/config"
	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/dto"
	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/oauth"
	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/services"
	"github.com/gofiber/fiber/v2"
)

const (
	oauthStateCookie = "oauth_state"
	loggedOutValue   = "loggedout"
)

var (
	errInvalidBody       = fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	errGoogleDisabled    = fiber.NewError(fiber.StatusNotFound, "Google sign-in is not configured")
	errInvalidOAuthState = fiber.NewError(fiber.StatusUnauthorized, "Invalid OAuth state. Please try signing in again.")
	errMissingOAuthCode  = fiber.NewError(fiber.StatusBadRequest, "Missing authorization code")
)

type AuthHandler struct {
	auth   *services.AuthService
	google oauth.Provider
	cfg    *config.Config
}

// NewAuthHandler wires the auth endpoints. google may be nil when federated
// sign-in is not configured.
func NewAuthHandler(auth *services.AuthService, google oauth.Provider, cfg *config.Config) *AuthHandler {
	return &AuthHandler{auth: auth, google: google, cfg: cfg}
}

func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidBody
	}
	if err := h.auth.RequestSignup(c.UserContext(), &req); err != nil {
		return err
	}
	return message(c, "OTP sent to email!")
}

func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var req dto.VerifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidBody
	}
	resp, err := h.auth.VerifyOTP(c.UserContext(), &req)
	if err != nil {
		return err
	}
	return h.sendToken(c, resp)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidBody
	}
	resp, err := h.auth.Login(c.UserContext(), &req)
	if err != nil {
		return err
	}
	return h.sendToken(c, resp)
}

// Logout overwrites the session cookie. Bearer tokens held elsewhere stay
// valid until they expire.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.CookieName,
		Value:    loggedOutValue,
		Path:     "/",
		Expires:  time.Now().Add(10 * time.Second),
		HTTPOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: h.sameSite(),
	})
	return c.JSON(dto.Envelope{Status: dto.StatusSuccess})
}

func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidBody
	}
	if err := h.auth.ForgotPassword(c.UserContext(), &req); err != nil {
		return err
	}
	return message(c, "If that email is registered, an OTP has been sent to it.")
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidBody
	}
	resp, err := h.auth.ResetPassword(c.UserContext(), &req)
	if err != nil {
		return err
	}
	return h.sendToken(c, resp)
}

func (h *AuthHandler) UpdateMyPassword(c *fiber.Ctx) error {
	p, err := middleware.PrincipalFrom(c)
	if err != nil {
		return err
	}
	var req dto.UpdatePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidBody
	}
	resp, err := h.auth.UpdatePassword(c.UserContext(), p, &req)
	if err != nil {
		return err
	}
	return h.sendToken(c, resp)
}

// GoogleLogin redirects to the consent page. The state value is kept in a
// short-lived cookie and checked on the callback.
func (h *AuthHandler) GoogleLogin(c *fiber.Ctx) error {
	if h.google == nil {
		return errGoogleDisabled
	}
	state, err := oauth.NewState()
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		Expires:  time.Now().Add(10 * time.Minute),
		HTTPOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.Redirect(h.google.AuthCodeURL(state), fiber.StatusTemporaryRedirect)
}

func (h *AuthHandler) GoogleCallback(c *fiber.Ctx) error {
	if h.google == nil {
		return errGoogleDisabled
	}
	expected := c.Cookies(oauthStateCookie)
	got := c.Query("state")
	c.ClearCookie(oauthStateCookie)
	if expected == "" || subtle.ConstantTimeCompare([]byte(expected), []byte(got)) != 1 {
		return errInvalidOAuthState
	}
	code := c.Query("code")
	if code == "" {
		return errMissingOAuthCode
	}

	identity, err := h.google.Identify(c.UserContext(), code)
	if err != nil {
		return err
	}
	resp, err := h.auth.FederatedLogin(c.UserContext(), services.FederatedIdentity{
		Provider: h.google.Name(),
		Email:    identity.Email,
		Name:     identity.Name,
	})
	if err != nil {
		return err
	}

	if h.cfg.FrontendURL != "" {
		h.setSessionCookie(c, resp)
		return c.Redirect(h.cfg.FrontendURL, fiber.StatusSeeOther)
	}
	return h.sendToken(c, resp)
}

func (h *AuthHandler) sendToken(c *fiber.Ctx, resp *dto.AuthResponse) error {
	h.setSessionCookie(c, resp)
	return c.JSON(dto.Envelope{
		Status: dto.StatusSuccess,
		Token:  resp.Token,
		Data:   fiber.Map{"user": resp.User},
	})
}

func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, resp *dto.AuthResponse) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.CookieName,
		Value:    resp.Token,
		Path:     "/",
		Expires:  resp.ExpiresAt,
		HTTPOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: h.sameSite(),
	})
}

// sameSite is None in production, where the frontend is on another origin,
// and Lax otherwise since browsers drop non-secure SameSite=None cookies.
func (h *AuthHandler) sameSite() string {
	if h.cfg.IsProduction() {
		return fiber.CookieSameSiteNoneMode
	}
	return fiber.CookieSameSiteLaxMode
}
