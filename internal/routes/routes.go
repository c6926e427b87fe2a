package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/config"
	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/models"
	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/services"
	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/session"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// Setup mounts the API. limiterStorage may be nil, in which case request
// counters live in process memory.
func Setup(
	app *fiber.App,
	cfg *config.Config,
	limiterStorage fiber.Storage,
	authService *services.AuthService,
	signer *session.Signer,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	healthHandler *handlers.HealthHandler,
) {
	api := app.Group("/api")

	// General API rate limit per IP
	api.Use(limiter.New(limiter.Config{
		Max:               cfg.RateLimitMax,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
		Storage:           limiterStorage,
	}))

	api.Get("/health", healthHandler.Check)

	users := api.Group("/v1/users")

	// Credential endpoints get a stricter per-IP limit
	authLimit := limiter.New(limiter.Config{
		Max:               cfg.AuthRateLimitMax,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return "auth:" + c.IP() },
		Storage:           limiterStorage,
	})

	users.Post("/signup", authLimit, authHandler.Signup)
	users.Post("/verifyOTP", authLimit, authHandler.VerifyOTP)
	users.Post("/login", authLimit, authHandler.Login)
	users.Get("/logout", authHandler.Logout)
	users.Post("/forgotPassword", authLimit, authHandler.ForgotPassword)
	users.Patch("/resetPassword", authLimit, authHandler.ResetPassword)

	users.Get("/auth/google", authHandler.GoogleLogin)
	users.Get("/auth/google/callback", authHandler.GoogleCallback)

	// Session required. Guards are attached per route so public routes and
	// unknown paths never pass through them.
	protect := middleware.Protect(authService, signer, cfg.CookieName)

	users.Get("/me", protect, userHandler.Me)
	users.Patch("/updateMyPassword", protect, authHandler.UpdateMyPassword)
	users.Patch("/updateMe", protect, userHandler.UpdateMe)
	users.Delete("/deleteMe", protect, userHandler.DeleteMe)

	// Admin user management
	adminOnly := middleware.RestrictTo(models.RoleAdmin)

	users.Get("/", protect, adminOnly, userHandler.List)
	users.Post("/", protect, adminOnly, userHandler.Create)
	users.Get("/:id", protect, adminOnly, userHandler.Get)
	users.Patch("/:id", protect, adminOnly, userHandler.Update)
	users.Delete("/:id", protect, adminOnly, userHandler.Delete)
}
