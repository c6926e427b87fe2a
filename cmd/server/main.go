package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/config"
	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/database"
	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/logging"
	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/mailer"
	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/oauth"
	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/ratelimit"
	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/repository"
	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/routes"
	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/security"
	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/services"
	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/session"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"gorm.io/gorm"
)

func main() {
	cfg := config.Load()

	// Structured logging (JSON to stdout)
	logger := logging.Setup(cfg.AppEnv)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Credential store
	var (
		users        repository.UserRepository
		db           *gorm.DB
		pgLogHandler *logging.PGHandler
	)
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		var err error
		db, err = database.Connect(cfg)
		if err != nil {
			slog.Error("database connection failed", "error", err)
			os.Exit(1)
		}
		if err := database.Migrate(db); err != nil {
			slog.Error("migration failed", "error", err)
			os.Exit(1)
		}
		users = repository.NewGormUserRepository(db)

		// PostgreSQL log handler (ERROR+ async batch)
		pgLogHandler = logging.NewPGHandler(logging.NewGormSink(db), 5*time.Second)
		logger = slog.New(logging.NewMultiHandler(logger.Handler(), pgLogHandler))
		slog.SetDefault(logger)

		logging.StartCleanup(ctx, db, cfg.LogRetentionDays)
	case config.StoreDriverMemory:
		slog.Warn("using in-memory credential store; accounts are lost on restart")
		users = repository.NewMemoryUserRepository()
	}

	// Mail delivery
	var mail mailer.Sender
	if cfg.SMTPHost != "" {
		mail = mailer.NewSMTPSender(mailer.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		})
	} else {
		if cfg.IsProduction() {
			slog.Error("SMTP_HOST is required in production")
			os.Exit(1)
		}
		slog.Warn("SMTP_HOST not set; emails are written to the log")
		mail = mailer.LogSender{Logger: logger}
	}

	// Rate limit storage shared across instances when Redis is configured
	var limiterStorage fiber.Storage
	if cfg.RedisURL != "" {
		store, err := ratelimit.NewRedisStorageFromURL(cfg.RedisURL)
		if err != nil {
			slog.Error("invalid REDIS_URL", "error", err)
			os.Exit(1)
		}
		if err := store.Ping(ctx); err != nil {
			slog.Error("redis unreachable", "error", err)
			os.Exit(1)
		}
		defer store.Close()
		limiterStorage = store
		slog.Info("rate limiter using redis")
	}

	// Services
	signer := session.NewSigner(cfg.JWTSecret, cfg.JWTExpiresIn)
	authService := services.NewAuthService(users, security.NewBcryptHasher(cfg.BcryptCost), signer, mail, cfg,
		services.WithLogger(logger),
	)
	userService := services.NewUserService(users, authService)

	var google oauth.Provider
	if cfg.GoogleEnabled() {
		google = oauth.NewGoogleProvider(oauth.GoogleConfig{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
		})
		slog.Info("google sign-in enabled")
	}

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, google, cfg)
	userHandler := handlers.NewUserHandler(userService)
	healthHandler := handlers.NewHealthHandler(users)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: handlers.ErrorHandler(logger),
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${locals:requestid}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.SecureHeaders())

	// Routes
	routes.Setup(app, cfg, limiterStorage, authService, signer, authHandler, userHandler, healthHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.AppEnv, "store", cfg.StoreDriver)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	stop()
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}
	if pgLogHandler != nil {
		pgLogHandler.Stop()
	}
	sentry.Flush(2 * time.Second)

	if db != nil {
		if err := database.Close(db); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}
