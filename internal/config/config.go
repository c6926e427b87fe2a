package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

var defaultEmailDomains = []string{
	"gmail.com", "outlook.com", "yahoo.com", "hotmail.com", "voyana.in", "chaloindia.in",
}

type Config struct {
	// Server
	Port        string
	AppEnv      string
	CORSOrigins string
	FrontendURL string

	// Store
	StoreDriver string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string

	// Sessions
	JWTSecret    string
	JWTExpiresIn time.Duration
	CookieName   string

	// Challenges
	OTPTTL       time.Duration
	ResetTTL     time.Duration
	BcryptCost   int
	EmailDomains []string

	// Mail
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	MailFrom     string
	AppName      string

	// Google OAuth
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	// Rate limiting
	RedisURL         string
	RateLimitMax     int
	AuthRateLimitMax int

	// Observability
	LogRetentionDays int
	SentryDSN        string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	return &Config{
		Port:        getEnv("PORT", "5000"),
		AppEnv:      getEnv("APP_ENV", "development"),
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:5173"),
		FrontendURL: getEnv("FRONTEND_URL", ""),

		StoreDriver: getEnv("STORE_DRIVER", StoreDriverPostgres),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPassword:  getEnv("DB_PASSWORD", ""),
		DBName:      getEnv("DB_NAME", "voyana"),
		DBSSLMode:   getEnv("DB_SSLMODE", "disable"),

		JWTSecret:    getEnv("JWT_SECRET", ""),
		JWTExpiresIn: parseDuration(getEnv("JWT_EXPIRES_IN", "90d"), 90*24*time.Hour),
		CookieName:   getEnv("JWT_COOKIE_NAME", "jwt"),

		OTPTTL:       parseDuration(getEnv("OTP_TTL", "10m"), 10*time.Minute),
		ResetTTL:     parseDuration(getEnv("RESET_TTL", "10m"), 10*time.Minute),
		BcryptCost:   parseInt(getEnv("BCRYPT_COST", "12"), 12),
		EmailDomains: parseCSV(getEnv("ALLOWED_EMAIL_DOMAINS", strings.Join(defaultEmailDomains, ","))),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     parseInt(getEnv("SMTP_PORT", "587"), 587),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		MailFrom:     getEnv("MAIL_FROM", "Chalo India <no-reply@chaloindia.in>"),
		AppName:      getEnv("APP_NAME", "Chalo India"),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:5000/api/v1/users/auth/google/callback"),

		RedisURL:         getEnv("REDIS_URL", ""),
		RateLimitMax:     parseInt(getEnv("RATE_LIMIT_MAX", "100"), 100),
		AuthRateLimitMax: parseInt(getEnv("AUTH_RATE_LIMIT_MAX", "10"), 10),

		LogRetentionDays: parseInt(getEnv("LOG_RETENTION_DAYS", "30"), 30),
		SentryDSN:        getEnv("SENTRY_DSN", ""),
	}
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET environment variable is required")
	}
	switch c.StoreDriver {
	case StoreDriverPostgres:
		if c.DBPassword == "" {
			return errors.New("DB_PASSWORD environment variable is required")
		}
	case StoreDriverMemory:
	default:
		return errors.New("STORE_DRIVER must be one of postgres, memory")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// parseDuration accepts time.ParseDuration syntax plus a whole-day "d" suffix
// (e.g. "90d"), the format the session lifetime has always been configured in.
func parseDuration(s string, fallback time.Duration) time.Duration {
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return fallback
		}
		return time.Duration(n) * 24 * time.Hour
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func parseCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.ToLower(strings.TrimSpace(p))
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
