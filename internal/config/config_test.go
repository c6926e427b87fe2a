package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_EXPIRES_IN", "")
	t.Setenv("ALLOWED_EMAIL_DOMAINS", "")
	t.Setenv("OTP_TTL", "")

	cfg := Load()

	assert.Equal(t, 90*24*time.Hour, cfg.JWTExpiresIn)
	assert.Equal(t, 10*time.Minute, cfg.OTPTTL)
	assert.Equal(t, "jwt", cfg.CookieName)
	assert.Contains(t, cfg.EmailDomains, "gmail.com")
	assert.Contains(t, cfg.EmailDomains, "chaloindia.in")
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_EXPIRES_IN", "2h")
	t.Setenv("ALLOWED_EMAIL_DOMAINS", " Example.com , test.org,")
	t.Setenv("APP_ENV", "production")
	t.Setenv("BCRYPT_COST", "bogus")

	cfg := Load()

	assert.Equal(t, 2*time.Hour, cfg.JWTExpiresIn)
	assert.Equal(t, []string{"example.com", "test.org"}, cfg.EmailDomains)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 12, cfg.BcryptCost)
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"90d", 90 * 24 * time.Hour},
		{"1d", 24 * time.Hour},
		{"15m", 15 * time.Minute},
		{"0d", time.Minute},
		{"xd", time.Minute},
		{"nonsense", time.Minute},
		{"-5m", time.Minute},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, parseDuration(tc.in, time.Minute))
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{StoreDriver: StoreDriverPostgres}
	require.Error(t, cfg.Validate())

	cfg.JWTSecret = "secret"
	require.Error(t, cfg.Validate(), "postgres needs a password")

	cfg.DBPassword = "pw"
	require.NoError(t, cfg.Validate())

	cfg.StoreDriver = StoreDriverMemory
	cfg.DBPassword = ""
	require.NoError(t, cfg.Validate())

	cfg.StoreDriver = "mongo"
	require.Error(t, cfg.Validate())
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBHost: "h", DBPort: "1", DBUser: "u", DBPassword: "p", DBName: "n", DBSSLMode: "disable"}
	assert.Equal(t, "host=h user=u password=p dbname=n port=1 sslmode=disable TimeZone=UTC", cfg.DSN())
}
