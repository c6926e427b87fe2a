package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/config"
	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/models"
	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() *config.Config {
	return &config.Config{JWTSecret: "x", JWTExpiresIn: time.Hour, BcryptCost: bcrypt.MinCost}
}

func TestRun_PromotesExisting(t *testing.T) {
	users := repository.NewMemoryUserRepository()
	ctx := context.Background()
	require.NoError(t, users.Create(ctx, &models.User{Name: "Alice", Email: "alice@gmail.com", Password: "x", IsVerified: true}))

	var out bytes.Buffer
	require.NoError(t, run(ctx, testConfig(), users, options{email: "alice@gmail.com"}, &out))
	assert.Contains(t, out.String(), "is now an admin")

	u, err := users.FindByEmail(ctx, "alice@gmail.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)
}

func TestRun_MissingAccountWithoutCreate(t *testing.T) {
	err := run(context.Background(), testConfig(), repository.NewMemoryUserRepository(), options{email: "ghost@gmail.com"}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "-create")
}

func TestRun_CreateWithPrompt(t *testing.T) {
	t.Setenv("ADMIN_PASSWORD", "")
	orig := readPassword
	readPassword = func(int) ([]byte, error) { return []byte("Adm1n-pass"), nil }
	t.Cleanup(func() { readPassword = orig })

	users := repository.NewMemoryUserRepository()
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), testConfig(), users,
		options{email: "admin@voyana.in", name: "Voyana Admin", create: true}, &out))
	assert.Contains(t, out.String(), "created")

	u, err := users.FindByEmail(context.Background(), "admin@voyana.in")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)
	assert.True(t, u.IsVerified)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("Adm1n-pass")))
}

func TestRun_CreateFromEnv(t *testing.T) {
	t.Setenv("ADMIN_PASSWORD", "Env-admin-pass")
	users := repository.NewMemoryUserRepository()
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), testConfig(), users,
		options{email: "admin@voyana.in", create: true}, &out))

	u, err := users.FindByEmail(context.Background(), "admin@voyana.in")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("Env-admin-pass")))
}
