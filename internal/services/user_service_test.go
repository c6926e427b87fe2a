package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/dto"
	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func (h *harness) principal(t *testing.T, u *models.User) *Principal {
	t.Helper()
	p, err := h.svc.PrincipalFor(context.Background(), u.ID)
	require.NoError(t, err)
	return p
}

func (h *harness) admin(t *testing.T) *Principal {
	t.Helper()
	u := h.verifiedUser(t, "root@voyana.in", "Adm1n-pass")
	u.Role = models.RoleAdmin
	require.NoError(t, h.users.Save(context.Background(), u))
	return h.principal(t, u)
}

func TestUpdateMe(t *testing.T) {
	h := newHarness(t)
	svc := NewUserService(h.users, h.svc)
	u := h.verifiedUser(t, "alice@gmail.com", "Passw0rd!")
	p := h.principal(t, u)
	ctx := context.Background()

	dob := time.Date(1995, 4, 2, 0, 0, 0, 0, time.UTC)
	got, err := svc.UpdateMe(ctx, p, &dto.UpdateMeRequest{ProfileFields: dto.ProfileFields{
		Name:        ptr(" Alice Liddell "),
		Phone:       ptr("+91 98765 43210"),
		DateOfBirth: &dob,
		Preferences: json.RawMessage(`{"currency":"INR"}`),
	}})
	require.NoError(t, err)
	assert.Equal(t, "Alice Liddell", got.Name)
	assert.Equal(t, "+91 98765 43210", got.Phone)
	assert.JSONEq(t, `{"currency":"INR"}`, string(got.Preferences))

	stored, _ := h.users.FindByID(ctx, u.ID)
	assert.Equal(t, "Alice Liddell", stored.Name)
	assert.Equal(t, u.Password, stored.Password)
	assert.Equal(t, models.RoleUser, stored.Role)
}

func TestUpdateMe_Rejections(t *testing.T) {
	h := newHarness(t)
	svc := NewUserService(h.users, h.svc)
	p := h.principal(t, h.verifiedUser(t, "alice@gmail.com", "Passw0rd!"))
	h.verifiedUser(t, "bob@gmail.com", "Passw0rd!")
	ctx := context.Background()

	_, err := svc.UpdateMe(ctx, p, &dto.UpdateMeRequest{Password: "x"})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, ErrPasswordRoute.Error(), err.Error())

	_, err = svc.UpdateMe(ctx, p, &dto.UpdateMeRequest{ProfileFields: dto.ProfileFields{Email: ptr("alice@example.com")}})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.UpdateMe(ctx, p, &dto.UpdateMeRequest{ProfileFields: dto.ProfileFields{Email: ptr("bob@gmail.com")}})
	assert.ErrorIs(t, err, ErrEmailInUse)

	_, err = svc.UpdateMe(ctx, p, &dto.UpdateMeRequest{ProfileFields: dto.ProfileFields{Preferences: json.RawMessage(`[1,2]`)}})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.UpdateMe(ctx, p, &dto.UpdateMeRequest{ProfileFields: dto.ProfileFields{Name: ptr("  ")}})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDeactivateMe(t *testing.T) {
	h := newHarness(t)
	svc := NewUserService(h.users, h.svc)
	u := h.verifiedUser(t, "alice@gmail.com", "Passw0rd!")
	ctx := context.Background()

	require.NoError(t, svc.DeactivateMe(ctx, h.principal(t, u)))

	_, err := h.svc.Login(ctx, &dto.LoginRequest{Email: "alice@gmail.com", Password: "Passw0rd!"})
	assert.ErrorIs(t, err, ErrAccountDeactivated)
	_, err = h.svc.PrincipalFor(ctx, u.ID)
	assert.ErrorIs(t, err, ErrAccountDeactivated)
}

func TestAdminUpdate(t *testing.T) {
	h := newHarness(t)
	svc := NewUserService(h.users, h.svc)
	admin := h.admin(t)
	u := h.verifiedUser(t, "alice@gmail.com", "Passw0rd!")
	ctx := context.Background()

	got, err := svc.AdminUpdate(ctx, admin, u.ID, &dto.AdminUpdateUserRequest{
		Role:   ptr(models.RoleAdmin),
		Active: ptr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, got.Role)
	assert.False(t, got.Active())

	got, err = svc.AdminUpdate(ctx, admin, u.ID, &dto.AdminUpdateUserRequest{Active: ptr(true)})
	require.NoError(t, err)
	assert.True(t, got.Active())

	_, err = svc.AdminUpdate(ctx, admin, u.ID, &dto.AdminUpdateUserRequest{Role: ptr(models.Role("root"))})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.AdminUpdate(ctx, admin, u.ID, &dto.AdminUpdateUserRequest{Password: "Hijack-123"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.AdminUpdate(ctx, admin, uuid.New(), &dto.AdminUpdateUserRequest{})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestPurge(t *testing.T) {
	h := newHarness(t)
	svc := NewUserService(h.users, h.svc)
	admin := h.admin(t)
	u := h.verifiedUser(t, "alice@gmail.com", "Passw0rd!")
	ctx := context.Background()

	require.NoError(t, svc.Purge(ctx, admin, u.ID))
	_, err := svc.Get(ctx, u.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.ErrorIs(t, svc.Purge(ctx, admin, u.ID), ErrUserNotFound)

	users, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestPromote(t *testing.T) {
	h := newHarness(t)
	svc := NewUserService(h.users, h.svc)
	h.verifiedUser(t, "alice@gmail.com", "Passw0rd!")

	u, err := svc.Promote(context.Background(), " Alice@Gmail.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)

	_, err = svc.Promote(context.Background(), "ghost@gmail.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
