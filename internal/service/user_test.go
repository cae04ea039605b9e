package service

import (
	"context"
	"testing"

	"github.com/dukerupert/pantry/internal/domain"
	"github.com/dukerupert/pantry/internal/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserService(t *testing.T, online bool) (*userService, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	svc := NewUserService(store, newGate(online), discardLogger()).(*userService)
	svc.now = fixedNow
	return svc, store
}

var alice = domain.Identity{UID: "u1", Email: "alice@example.com", DisplayName: "Alice"}

func TestUserService_GetProfile(t *testing.T) {
	ctx := context.Background()
	svc, store := newUserService(t, true)

	// Not stored yet.
	u, err := svc.GetProfile(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, &domain.User{ID: "u1", Email: "alice@example.com", DisplayName: "Alice", Role: domain.RoleCustomer}, u)

	require.NoError(t, store.SaveUser(ctx, &domain.User{ID: "u1", Email: "alice@example.com", DisplayName: "Al", Phone: "555", Role: domain.RoleCustomer}))
	u, err = svc.GetProfile(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "Al", u.DisplayName)
	assert.Equal(t, "555", u.Phone)

	admin := alice
	admin.Role = domain.RoleAdmin
	u, err = svc.GetProfile(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, u.Role, "token role wins")
}

func TestUserService_GetProfile_Fallback(t *testing.T) {
	ctx := context.Background()
	svc, store := newUserService(t, true)

	store.FailNext(errBackend)
	u, err := svc.GetProfile(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.DisplayName)

	store.FailNext(errUnrelated)
	_, err = svc.GetProfile(ctx, alice)
	assert.Equal(t, domain.EINTERNAL, domain.ErrorCode(err))

	_, err = svc.GetProfile(ctx, domain.Identity{})
	assert.Equal(t, domain.EUNAUTHORIZED, domain.ErrorCode(err))
}

func TestUserService_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	svc, store := newUserService(t, true)

	u, err := svc.UpdateProfile(ctx, alice, domain.ProfileUpdate{DisplayName: "  Alice B ", Phone: " 0400 "})
	require.NoError(t, err)
	assert.Equal(t, "Alice B", u.DisplayName)
	assert.Equal(t, "0400", u.Phone)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.True(t, u.CreatedAt.Equal(testNow))

	stored, err := store.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, u, stored)

	_, err = svc.UpdateProfile(ctx, alice, domain.ProfileUpdate{DisplayName: "   "})
	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
}

func TestUserService_UpdateProfile_Offline(t *testing.T) {
	svc, store := newUserService(t, false)

	_, err := svc.UpdateProfile(context.Background(), alice, domain.ProfileUpdate{DisplayName: "Alice"})
	assert.Equal(t, domain.EOFFLINE, domain.ErrorCode(err))

	_, err = store.GetUser(context.Background(), "u1")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
