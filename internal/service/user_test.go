package service

import (
	"context"
	"testing"

	"github.com/aDolgosheev/bank-card-management/internal/models"
	"github.com/aDolgosheev/bank-card-management/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUserAccess(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := NewUserService(store, testLogger())
	alice := seedUser(t, store, "alice@example.com")
	bob := seedUser(t, store, "bob@example.com")
	admin := seedUser(t, store, "admin@example.com", models.RoleAdmin)

	assert.NoError(t, svc.ValidateUserAccess(ctx, alice.Email, alice.ID))
	assert.NoError(t, svc.ValidateUserAccess(ctx, admin.Email, alice.ID))
	assert.ErrorIs(t, svc.ValidateUserAccess(ctx, bob.Email, alice.ID), ErrAccessDenied)
	assert.ErrorIs(t, svc.ValidateUserAccess(ctx, "ghost@example.com", alice.ID), repository.ErrNotFound)
}

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := NewUserService(store, testLogger())
	user := seedUser(t, store, "user@example.com")
	admin := seedUser(t, store, "admin@example.com", models.RoleAdmin)

	assert.NoError(t, svc.EnsureAdmin(ctx, admin.Email))
	assert.ErrorIs(t, svc.EnsureAdmin(ctx, user.Email), ErrAccessDenied)
}

func TestUserLookups(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := NewUserService(store, testLogger())
	alice := seedUser(t, store, "alice@example.com")
	seedUser(t, store, "bob@example.com")

	byID, err := svc.GetUserByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.Email, byID.Email)

	byEmail, err := svc.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byEmail.ID)

	users, err := svc.GetAllUsers(ctx, 20, 0)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	require.NoError(t, svc.DeleteUser(ctx, alice.ID))
	_, err = svc.GetUserByID(ctx, alice.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
