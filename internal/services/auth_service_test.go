package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datadesigner/internal/apperrors"
	"datadesigner/internal/dto"
)

func TestAuthService_RegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	id, err := env.auth.Register(ctx, dto.RegisterRequest{Username: "alice", Email: "Alice@Example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)

	_, err = env.auth.Register(ctx, dto.RegisterRequest{Username: "alice2", Email: "alice@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)

	_, err = env.auth.Register(ctx, dto.RegisterRequest{Username: "al", Email: "not-an-email", Password: "1"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	resp, err := env.auth.Login(ctx, "alice@example.com", "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, id.String(), resp.User.ID)
	assert.Equal(t, "alice", resp.User.Username)

	_, err = env.auth.Login(ctx, "alice@example.com", "wrong")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	_, err = env.auth.Login(ctx, "nobody@example.com", "secret123")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	user, err := env.userRepo.FindUserByID(ctx, id)
	require.NoError(t, err)
	assert.NotNil(t, user.LastLoginAt)
}

func TestAuthService_ResolveAndLogout(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := env.register(t, "alice")

	resp, err := env.auth.Login(ctx, "alice@example.com", "secret123")
	require.NoError(t, err)

	got, err := env.auth.Resolve(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = env.auth.Resolve(ctx, "garbage")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	require.NoError(t, env.auth.Logout(ctx, resp.Token))
	_, err = env.auth.Resolve(ctx, resp.Token)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	// A second login issues a fresh token id that is not revoked.
	again, err := env.auth.Login(ctx, "alice@example.com", "secret123")
	require.NoError(t, err)
	_, err = env.auth.Resolve(ctx, again.Token)
	assert.NoError(t, err)
}

func TestAuthService_Authorize(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bobby")

	projectID, err := env.users.CreateProject(ctx, alice, "Shop")
	require.NoError(t, err)

	ok, err := env.auth.Authorize(ctx, alice, projectID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = env.auth.Authorize(ctx, bob, projectID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = env.auth.Authorize(ctx, alice, uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)
}
