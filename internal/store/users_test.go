package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndGetUser(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	user := newTestUser(t, "alice@example.com")
	require.NoError(t, s.CreateUser(ctx, user))

	got, err := s.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", got.Email)
	assert.Equal(t, "Test User", got.DisplayName)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	first := newTestUser(t, "alice@example.com")
	require.NoError(t, s.CreateUser(ctx, first))

	second := newTestUser(t, "Alice@Example.COM")
	assert.ErrorIs(t, s.CreateUser(ctx, second), ErrEmailExists)
}

func TestGetUserNotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.GetUser(context.Background(), "user-missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGetUserByEmail(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	user := newTestUser(t, "alice@example.com")
	require.NoError(t, s.CreateUser(ctx, user))

	got, err := s.GetUserByEmail(ctx, "ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = s.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
