package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/teamauth/pkg/auth"
)

func TestMemoryStorageUsers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	storage := auth.NewMemoryStorage()
	user := &auth.User{ID: uuid.New(), Email: "alice@x.com", FullName: "Alice"}

	require.NoError(t, storage.CreateUser(ctx, user))
	require.ErrorIs(t, storage.CreateUser(ctx, &auth.User{ID: uuid.New(), Email: "alice@x.com"}), auth.ErrEmailAlreadyExists)

	got, err := storage.GetUserByEmail(ctx, "alice@x.com")
	require.NoError(t, err)
	got.FullName = "mutated"

	again, err := storage.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", again.FullName)

	require.NoError(t, storage.DeleteUser(ctx, user.ID))
	_, err = storage.GetUserByEmail(ctx, "alice@x.com")
	require.ErrorIs(t, err, auth.ErrUserNotFound)
	require.ErrorIs(t, storage.DeleteUser(ctx, user.ID), auth.ErrUserNotFound)
}

func TestMemoryStorageStates(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	storage := auth.NewMemoryStorage()

	require.NoError(t, storage.StoreState(ctx, "live", time.Now().Add(time.Minute)))
	require.NoError(t, storage.StoreState(ctx, "stale", time.Now().Add(-time.Second)))

	require.NoError(t, storage.ConsumeState(ctx, "live"))
	require.ErrorIs(t, storage.ConsumeState(ctx, "live"), auth.ErrStateNotFound)
	require.ErrorIs(t, storage.ConsumeState(ctx, "stale"), auth.ErrStateNotFound)
	require.ErrorIs(t, storage.ConsumeState(ctx, "never"), auth.ErrStateNotFound)
}
