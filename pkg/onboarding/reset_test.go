package onboarding_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/teamauth/pkg/onboarding"
)

func TestForceReset(t *testing.T) {
	t.Parallel()

	t.Run("clears flags and flips snapshot", func(t *testing.T) {
		t.Parallel()
		durable, session := onboarding.NewMemoryStore(), onboarding.NewMemoryStore()
		user := newUser()

		m := onboarding.New(durable, session)
		_, err := m.Evaluate(context.Background(), user)
		require.NoError(t, err)
		require.NoError(t, m.Remember(user))
		require.NoError(t, m.Dismiss(context.Background()))

		require.NoError(t, onboarding.ForceReset(durable, session, user.ID))

		_, ok, _ := durable.Get(onboarding.KeyDismissed)
		assert.False(t, ok)
		_, ok, _ = session.Get(onboarding.SessionKey(user.ID))
		assert.False(t, ok)

		raw, ok, _ := durable.Get(onboarding.KeyUser)
		require.True(t, ok)
		var snap onboarding.Profile
		require.NoError(t, json.Unmarshal([]byte(raw), &snap))
		assert.Equal(t, user.ID, snap.ID)
		assert.False(t, snap.IsFirstLogin)

		// The flipped snapshot still marks a returning user.
		state, err := onboarding.New(durable, session).Evaluate(context.Background(), user)
		require.NoError(t, err)
		assert.Equal(t, onboarding.Suppressed, state)
	})

	t.Run("removes corrupt snapshot", func(t *testing.T) {
		t.Parallel()
		durable := onboarding.NewMemoryStore()
		require.NoError(t, durable.Set(onboarding.KeyUser, "garbage"))

		require.NoError(t, onboarding.ForceReset(durable, nil, ""))
		_, ok, _ := durable.Get(onboarding.KeyUser)
		assert.False(t, ok)
	})

	t.Run("empty stores", func(t *testing.T) {
		t.Parallel()
		require.NoError(t, onboarding.ForceReset(onboarding.NewMemoryStore(), onboarding.NewMemoryStore(), "u1"))
	})
}
