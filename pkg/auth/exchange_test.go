package auth_test

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/teamauth/pkg/auth"
	"github.com/dmitrymomot/teamauth/pkg/jwt"
)

const testSecret = "exchange-test-secret-value-long-enough"

func newCodec(t *testing.T) *jwt.Service {
	t.Helper()
	codec, err := jwt.New(jwt.Config{Secret: testSecret, TTL: time.Hour, Issuer: "teamauth"})
	require.NoError(t, err)
	return codec
}

func newExchange(t *testing.T, adapter auth.ProviderAdapter, storage *auth.MemoryStorage, opts ...auth.ExchangeOption) *auth.ExchangeService {
	t.Helper()
	return auth.NewExchangeService(adapter, auth.NewReconciler(storage), newCodec(t), storage, opts...)
}

func beginState(t *testing.T, svc *auth.ExchangeService) string {
	t.Helper()
	raw, err := svc.BeginExchange(context.Background())
	require.NoError(t, err)
	u, err := url.Parse(raw)
	require.NoError(t, err)
	state := u.Query().Get("state")
	require.NotEmpty(t, state)
	return state
}

func TestBeginExchange(t *testing.T) {
	t.Parallel()

	svc := newExchange(t, staticProfile("alice@x.com", "Alice"), auth.NewMemoryStorage())

	first := beginState(t, svc)
	second := beginState(t, svc)
	assert.NotEqual(t, first, second)
	assert.Len(t, first, 43) // 32 bytes, unpadded base64url
	assert.Equal(t, auth.ProviderGoogle, svc.Provider())
}

func TestCompleteExchange(t *testing.T) {
	t.Parallel()

	t.Run("issues a credential for the reconciled user", func(t *testing.T) {
		t.Parallel()
		storage := auth.NewMemoryStorage()
		svc := newExchange(t, staticProfile("Alice@X.com", "Alice"), storage)

		res, err := svc.CompleteExchange(context.Background(), "code-1", beginState(t, svc))
		require.NoError(t, err)
		require.NotNil(t, res.User)
		assert.Equal(t, "alice@x.com", res.User.Email)
		assert.True(t, res.User.IsFirstLogin)

		subject, err := newCodec(t).Verify(res.Token)
		require.NoError(t, err)
		assert.Equal(t, res.User.ID.String(), subject)
	})

	t.Run("state is single use", func(t *testing.T) {
		t.Parallel()
		svc := newExchange(t, staticProfile("alice@x.com", "Alice"), auth.NewMemoryStorage())
		state := beginState(t, svc)

		_, err := svc.CompleteExchange(context.Background(), "code-1", state)
		require.NoError(t, err)

		res, err := svc.CompleteExchange(context.Background(), "code-1", state)
		require.ErrorIs(t, err, auth.ErrInvalidState)
		assert.Empty(t, res.Token)
	})

	t.Run("unknown or missing state", func(t *testing.T) {
		t.Parallel()
		svc := newExchange(t, staticProfile("alice@x.com", "Alice"), auth.NewMemoryStorage())

		_, err := svc.CompleteExchange(context.Background(), "code-1", "forged")
		require.ErrorIs(t, err, auth.ErrInvalidState)
		_, err = svc.CompleteExchange(context.Background(), "code-1", "")
		require.ErrorIs(t, err, auth.ErrInvalidState)
	})

	t.Run("missing code", func(t *testing.T) {
		t.Parallel()
		svc := newExchange(t, staticProfile("alice@x.com", "Alice"), auth.NewMemoryStorage())

		_, err := svc.CompleteExchange(context.Background(), "", beginState(t, svc))
		require.ErrorIs(t, err, auth.ErrInvalidCode)
	})

	t.Run("provider withholds email", func(t *testing.T) {
		t.Parallel()
		storage := auth.NewMemoryStorage()
		svc := newExchange(t, staticProfile("", "Private Person"), storage)

		res, err := svc.CompleteExchange(context.Background(), "code-1", beginState(t, svc))
		require.ErrorIs(t, err, auth.ErrMissingEmail)
		assert.Empty(t, res.Token)
		assert.Zero(t, storage.Count())
	})

	t.Run("provider round trip times out", func(t *testing.T) {
		t.Parallel()
		hang := &fakeAdapter{resolve: func(ctx context.Context, _ string) (auth.ProviderProfile, error) {
			<-ctx.Done()
			return auth.ProviderProfile{}, ctx.Err()
		}}
		svc := newExchange(t, hang, auth.NewMemoryStorage(), auth.WithExchangeTimeout(20*time.Millisecond))

		res, err := svc.CompleteExchange(context.Background(), "code-1", beginState(t, svc))
		require.ErrorIs(t, err, auth.ErrExchangeTimeout)
		assert.Empty(t, res.Token)
	})

	t.Run("client cancels mid exchange", func(t *testing.T) {
		t.Parallel()
		storage := auth.NewMemoryStorage()
		ctx, cancel := context.WithCancel(context.Background())
		adapter := &fakeAdapter{resolve: func(context.Context, string) (auth.ProviderProfile, error) {
			cancel()
			return auth.ProviderProfile{Email: "late@x.com", EmailVerified: true}, nil
		}}
		svc := newExchange(t, adapter, storage)
		state := beginState(t, svc)

		res, err := svc.CompleteExchange(ctx, "code-1", state)
		require.ErrorIs(t, err, auth.ErrExchangeCanceled)
		assert.Nil(t, res.User)
		assert.Empty(t, res.Token)
	})

	t.Run("issuer failure yields no result", func(t *testing.T) {
		t.Parallel()
		storage := auth.NewMemoryStorage()
		boom := errors.New("signer offline")
		svc := auth.NewExchangeService(staticProfile("alice@x.com", "Alice"), auth.NewReconciler(storage), failingIssuer{err: boom}, storage)

		res, err := svc.CompleteExchange(context.Background(), "code-1", beginState(t, svc))
		require.ErrorIs(t, err, boom)
		assert.Nil(t, res.User)
		assert.Empty(t, res.Token)
	})

	t.Run("provider rejects code", func(t *testing.T) {
		t.Parallel()
		adapter := &fakeAdapter{resolve: func(context.Context, string) (auth.ProviderProfile, error) {
			return auth.ProviderProfile{}, auth.ErrInvalidCode
		}}
		svc := newExchange(t, adapter, auth.NewMemoryStorage())

		_, err := svc.CompleteExchange(context.Background(), "bad", beginState(t, svc))
		require.ErrorIs(t, err, auth.ErrInvalidCode)
	})
}

func TestCompleteExchangeConcurrentSameEmail(t *testing.T) {
	t.Parallel()

	storage := auth.NewMemoryStorage()
	svc := newExchange(t, staticProfile("bob@x.com", "Bob"), storage)

	states := []string{beginState(t, svc), beginState(t, svc)}
	results := make([]auth.ExchangeResult, len(states))
	errs := make([]error, len(states))

	var wg sync.WaitGroup
	for i, state := range states {
		wg.Add(1)
		go func(i int, state string) {
			defer wg.Done()
			results[i], errs[i] = svc.CompleteExchange(context.Background(), "code", state)
		}(i, state)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, results[0].User.ID, results[1].User.ID)
	assert.Equal(t, 1, storage.Count())
}
