package auth_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/teamauth/pkg/auth"
	"github.com/dmitrymomot/teamauth/pkg/jwt"
)

func seedUser(t *testing.T, storage *auth.MemoryStorage, email string) *auth.User {
	t.Helper()
	u, err := auth.NewReconciler(storage).Reconcile(context.Background(), auth.ProviderGoogle, auth.ExternalProfile{Email: email, DisplayName: "Test"})
	require.NoError(t, err)
	return u
}

func bearer(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/auth/profile", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	storage := auth.NewMemoryStorage()
	codec := newCodec(t)
	authn := auth.NewAuthenticator(codec, storage)
	user := seedUser(t, storage, "alice@x.com")

	t.Run("valid credential resolves the user", func(t *testing.T) {
		t.Parallel()
		token, err := codec.Issue(user.ID.String())
		require.NoError(t, err)

		got, err := authn.Authenticate(bearer(token))
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
		assert.Equal(t, "alice@x.com", got.Email)
	})

	t.Run("no header", func(t *testing.T) {
		t.Parallel()
		_, err := authn.Authenticate(bearer(""))
		require.ErrorIs(t, err, auth.ErrNoCredential)
		require.ErrorIs(t, err, auth.ErrUnauthorized)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		t.Parallel()
		req := bearer("")
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		_, err := authn.Authenticate(req)
		require.ErrorIs(t, err, auth.ErrInvalidCredential)
		require.ErrorIs(t, err, jwt.ErrMalformedToken)
	})

	t.Run("garbage token", func(t *testing.T) {
		t.Parallel()
		_, err := authn.Authenticate(bearer("not-a-token"))
		require.ErrorIs(t, err, auth.ErrInvalidCredential)
		require.ErrorIs(t, err, auth.ErrUnauthorized)
	})

	t.Run("expired credential", func(t *testing.T) {
		t.Parallel()
		past, err := jwt.New(jwt.Config{Secret: testSecret, TTL: time.Hour, Issuer: "teamauth"},
			jwt.WithClock(fixedClock(time.Now().Add(-2*time.Hour))))
		require.NoError(t, err)
		token, err := past.Issue(user.ID.String())
		require.NoError(t, err)

		_, err = authn.Authenticate(bearer(token))
		require.ErrorIs(t, err, auth.ErrInvalidCredential)
		require.ErrorIs(t, err, jwt.ErrExpiredToken)
	})

	t.Run("subject is not a user id", func(t *testing.T) {
		t.Parallel()
		token, err := codec.Issue("admin")
		require.NoError(t, err)

		_, err = authn.Authenticate(bearer(token))
		require.ErrorIs(t, err, auth.ErrInvalidCredential)
	})
}

func TestAuthenticateDeletedUser(t *testing.T) {
	t.Parallel()

	storage := auth.NewMemoryStorage()
	codec := newCodec(t)
	authn := auth.NewAuthenticator(codec, storage)
	user := seedUser(t, storage, "gone@x.com")

	token, err := codec.Issue(user.ID.String())
	require.NoError(t, err)
	require.NoError(t, storage.DeleteUser(context.Background(), user.ID))

	_, err = authn.Authenticate(bearer(token))
	require.ErrorIs(t, err, auth.ErrUnknownSubject)
	require.ErrorIs(t, err, auth.ErrUnauthorized)
}

func TestProtect(t *testing.T) {
	t.Parallel()

	storage := auth.NewMemoryStorage()
	codec := newCodec(t)
	user := seedUser(t, storage, "alice@x.com")

	handler := auth.NewAuthenticator(codec, storage).Protect(func(w http.ResponseWriter, _ *http.Request, u *auth.User) {
		_, _ = w.Write([]byte(u.Email))
	})

	t.Run("authenticated", func(t *testing.T) {
		t.Parallel()
		token, err := codec.Issue(user.ID.String())
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		handler(rec, bearer(token))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "alice@x.com", rec.Body.String())
	})

	t.Run("every rejection looks the same", func(t *testing.T) {
		t.Parallel()
		ghost, err := codec.Issue(uuid.NewString())
		require.NoError(t, err)

		for _, token := range []string{"", "a.b.c", ghost} {
			rec := httptest.NewRecorder()
			handler(rec, bearer(token))
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.JSONEq(t, `{"error":"unauthorized"}`, rec.Body.String())
			assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))
		}
	})
}

func TestProtectStorageFailureFailsClosed(t *testing.T) {
	t.Parallel()

	codec := newCodec(t)
	id := uuid.New()
	storage := &MockUserStorage{}
	storage.On("GetUserByID", mock.Anything, id).Return(nil, errors.New("db down"))

	called := false
	handler := auth.NewAuthenticator(codec, storage).Protect(func(http.ResponseWriter, *http.Request, *auth.User) {
		called = true
	})

	token, err := codec.Issue(id.String())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	handler(rec, bearer(token))
	assert.False(t, called)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}
