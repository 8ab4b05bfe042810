package jwt_test

import (
	"encoding/base64"
	"strings"
	"sync"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/teamauth/pkg/jwt"
)

const testSecret = "test-secret-key-that-is-long-enough-for-hs256"

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock(t time.Time) *testClock { return &testClock{now: t} }

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newService(t *testing.T, clock *testClock) *jwt.Service {
	t.Helper()
	svc, err := jwt.New(jwt.Config{Secret: testSecret, TTL: time.Hour, Issuer: "teamauth"}, jwt.WithClock(clock.Now))
	require.NoError(t, err)
	return svc
}

// flipBit decodes segment idx of token, flips one bit of the decoded bytes and re-encodes it.
func flipBit(t *testing.T, token string, idx, byteIdx int) string {
	t.Helper()
	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	raw, err := base64.RawURLEncoding.DecodeString(parts[idx])
	require.NoError(t, err)
	require.Greater(t, len(raw), byteIdx)
	raw[byteIdx] ^= 0x01
	parts[idx] = base64.RawURLEncoding.EncodeToString(raw)
	return strings.Join(parts, ".")
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("missing secret is a configuration error", func(t *testing.T) {
		t.Parallel()
		svc, err := jwt.New(jwt.Config{})
		require.ErrorIs(t, err, jwt.ErrMissingSigningKey)
		assert.Nil(t, svc)

		svc, err = jwt.NewFromString("")
		require.ErrorIs(t, err, jwt.ErrMissingSigningKey)
		assert.Nil(t, svc)
	})

	t.Run("zero ttl falls back to default", func(t *testing.T) {
		t.Parallel()
		svc, err := jwt.New(jwt.Config{Secret: testSecret})
		require.NoError(t, err)
		assert.Equal(t, jwt.DefaultTTL, svc.TTL())
	})
}

func TestIssueVerify(t *testing.T) {
	t.Parallel()

	t.Run("round trip returns the subject", func(t *testing.T) {
		t.Parallel()
		clock := newTestClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
		svc := newService(t, clock)

		token, err := svc.Issue("user-123")
		require.NoError(t, err)
		assert.Equal(t, 2, strings.Count(token, "."))

		subject, err := svc.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, "user-123", subject)
	})

	t.Run("claims carry issue and expiry times", func(t *testing.T) {
		t.Parallel()
		start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		svc := newService(t, newTestClock(start))

		token, issued, err := svc.IssueWithClaims("user-123")
		require.NoError(t, err)
		assert.Equal(t, start, issued.IssuedAt)
		assert.Equal(t, start.Add(time.Hour), issued.ExpiresAt)

		parsed, err := svc.Parse(token)
		require.NoError(t, err)
		assert.Equal(t, issued.Subject, parsed.Subject)
		assert.True(t, issued.IssuedAt.Equal(parsed.IssuedAt))
		assert.True(t, issued.ExpiresAt.Equal(parsed.ExpiresAt))
	})

	t.Run("issue is deterministic for the same clock reading", func(t *testing.T) {
		t.Parallel()
		svc := newService(t, newTestClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)))

		first, err := svc.Issue("user-123")
		require.NoError(t, err)
		second, err := svc.Issue("user-123")
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("empty subject is rejected", func(t *testing.T) {
		t.Parallel()
		svc := newService(t, newTestClock(time.Now()))

		token, err := svc.Issue("")
		require.ErrorIs(t, err, jwt.ErrMissingSubject)
		assert.Empty(t, token)
	})
}

func TestVerifyExpiry(t *testing.T) {
	t.Parallel()

	clock := newTestClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	svc := newService(t, clock)

	token, err := svc.Issue("user-123")
	require.NoError(t, err)

	clock.Advance(59 * time.Minute)
	subject, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", subject)

	clock.Advance(2 * time.Minute)
	subject, err = svc.Verify(token)
	require.ErrorIs(t, err, jwt.ErrExpiredToken)
	assert.Empty(t, subject)
}

func TestVerifyTampering(t *testing.T) {
	t.Parallel()

	svc := newService(t, newTestClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)))
	token, err := svc.Issue("user-123")
	require.NoError(t, err)

	tests := []struct {
		name    string
		segment int
		byteIdx int
	}{
		{"header first byte", 0, 0},
		{"payload first byte", 1, 0},
		{"payload middle byte", 1, 10},
		{"signature first byte", 2, 0},
		{"signature last byte", 2, 31},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tampered := flipBit(t, token, tt.segment, tt.byteIdx)
			require.NotEqual(t, token, tampered)

			subject, err := svc.Verify(tampered)
			require.ErrorIs(t, err, jwt.ErrInvalidToken)
			require.NotErrorIs(t, err, jwt.ErrMalformedToken)
			assert.Empty(t, subject)
		})
	}
}

func TestVerifyRejects(t *testing.T) {
	t.Parallel()

	clock := newTestClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	svc := newService(t, clock)

	t.Run("malformed input", func(t *testing.T) {
		t.Parallel()
		for _, input := range []string{
			"", "abc", "a.b", "a..c", "a.b.c.d", ".b.c",
			"a.b.c", "not.a.jwt", "!!!.@@@.###", "eyJhbGciOiJIUzI1NiJ9.e30=.c2ln",
		} {
			_, err := svc.Verify(input)
			assert.ErrorIs(t, err, jwt.ErrMalformedToken, "input %q", input)
		}
	})

	t.Run("decodable segments that are not json", func(t *testing.T) {
		t.Parallel()
		// Indistinguishable from a tampered header, so it is invalid, not malformed.
		_, err := svc.Verify("YWJj.YWJj.YWJj")
		require.ErrorIs(t, err, jwt.ErrInvalidToken)
		require.NotErrorIs(t, err, jwt.ErrMalformedToken)
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		t.Parallel()
		other, err := jwt.New(jwt.Config{Secret: "a-completely-different-secret-value", TTL: time.Hour, Issuer: "teamauth"}, jwt.WithClock(clock.Now))
		require.NoError(t, err)

		token, err := other.Issue("user-123")
		require.NoError(t, err)

		_, err = svc.Verify(token)
		require.ErrorIs(t, err, jwt.ErrInvalidToken)
	})

	t.Run("unexpected signing algorithm", func(t *testing.T) {
		t.Parallel()
		token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS512, gojwt.RegisteredClaims{
			Subject:   "user-123",
			Issuer:    "teamauth",
			ExpiresAt: gojwt.NewNumericDate(clock.Now().Add(time.Hour)),
		}).SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = svc.Verify(token)
		require.ErrorIs(t, err, jwt.ErrInvalidToken)
	})

	t.Run("foreign issuer", func(t *testing.T) {
		t.Parallel()
		token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.RegisteredClaims{
			Subject:   "user-123",
			Issuer:    "someone-else",
			ExpiresAt: gojwt.NewNumericDate(clock.Now().Add(time.Hour)),
		}).SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = svc.Verify(token)
		require.ErrorIs(t, err, jwt.ErrInvalidToken)
	})

	t.Run("missing expiry", func(t *testing.T) {
		t.Parallel()
		token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.RegisteredClaims{
			Subject: "user-123",
			Issuer:  "teamauth",
		}).SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = svc.Verify(token)
		require.ErrorIs(t, err, jwt.ErrInvalidToken)
	})

	t.Run("missing subject", func(t *testing.T) {
		t.Parallel()
		token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.RegisteredClaims{
			Issuer:    "teamauth",
			ExpiresAt: gojwt.NewNumericDate(clock.Now().Add(time.Hour)),
		}).SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = svc.Verify(token)
		require.ErrorIs(t, err, jwt.ErrInvalidToken)
	})
}
