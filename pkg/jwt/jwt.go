package jwt

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is the credential lifetime used when Config.TTL is zero.
const DefaultTTL = 7 * 24 * time.Hour

// Config holds the codec settings loaded from the environment.
// Secret is intentionally not marked required: an empty secret must surface
// as ErrMissingSigningKey from New rather than as a generic parse failure.
type Config struct {
	Secret string        `env:"JWT_SECRET"`                       // Secret is the HMAC-SHA256 signing key.
	TTL    time.Duration `env:"JWT_TTL" envDefault:"168h"`        // TTL is how long an issued credential stays valid.
	Issuer string        `env:"JWT_ISSUER" envDefault:"teamauth"` // Issuer is written to and required in the iss claim.
}

// Claims is the payload of an issued credential.
type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Service issues and verifies HS256 credentials.
type Service struct {
	key    []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now. Intended for tests that need to move past expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a codec from cfg. It fails with ErrMissingSigningKey when the
// secret is empty, which callers should treat as fatal at startup.
func New(cfg Config, opts ...Option) (*Service, error) {
	if cfg.Secret == "" {
		return nil, ErrMissingSigningKey
	}

	s := &Service{
		key:    []byte(cfg.Secret),
		ttl:    cfg.TTL,
		issuer: cfg.Issuer,
		now:    time.Now,
	}
	if s.ttl <= 0 {
		s.ttl = DefaultTTL
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// NewFromString creates a codec with the default TTL and no issuer.
func NewFromString(secret string, opts ...Option) (*Service, error) {
	return New(Config{Secret: secret}, opts...)
}

// TTL returns the lifetime of issued credentials.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Issue signs a credential for userID. The output is deterministic for a
// given clock reading: same subject and second yield the same token.
func (s *Service) Issue(userID string) (string, error) {
	token, _, err := s.IssueWithClaims(userID)
	return token, err
}

// IssueWithClaims is Issue that also returns the claims it signed.
func (s *Service) IssueWithClaims(userID string) (string, Claims, error) {
	if userID == "" {
		return "", Claims{}, ErrMissingSubject
	}

	// Second precision keeps the encoded iat/exp and the returned Claims identical.
	now := s.now().UTC().Truncate(time.Second)
	claims := Claims{
		Subject:   userID,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.ttl),
	}

	token := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.RegisteredClaims{
		Subject:   claims.Subject,
		Issuer:    s.issuer,
		IssuedAt:  gojwt.NewNumericDate(claims.IssuedAt),
		ExpiresAt: gojwt.NewNumericDate(claims.ExpiresAt),
	})

	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", Claims{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, claims, nil
}

// Verify checks integrity and expiry of token and returns the user identifier it carries.
func (s *Service) Verify(token string) (string, error) {
	claims, err := s.Parse(token)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// Parse is Verify returning the full claim set.
func (s *Service) Parse(token string) (Claims, error) {
	if !wellFormed(token) {
		return Claims{}, ErrMalformedToken
	}

	opts := []gojwt.ParserOption{
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
		gojwt.WithTimeFunc(s.now),
		gojwt.WithExpirationRequired(),
		gojwt.WithIssuedAt(),
		gojwt.WithStrictDecoding(),
	}
	if s.issuer != "" {
		opts = append(opts, gojwt.WithIssuer(s.issuer))
	}

	var registered gojwt.RegisteredClaims
	_, err := gojwt.ParseWithClaims(token, &registered, func(*gojwt.Token) (any, error) {
		return s.key, nil
	}, opts...)
	if err != nil {
		// golang-jwt only validates claims after the signature checks out,
		// so an expired result implies an authentic token.
		if errors.Is(err, gojwt.ErrTokenExpired) {
			return Claims{}, ErrExpiredToken
		}
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if registered.Subject == "" || registered.ExpiresAt == nil {
		return Claims{}, ErrInvalidToken
	}

	claims := Claims{
		Subject:   registered.Subject,
		ExpiresAt: registered.ExpiresAt.Time,
	}
	if registered.IssuedAt != nil {
		claims.IssuedAt = registered.IssuedAt.Time
	}

	return claims, nil
}

// wellFormed reports whether token has the header.payload.signature shape
// with every segment in strict unpadded base64url. Anything that decodes is
// left to the signature check, so a flipped bit is invalid, not malformed.
func wellFormed(token string) bool {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return false
	}
	for _, p := range parts {
		if p == "" {
			return false
		}
		if _, err := segmentEncoding.DecodeString(p); err != nil {
			return false
		}
	}
	return true
}

var segmentEncoding = base64.RawURLEncoding.Strict()
