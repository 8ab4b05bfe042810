package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/teamauth/pkg/logger"
)

// CredentialIssuer mints a bearer credential for a user identifier.
type CredentialIssuer interface {
	Issue(userID string) (string, error)
}

// ExchangeResult is a completed exchange. Token is never empty.
type ExchangeResult struct {
	User  *User
	Token string
}

// ExchangeService runs the provider handshake and turns it into a credential.
type ExchangeService struct {
	adapter    ProviderAdapter
	reconciler *Reconciler
	issuer     CredentialIssuer
	states     StateStorage
	logger     *slog.Logger
	stateTTL   time.Duration
	timeout    time.Duration
	now        func() time.Time
}

// ExchangeOption configures an ExchangeService.
type ExchangeOption func(*ExchangeService)

// WithExchangeLogger configures the logger.
func WithExchangeLogger(l *slog.Logger) ExchangeOption {
	return func(s *ExchangeService) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStateTTL sets how long a begun exchange may take before its state expires.
func WithStateTTL(ttl time.Duration) ExchangeOption {
	return func(s *ExchangeService) {
		if ttl > 0 {
			s.stateTTL = ttl
		}
	}
}

// WithExchangeTimeout bounds the provider round trip of CompleteExchange.
func WithExchangeTimeout(d time.Duration) ExchangeOption {
	return func(s *ExchangeService) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithExchangeClock replaces time.Now for state expiry.
func WithExchangeClock(now func() time.Time) ExchangeOption {
	return func(s *ExchangeService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewExchangeService wires a provider adapter to reconciliation and credential issuance.
// Defaults: state TTL 10 minutes, exchange timeout 15 seconds, discard logger.
func NewExchangeService(adapter ProviderAdapter, reconciler *Reconciler, issuer CredentialIssuer, states StateStorage, opts ...ExchangeOption) *ExchangeService {
	s := &ExchangeService{
		adapter:    adapter,
		reconciler: reconciler,
		issuer:     issuer,
		states:     states,
		logger:     logger.Discard(),
		stateTTL:   10 * time.Minute,
		timeout:    15 * time.Second,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Provider returns the tag of the configured provider.
func (s *ExchangeService) Provider() AuthProvider {
	return s.adapter.ProviderID()
}

// BeginExchange stores a fresh one-time state and returns the consent-screen URL.
func (s *ExchangeService) BeginExchange(ctx context.Context) (string, error) {
	state, err := generateState()
	if err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}

	if err := s.states.StoreState(ctx, state, s.now().Add(s.stateTTL)); err != nil {
		return "", fmt.Errorf("failed to store state: %w", err)
	}

	url, err := s.adapter.AuthURL(state)
	if err != nil {
		return "", fmt.Errorf("failed to build auth url: %w", err)
	}
	return url, nil
}

// CompleteExchange validates the callback, resolves the provider profile,
// reconciles it to a local account and issues a credential. It returns either
// a full result or an error, never a partial result.
func (s *ExchangeService) CompleteExchange(ctx context.Context, code, state string) (ExchangeResult, error) {
	if state == "" {
		return ExchangeResult{}, ErrInvalidState
	}
	// One-time use: a replayed callback fails here.
	if err := s.states.ConsumeState(ctx, state); err != nil {
		if errors.Is(err, ErrStateNotFound) {
			return ExchangeResult{}, ErrInvalidState
		}
		return ExchangeResult{}, fmt.Errorf("failed to validate state: %w", err)
	}
	if code == "" {
		return ExchangeResult{}, ErrInvalidCode
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := s.now()
	raw, err := s.adapter.ResolveProfile(ctx, code)
	if err != nil {
		return ExchangeResult{}, s.classify(ctx, err)
	}

	profile, err := NewExternalProfile(raw)
	if err != nil {
		return ExchangeResult{}, err
	}

	user, err := s.reconciler.Reconcile(ctx, s.adapter.ProviderID(), profile)
	if err != nil {
		return ExchangeResult{}, s.classify(ctx, fmt.Errorf("failed to reconcile account: %w", err))
	}

	token, err := s.issuer.Issue(user.ID.String())
	if err != nil {
		return ExchangeResult{}, fmt.Errorf("failed to issue credential: %w", err)
	}

	// The client went away or the deadline hit while we were working; drop the token.
	if err := ctx.Err(); err != nil {
		return ExchangeResult{}, s.classify(ctx, err)
	}

	s.logger.InfoContext(ctx, "exchange completed",
		logger.Component("exchange"),
		logger.Event("auth.exchange"),
		logger.Provider(string(s.adapter.ProviderID())),
		logger.UserID(user.ID.String()),
		logger.Duration(s.now().Sub(start)),
	)

	return ExchangeResult{User: user, Token: token}, nil
}

// classify maps context failures onto exchange errors, keeping the cause.
func (s *ExchangeService) classify(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, ErrExchangeTimeout), errors.Is(err, ErrExchangeCanceled):
		return err
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded), isTimeout(err):
		return fmt.Errorf("%w: %w", ErrExchangeTimeout, err)
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %w", ErrExchangeCanceled, err)
	default:
		return err
	}
}

// generateState creates a cryptographically secure random state for CSRF protection.
func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
