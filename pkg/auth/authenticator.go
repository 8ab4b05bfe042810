package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/dmitrymomot/teamauth/pkg/jwt"
	"github.com/dmitrymomot/teamauth/pkg/logger"
)

// CredentialVerifier checks a bearer credential and returns its user identifier.
type CredentialVerifier interface {
	Verify(token string) (string, error)
}

// UserFinder is the single read the authenticator performs per request.
type UserFinder interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
}

// ProtectedHandlerFunc is an http.HandlerFunc that also receives the authenticated user.
type ProtectedHandlerFunc func(w http.ResponseWriter, r *http.Request, user *User)

// RejectFunc writes the response for a failed authentication.
type RejectFunc func(w http.ResponseWriter, r *http.Request, err error)

// Authenticator gates requests on a bearer credential.
type Authenticator struct {
	verifier CredentialVerifier
	users    UserFinder
	reject   RejectFunc
	logger   *slog.Logger
}

// AuthenticatorOption configures an Authenticator.
type AuthenticatorOption func(*Authenticator)

// WithAuthenticatorLogger configures the logger.
func WithAuthenticatorLogger(l *slog.Logger) AuthenticatorOption {
	return func(a *Authenticator) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithRejectFunc replaces the default JSON rejection response.
func WithRejectFunc(fn RejectFunc) AuthenticatorOption {
	return func(a *Authenticator) {
		if fn != nil {
			a.reject = fn
		}
	}
}

// NewAuthenticator creates an Authenticator reading "Authorization: Bearer <token>".
func NewAuthenticator(verifier CredentialVerifier, users UserFinder, opts ...AuthenticatorOption) *Authenticator {
	a := &Authenticator{
		verifier: verifier,
		users:    users,
		reject:   DefaultReject,
		logger:   logger.Discard(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Authenticate resolves the user behind r's credential. Rejections wrap
// ErrUnauthorized; any other error is a storage failure and must not be
// reported to the client as an authentication problem.
func (a *Authenticator) Authenticate(r *http.Request) (*User, error) {
	token, err := jwt.BearerTokenExtractor(r)
	if err != nil {
		if errors.Is(err, jwt.ErrNoToken) {
			return nil, ErrNoCredential
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidCredential, err)
	}

	subject, err := a.verifier.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCredential, err)
	}

	id, err := uuid.Parse(subject)
	if err != nil {
		return nil, fmt.Errorf("%w: subject is not a user id", ErrInvalidCredential)
	}

	user, err := a.users.GetUserByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUnknownSubject
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	return user, nil
}

// Protect wraps next so it only runs for authenticated requests.
func (a *Authenticator) Protect(next ProtectedHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := a.Authenticate(r)
		if err != nil {
			level := slog.LevelDebug
			if !errors.Is(err, ErrUnauthorized) {
				level = slog.LevelError
			}
			a.logger.Log(r.Context(), level, "request rejected",
				logger.Component("authenticator"),
				logger.Error(err),
				slog.String("path", r.URL.Path),
			)
			a.reject(w, r, err)
			return
		}
		next(w, r, user)
	}
}

// DefaultReject answers 401 with a body that does not reveal the reason, or
// 500 when the failure was not an authentication problem.
func DefaultReject(w http.ResponseWriter, _ *http.Request, err error) {
	status, msg := http.StatusUnauthorized, "unauthorized"
	if !errors.Is(err, ErrUnauthorized) {
		status, msg = http.StatusInternalServerError, "internal server error"
	}
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
