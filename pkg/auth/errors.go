package auth

import (
	"errors"
	"fmt"
)

// Authentication errors. Every rejection produced by Authenticator wraps ErrUnauthorized.
var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrNoCredential      = fmt.Errorf("%w: no credential", ErrUnauthorized)
	ErrInvalidCredential = fmt.Errorf("%w: invalid credential", ErrUnauthorized)
	ErrUnknownSubject    = fmt.Errorf("%w: unknown subject", ErrUnauthorized)
)

// User storage errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
)

// Exchange errors
var (
	ErrMissingEmail     = errors.New("provider did not supply a usable email")
	ErrInvalidState     = errors.New("invalid OAuth state")
	ErrStateNotFound    = errors.New("OAuth state not found or expired")
	ErrInvalidCode      = errors.New("invalid OAuth code")
	ErrExchangeTimeout  = errors.New("provider exchange timed out")
	ErrUnknownProvider  = errors.New("unknown auth provider")
	ErrExchangeCanceled = errors.New("provider exchange canceled")
)
