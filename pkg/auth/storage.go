package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserStorage persists accounts.
type UserStorage interface {
	// CreateUser inserts user. It must fail with ErrEmailAlreadyExists when
	// another account already holds user.Email, atomically with the insert.
	CreateUser(ctx context.Context, user *User) error
	// GetUserByID returns ErrUserNotFound when no account has id.
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	// GetUserByEmail looks up by normalized email and returns ErrUserNotFound on a miss.
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	// UpdateUser applies upd and returns the stored result, or ErrUserNotFound.
	UpdateUser(ctx context.Context, id uuid.UUID, upd ProfileUpdate) (*User, error)
}

// StateStorage keeps one-time OAuth state tokens.
type StateStorage interface {
	StoreState(ctx context.Context, state string, expiresAt time.Time) error
	// ConsumeState atomically checks that state exists and removes it.
	// Returns ErrStateNotFound if it doesn't exist, expired or was already consumed.
	ConsumeState(ctx context.Context, state string) error
}
