package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/teamauth/pkg/logger"
)

// Reconciler finds or creates the local account for a verified external profile.
type Reconciler struct {
	storage UserStorage
	logger  *slog.Logger
	now     func() time.Time
	intake  singleflight.Group
	timeout time.Duration
}

// DefaultReconcileTimeout bounds one shared lookup-or-create.
const DefaultReconcileTimeout = 10 * time.Second

// ReconcilerOption configures a Reconciler.
type ReconcilerOption func(*Reconciler)

// WithReconcilerLogger configures the logger.
func WithReconcilerLogger(l *slog.Logger) ReconcilerOption {
	return func(r *Reconciler) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithReconcilerClock replaces time.Now for CreatedAt/UpdatedAt.
func WithReconcilerClock(now func() time.Time) ReconcilerOption {
	return func(r *Reconciler) {
		if now != nil {
			r.now = now
		}
	}
}

// WithReconcileTimeout bounds the storage work shared by concurrent callers.
func WithReconcileTimeout(d time.Duration) ReconcilerOption {
	return func(r *Reconciler) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// NewReconciler creates a Reconciler over storage.
func NewReconciler(storage UserStorage, opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{
		storage: storage,
		logger:  logger.Discard(),
		now:     time.Now,
		timeout: DefaultReconcileTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconcile returns the account for profile.Email, creating it on first sight.
// An existing account is returned unchanged; locally edited fields are never
// overwritten from the provider.
//
// Concurrent calls for the same email inside this process share one lookup
// and at most one insert. Across processes the store's unique email
// constraint decides the winner, and the loser re-reads the winner's record.
// The shared work is detached from any one caller: a caller that gives up
// gets its own context error while the others still receive the account.
func (r *Reconciler) Reconcile(ctx context.Context, provider AuthProvider, profile ExternalProfile) (*User, error) {
	if profile.Email == "" {
		return nil, ErrMissingEmail
	}

	flight := r.intake.DoChan(profile.Email, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
		defer cancel()
		return r.findOrCreate(fctx, provider, profile)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-flight:
		if res.Err != nil {
			return nil, res.Err
		}
		// Callers sharing a flight must not share the pointer.
		user := *res.Val.(*User)
		return &user, nil
	}
}

func (r *Reconciler) findOrCreate(ctx context.Context, provider AuthProvider, profile ExternalProfile) (*User, error) {
	user, err := r.storage.GetUserByEmail(ctx, profile.Email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up user by email: %w", err)
	}

	now := r.now().UTC()
	user = &User{
		ID:                uuid.New(),
		Email:             profile.Email,
		FullName:          profile.DisplayName,
		Avatar:            profile.Avatar,
		AuthProvider:      provider,
		IsFirstLogin:      true,
		IsProfileComplete: false,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := r.storage.CreateUser(ctx, user); err != nil {
		if !errors.Is(err, ErrEmailAlreadyExists) {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}

		winner, err := r.storage.GetUserByEmail(ctx, profile.Email)
		if err != nil {
			return nil, fmt.Errorf("failed to re-read user after concurrent create: %w", err)
		}
		r.logger.DebugContext(ctx, "lost account creation race",
			logger.Component("reconciler"),
			logger.UserID(winner.ID.String()),
			logger.Email(profile.Email),
		)
		return winner, nil
	}

	r.logger.InfoContext(ctx, "account created",
		logger.Component("reconciler"),
		logger.Event("user.created"),
		logger.UserID(user.ID.String()),
		logger.Email(user.Email),
		logger.Provider(string(provider)),
	)

	return user, nil
}
