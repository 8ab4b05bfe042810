package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/teamauth/pkg/logger"
	"github.com/dmitrymomot/teamauth/pkg/sanitizer"
	"github.com/dmitrymomot/teamauth/pkg/validator"
)

// ProfileInput is a user-submitted profile change. Only name and avatar are editable.
type ProfileInput struct {
	FullName *string
	Avatar   *string
}

// ProfileService reads and edits the current user's profile.
type ProfileService struct {
	storage UserStorage
	logger  *slog.Logger
	now     func() time.Time
}

// ProfileOption configures a ProfileService.
type ProfileOption func(*ProfileService)

// WithProfileLogger configures the logger.
func WithProfileLogger(l *slog.Logger) ProfileOption {
	return func(s *ProfileService) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithProfileClock replaces time.Now for UpdatedAt.
func WithProfileClock(now func() time.Time) ProfileOption {
	return func(s *ProfileService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewProfileService creates a ProfileService over storage.
func NewProfileService(storage UserStorage, opts ...ProfileOption) *ProfileService {
	s := &ProfileService{
		storage: storage,
		logger:  logger.Discard(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the profile of id, or ErrUserNotFound.
func (s *ProfileService) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	user, err := s.storage.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// Update applies in to the profile of id. Invalid input yields
// validator.ValidationErrors; an empty avatar clears it.
func (s *ProfileService) Update(ctx context.Context, id uuid.UUID, in ProfileInput) (*User, error) {
	var upd ProfileUpdate
	var rules []validator.Rule

	if in.FullName != nil {
		name := sanitizer.SingleLine(sanitizer.RemoveControlChars(*in.FullName))
		rules = append(rules,
			validator.RequiredString("fullName", name),
			validator.MaxLenString("fullName", name, MaxFullNameLength),
		)
		upd.FullName = &name
	}
	if in.Avatar != nil {
		avatar := strings.TrimSpace(*in.Avatar)
		rules = append(rules,
			validator.When(avatar != "", validator.MaxLenString("avatar", avatar, MaxAvatarLength)),
			validator.When(avatar != "", validator.ValidURLWithScheme("avatar", avatar, []string{"http", "https"})),
		)
		upd.Avatar = &avatar
	}
	if err := validator.Apply(rules...); err != nil {
		return nil, err
	}

	if upd.FullName == nil && upd.Avatar == nil {
		return s.Get(ctx, id)
	}

	upd.UpdatedAt = s.now().UTC()
	user, err := s.storage.UpdateUser(ctx, id, upd)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.logger.InfoContext(ctx, "profile updated",
		logger.Component("profile"),
		logger.Event("user.profile_updated"),
		logger.UserID(id.String()),
	)
	return user, nil
}

// Complete records that the user finished onboarding: isFirstLogin becomes
// false and isProfileComplete true. Repeating it is harmless.
func (s *ProfileService) Complete(ctx context.Context, id uuid.UUID) (*User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.IsFirstLogin && user.IsProfileComplete {
		return user, nil
	}

	no, yes := false, true
	user, err = s.storage.UpdateUser(ctx, id, ProfileUpdate{
		IsFirstLogin:      &no,
		IsProfileComplete: &yes,
		UpdatedAt:         s.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to complete profile: %w", err)
	}

	s.logger.InfoContext(ctx, "profile completed",
		logger.Component("profile"),
		logger.Event("user.profile_completed"),
		logger.UserID(id.String()),
	)
	return user, nil
}
