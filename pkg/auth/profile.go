package auth

import (
	"fmt"
	"strings"

	"github.com/dmitrymomot/teamauth/pkg/sanitizer"
	"github.com/dmitrymomot/teamauth/pkg/validator"
)

// Limits on user-visible profile fields.
const (
	MaxFullNameLength = 100
	MaxAvatarLength   = 2048
)

// ProviderProfile is the raw identity a ProviderAdapter resolves. Any field may be empty.
type ProviderProfile struct {
	ProviderUserID string
	Email          string
	EmailVerified  bool
	Name           string
	AvatarURL      string
}

// ExternalProfile is a provider identity that passed validation and is safe to reconcile.
type ExternalProfile struct {
	Email       string
	DisplayName string
	Avatar      string
}

// NewExternalProfile validates p. It fails with ErrMissingEmail when the
// provider withheld the email, returned a malformed one, or did not verify it.
// An unusable avatar is dropped rather than rejected; a missing name falls
// back to the local part of the email.
func NewExternalProfile(p ProviderProfile) (ExternalProfile, error) {
	email := sanitizer.NormalizeEmail(p.Email)
	if email == "" {
		return ExternalProfile{}, ErrMissingEmail
	}
	if err := validator.Apply(validator.ValidEmail("email", email)); err != nil {
		return ExternalProfile{}, fmt.Errorf("%w: %w", ErrMissingEmail, err)
	}
	if !p.EmailVerified {
		return ExternalProfile{}, fmt.Errorf("%w: email not verified by provider", ErrMissingEmail)
	}

	name := sanitizer.DisplayName(p.Name, MaxFullNameLength)
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}

	avatar := strings.TrimSpace(p.AvatarURL)
	if avatar != "" && validateAvatar(avatar) != nil {
		avatar = ""
	}

	return ExternalProfile{
		Email:       email,
		DisplayName: name,
		Avatar:      avatar,
	}, nil
}

func validateAvatar(avatar string) error {
	return validator.Apply(
		validator.MaxLenString("avatar", avatar, MaxAvatarLength),
		validator.ValidURLWithScheme("avatar", avatar, []string{"http", "https"}),
	)
}
