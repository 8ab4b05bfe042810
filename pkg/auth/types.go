package auth

import (
	"time"

	"github.com/google/uuid"
)

// AuthProvider tags how an account was first created.
type AuthProvider string

const (
	ProviderLocal  AuthProvider = "local"
	ProviderGoogle AuthProvider = "google"
)

// User is the canonical local account.
type User struct {
	ID                uuid.UUID
	Email             string // normalized, unique
	FullName          string
	Avatar            string // optional URL
	AuthProvider      AuthProvider
	IsFirstLogin      bool
	IsProfileComplete bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ProfileUpdate carries a partial change to a User. Nil fields are left as they are.
type ProfileUpdate struct {
	FullName          *string
	Avatar            *string
	IsFirstLogin      *bool
	IsProfileComplete *bool
	UpdatedAt         time.Time
}

// Apply copies every non-nil field of p onto u.
func (p ProfileUpdate) Apply(u *User) {
	if p.FullName != nil {
		u.FullName = *p.FullName
	}
	if p.Avatar != nil {
		u.Avatar = *p.Avatar
	}
	if p.IsFirstLogin != nil {
		u.IsFirstLogin = *p.IsFirstLogin
	}
	if p.IsProfileComplete != nil {
		u.IsProfileComplete = *p.IsProfileComplete
	}
	if !p.UpdatedAt.IsZero() {
		u.UpdatedAt = p.UpdatedAt
	}
}
