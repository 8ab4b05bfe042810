package onboarding

import (
	"encoding/json"
	"fmt"
)

// Storage keys. The session marker key is per user, see SessionKey.
const (
	KeyDismissed     = "onboarding.dismissed"
	KeyUser          = "onboarding.user"
	sessionKeyPrefix = "onboarding.shown."
)

// SessionKey is the session-tier key recording that the prompt was shown to userID.
func SessionKey(userID string) string {
	return sessionKeyPrefix + userID
}

// Profile is the client's copy of the signed-in user, as returned by GET /auth/profile.
// It doubles as the durable last-seen snapshot.
type Profile struct {
	ID                string `json:"id"`
	FullName          string `json:"fullName"`
	Email             string `json:"email"`
	Avatar            string `json:"avatar"`
	AuthProvider      string `json:"authProvider"`
	IsFirstLogin      bool   `json:"isFirstLogin"`
	IsProfileComplete bool   `json:"isProfileComplete"`
}

func readSnapshot(durable Store) (*Profile, error) {
	raw, ok, err := durable.Get(KeyUser)
	if err != nil || !ok {
		return nil, err
	}
	var p Profile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("%w: user snapshot: %w", ErrCorruptStore, err)
	}
	if p.ID == "" {
		return nil, fmt.Errorf("%w: user snapshot has no id", ErrCorruptStore)
	}
	return &p, nil
}

func writeSnapshot(durable Store, p Profile) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode user snapshot: %w", err)
	}
	return durable.Set(KeyUser, string(raw))
}
