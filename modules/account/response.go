package account

import (
	"encoding/json"
	"net/http"

	"github.com/dmitrymomot/teamauth/pkg/auth"
	"github.com/dmitrymomot/teamauth/pkg/validator"
)

// ProfileResponse is the JSON shape of a user profile.
type ProfileResponse struct {
	ID                string `json:"id"`
	FullName          string `json:"fullName"`
	Email             string `json:"email"`
	Avatar            string `json:"avatar"`
	AuthProvider      string `json:"authProvider"`
	IsFirstLogin      bool   `json:"isFirstLogin"`
	IsProfileComplete bool   `json:"isProfileComplete"`
}

// NewProfileResponse converts a user into its response shape.
func NewProfileResponse(u *auth.User) ProfileResponse {
	return ProfileResponse{
		ID:                u.ID.String(),
		FullName:          u.FullName,
		Email:             u.Email,
		Avatar:            u.Avatar,
		AuthProvider:      string(u.AuthProvider),
		IsFirstLogin:      u.IsFirstLogin,
		IsProfileComplete: u.IsProfileComplete,
	}
}

type errorResponse struct {
	Error   string                     `json:"error"`
	Details validator.ValidationErrors `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, errorResponse{Error: code})
}
