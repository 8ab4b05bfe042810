package account

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/dmitrymomot/teamauth/pkg/auth"
	"github.com/dmitrymomot/teamauth/pkg/logger"
	"github.com/dmitrymomot/teamauth/pkg/validator"
)

const maxProfileBody = 16 << 10

// ProfileManager reads and edits the authenticated user's profile.
type ProfileManager interface {
	Get(ctx context.Context, id uuid.UUID) (*auth.User, error)
	Update(ctx context.Context, id uuid.UUID, in auth.ProfileInput) (*auth.User, error)
	Complete(ctx context.Context, id uuid.UUID) (*auth.User, error)
}

// updateProfileRequest only knows the editable fields; id, email and
// authProvider in the body are ignored.
type updateProfileRequest struct {
	FullName *string `json:"fullName"`
	Avatar   *string `json:"avatar"`
}

type profileHandlers struct {
	profiles ProfileManager
	logger   *slog.Logger
}

func (h profileHandlers) get(w http.ResponseWriter, r *http.Request, user *auth.User) {
	u, err := h.profiles.Get(r.Context(), user.ID)
	if err != nil {
		h.fail(w, r, user, err)
		return
	}
	writeJSON(w, http.StatusOK, NewProfileResponse(u))
}

func (h profileHandlers) update(w http.ResponseWriter, r *http.Request, user *auth.User) {
	var req updateProfileRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxProfileBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}

	u, err := h.profiles.Update(r.Context(), user.ID, auth.ProfileInput{
		FullName: req.FullName,
		Avatar:   req.Avatar,
	})
	if err != nil {
		h.fail(w, r, user, err)
		return
	}
	writeJSON(w, http.StatusOK, NewProfileResponse(u))
}

func (h profileHandlers) complete(w http.ResponseWriter, r *http.Request, user *auth.User) {
	u, err := h.profiles.Complete(r.Context(), user.ID)
	if err != nil {
		h.fail(w, r, user, err)
		return
	}
	writeJSON(w, http.StatusOK, NewProfileResponse(u))
}

func (h profileHandlers) fail(w http.ResponseWriter, r *http.Request, user *auth.User, err error) {
	switch {
	case validator.IsValidationError(err):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "validation_failed",
			Details: validator.ExtractValidationErrors(err),
		})
	case errors.Is(err, auth.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "not_found")
	default:
		h.logger.ErrorContext(r.Context(), "profile request failed",
			logger.Component("account"),
			logger.UserID(user.ID.String()),
			logger.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "internal_error")
	}
}
