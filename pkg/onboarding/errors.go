package onboarding

import "errors"

var (
	ErrCorruptStore = errors.New("onboarding: corrupt store")
	ErrNotShown     = errors.New("onboarding: prompt is not shown")
	ErrMissingUser  = errors.New("onboarding: profile has no user id")
)
