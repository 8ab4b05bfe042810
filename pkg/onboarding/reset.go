package onboarding

import "errors"

// ForceReset recovers a client stuck in a prompt loop: it clears the
// dismissed flag and userID's session marker, and rewrites a present snapshot
// with isFirstLogin false. A corrupt snapshot is removed. session may be nil.
//
// It is an operator tool. Nothing in the normal prompt flow calls it.
func ForceReset(durable, session Store, userID string) error {
	errs := []error{durable.Remove(KeyDismissed)}
	if session != nil && userID != "" {
		errs = append(errs, session.Remove(SessionKey(userID)))
	}

	snap, err := readSnapshot(durable)
	switch {
	case errors.Is(err, ErrCorruptStore):
		errs = append(errs, durable.Remove(KeyUser))
	case err != nil:
		errs = append(errs, err)
	case snap != nil && snap.IsFirstLogin:
		snap.IsFirstLogin = false
		errs = append(errs, writeSnapshot(durable, *snap))
	}

	return errors.Join(errs...)
}
