// Package onboarding decides whether the "complete your profile" prompt is
// shown to a signed-in user, at most once per session per account.
//
// The decision reads the account flags the API returned plus two injected
// key-value tiers: a durable Store that survives restarts and a session Store
// that lives as long as one browsing session (one process, for the CLI).
//
// The prompt is shown only when all of the following hold:
//
//   - no durable snapshot with the same user id exists (returning user);
//   - isFirstLogin is true and isProfileComplete is false;
//   - the durable dismissed flag is absent;
//   - the session marker for this user is absent.
//
// Anything unreadable, such as a store error or a corrupt snapshot, suppresses the
// prompt. Showing it to a returning user is the failure this package exists
// to prevent; not showing it is harmless.
//
// # Usage
//
//	m := onboarding.New(durable, session)
//	state, err := m.Evaluate(profile)
//	if state == onboarding.Shown {
//		// render the prompt
//	}
//	_ = m.Remember(profile)
//
//	// later, on "not now" or on navigating to the profile editor
//	_ = m.Dismiss()
//
// ForceReset is an operator escape hatch for stuck clients and is not part
// of the normal flow.
package onboarding
