// Package statemachine is a small, typed finite-state machine.
//
// States and events are any comparable types, usually string-based enums.
// Each transition may carry guards, which all must pass for it to apply, and
// actions, which run in order before the state changes. When several
// transitions share a from-state and event, the first whose guards pass wins,
// which allows guard-based branching with a fallback:
//
//	type phase string
//	type trigger string
//
//	m := statemachine.MustNew[phase, trigger]("draft",
//		statemachine.WithTransition("draft", "published", "submit",
//			statemachine.WithGuard[phase, trigger](isApproved),
//			statemachine.WithAction[phase, trigger](notify),
//		),
//		statemachine.WithTransition[phase, trigger]("draft", "in_review", "submit"),
//	)
//
//	err := m.Fire(ctx, "submit", doc)
//
// # Error Handling
//
// Fire wraps ErrNoTransition when nothing is defined for the current state and
// event, and ErrTransitionRejected when every candidate was vetoed by a guard.
// An action error aborts the transition and is returned wrapped.
//
// A Machine is safe for concurrent use. Guards and actions run under its
// lock and must not call back into the same Machine.
package statemachine
